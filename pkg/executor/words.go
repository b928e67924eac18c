package executor

import (
	"strings"

	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

// expandWord resolves a Word to its textual value. A LiteralWord's value
// is already cooked by the scanner; a CmdSub runs its body and substitutes
// the captured, newline-trimmed output; a CompositeWord concatenates its
// parts' expansions (e.g. a "$(" substitution embedded in a quoted string,
// glued to the literal text around it).
func (e *Executor) expandWord(w syntax.Word, st CommandState) (string, int) {
	switch n := w.(type) {
	case *syntax.LiteralWord:
		return n.Value, 0
	case *syntax.CmdSub:
		out, status := e.runCmdSub(n.Body, st)
		return out, status
	case *syntax.CompositeWord:
		var sb strings.Builder
		status := 0
		for _, part := range n.Parts {
			val, s := e.expandWord(part, st)
			sb.WriteString(val)
			if hasCmdSub(part) {
				status = s
			}
		}
		return sb.String(), status
	default:
		return "", 0
	}
}

// hasCmdSub reports whether w performs a command substitution anywhere in
// its expansion, recursing into CompositeWord parts.
func hasCmdSub(w syntax.Word) bool {
	switch n := w.(type) {
	case *syntax.CmdSub:
		return true
	case *syntax.CompositeWord:
		for _, p := range n.Parts {
			if hasCmdSub(p) {
				return true
			}
		}
	}
	return false
}

// expandWords resolves a whole argument list, tracking the exit status of
// the last command substitution performed: if the resulting argv is
// empty, that status becomes the command's own (§4.5.1's "no command
// name" case).
func (e *Executor) expandWords(words []syntax.Word, st CommandState) ([]string, int) {
	out := make([]string, len(words))
	lastSubStatus := 0
	for i, w := range words {
		val, status := e.expandWord(w, st)
		out[i] = val
		if hasCmdSub(w) {
			lastSubStatus = status
		}
	}
	return out, lastSubStatus
}

// buildEnvp implements §4.5.1: every external=true shell variable except
// those named by a prefix assignment, then each prefix assignment in
// reverse order with last-occurrence-wins dedup.
func (e *Executor) buildEnvp(envs []syntax.AssignmentWord) []string {
	overridden := make(map[string]bool, len(envs))
	for _, a := range envs {
		overridden[a.Key] = true
	}

	out := make([]string, 0, len(envs)+8)
	for _, kv := range e.Sh.Vars.ExternalEntries() {
		name, _, _ := strings.Cut(kv, "=")
		if !overridden[name] {
			out = append(out, kv)
		}
	}

	seen := make(map[string]bool, len(envs))
	for i := len(envs) - 1; i >= 0; i-- {
		a := envs[i]
		if seen[a.Key] {
			continue
		}
		seen[a.Key] = true
		out = append(out, a.Key+"="+a.Value)
	}
	return out
}
