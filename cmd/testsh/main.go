// Command testsh is a POSIX-subset interactive shell: parse, execute,
// repeat, with full job control over its foreground/background children.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"src.elv.sh/pkg/diag"

	"github.com/Brendon-Mendicino/testsh/pkg/executor"
	"github.com/Brendon-Mendicino/testsh/pkg/job"
	"github.com/Brendon-Mendicino/testsh/pkg/parse"
	"github.com/Brendon-Mendicino/testsh/pkg/shell"
	"github.com/Brendon-Mendicino/testsh/pkg/spawn"
	"github.com/Brendon-Mendicino/testsh/pkg/token"
)

func main() {
	if code, ok := runAsWorker(os.Args[1:]); ok {
		os.Exit(code)
	}

	sh, err := shell.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "testsh: %v\n", err)
		os.Exit(1)
	}
	ex := executor.New(sh, os.Args[0])

	repl(sh, ex)
}

// runAsWorker recognizes the worker-mode flags cmd/testsh relaunches
// itself with to stand in for a subshell, async-list, or pipeline-builtin
// child (see pkg/executor's doc comments for why a re-exec is the Go
// substitute for fork()). ok is false when argv carries none of them, in
// which case main proceeds with the normal interactive shell.
func runAsWorker(args []string) (code int, ok bool) {
	if len(args) == 0 {
		return 0, false
	}

	var kindFlag string
	bodyFd := -1
	for _, a := range args {
		switch {
		case a == executor.WorkerSubshellFlag, a == executor.WorkerAsyncListFlag, a == executor.WorkerBuiltinFlag:
			kindFlag = a
		case strings.HasPrefix(a, executor.WorkerBodyFdFlag+"="):
			n, err := strconv.Atoi(strings.TrimPrefix(a, executor.WorkerBodyFdFlag+"="))
			if err == nil {
				bodyFd = n
			}
		}
	}
	if kindFlag == "" || bodyFd < 0 {
		return 0, false
	}

	switch kindFlag {
	case executor.WorkerSubshellFlag:
		return executor.RunWorker(spawn.KindSubshell, bodyFd), true
	case executor.WorkerAsyncListFlag:
		return executor.RunWorker(spawn.KindAsyncList, bodyFd), true
	case executor.WorkerBuiltinFlag:
		return executor.RunBuiltinWorker(bodyFd), true
	}
	return 0, false
}

// continuationKinds are the trailing token kinds that keep the prompt
// cycle reading more input instead of parsing what's buffered so far;
// "cmd &" at end of line deliberately does not appear here.
var continuationKinds = map[token.Kind]bool{
	token.Pipe:             true,
	token.AndAnd:           true,
	token.OrOr:             true,
	token.LineContinuation: true,
}

// needsContinuation tokenizes buf (its trailing line terminator stripped,
// since that's just the read delimiter, not shell syntax) and reports
// whether its last token before the trailing Eof demands another physical
// line before parsing.
func needsContinuation(buf string) bool {
	src, err := token.NewLineTokenizer(strings.TrimRight(buf, "\n"))
	if err != nil {
		return false
	}
	toks := src.VectorTokenizer.Tokens
	if n := len(toks); n > 0 && toks[n-1].Kind == token.Eof {
		toks = toks[:n-1]
	}
	if len(toks) == 0 {
		return false
	}
	return continuationKinds[toks[len(toks)-1].Kind]
}

// repl drives the prompt cycle of §6: drain finished background jobs,
// print the prompt, read and splice lines until a complete buffer is
// ready, parse it, and execute every command it contains.
func repl(sh *shell.Shell, ex *executor.Executor) {
	in := bufio.NewReader(os.Stdin)
	var buf strings.Builder

	for {
		drainBgJobs(sh, ex)

		fmt.Fprint(os.Stderr, sh.CurrentPrompt(buf.Len() > 0))

		line, err := in.ReadString('\n')
		if line == "" && err != nil {
			break
		}

		if strings.HasSuffix(line, "\\\n") {
			// Splice: drop the backslash-newline and join directly with
			// whatever the next physical line brings.
			buf.WriteString(strings.TrimSuffix(line, "\\\n"))
			continue
		}
		buf.WriteString(line)

		if needsContinuation(buf.String()) {
			continue
		}

		runBuffered(sh, ex, buf.String())
		buf.Reset()

		if err == io.EOF {
			break
		}
	}
}

// drainBgJobs polls every background job for status changes and drops
// the ones that have since fully completed, printing a "Done" line for
// each between prompts.
func drainBgJobs(sh *shell.Shell, ex *executor.Executor) {
	for _, j := range sh.BgJobs {
		ex.Waiter.UpdateStatus(j)
	}
	sh.RemoveDone(func(j *job.Job) {
		fmt.Fprintf(os.Stderr, "[%d]%s Done                    %s\n", j.Num, sh.JobMarker(j.Num), j.Command)
	})
}

func runBuffered(sh *shell.Shell, ex *executor.Executor, input string) {
	prog, err := parse.Parse(input)
	if err != nil {
		perr, ok := err.(parse.Error)
		if !ok {
			fmt.Fprintf(os.Stderr, "testsh: %v\n", err)
			return
		}
		fmt.Fprintln(os.Stderr, "Parsing failed!")
		for _, entry := range perr.Errors {
			sr := diag.NewContext("input", input, diag.PointRanging(entry.Position))
			fmt.Fprintf(os.Stderr, "  %s\n", entry.Message)
			fmt.Fprintf(os.Stderr, "    %s\n", sr.ShowCompact(""))
		}
		return
	}
	ex.RunProgram(prog)
}
