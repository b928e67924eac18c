package parse

import (
	"fmt"
	"strings"

	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
	"github.com/Brendon-Mendicino/testsh/pkg/token"
)

// Parse scans input and parses it as a Program. It never partially builds
// global state on failure: a failed parse discards everything it built and
// returns a non-nil error of type Error.
func Parse(input string) (*syntax.Program, error) {
	src, err := token.NewLineTokenizer(input)
	if err != nil {
		return nil, Error{Errors: []ErrorEntry{{0, err.Error()}}}
	}
	return ParseTokens(token.NewCursor(src))
}

// ParseTokens parses a Program directly from a token cursor; Parse calls it
// over a freshly scanned LineTokenizer. A command substitution is not
// re-parsed through here: cmdsub parses its body inline from the same
// cursor.
func ParseTokens(cur token.Cursor) (*syntax.Program, error) {
	p := &parser{cur: cur}
	prog, ok := p.program()
	if !ok || len(p.err.Errors) > 0 {
		if len(p.err.Errors) == 0 {
			p.errorf("Parsing failed!")
		}
		return nil, p.err
	}
	return prog, nil
}

type parser struct {
	cur token.Cursor
	err Error
}

func (p *parser) errorf(format string, a ...any) {
	pos := 0
	if t, ok := p.cur.Peek(); ok {
		pos = t.Begin
	}
	p.err.Errors = append(p.err.Errors, ErrorEntry{pos, fmt.Sprintf(format, a...)})
}

func (p *parser) peek() (token.Token, bool) { return p.cur.Peek() }

func (p *parser) accept(k token.Kind) (token.Token, bool) {
	t, ok := p.cur.Peek()
	if !ok || t.Kind != k {
		return token.Token{}, false
	}
	p.cur.Next()
	return t, true
}

// ---- program / complete_commands ----

// program := linebreak | linebreak complete_commands linebreak
func (p *parser) program() (*syntax.Program, bool) {
	p.linebreak()
	var lists []syntax.List
	for {
		l, ok := p.list()
		if !ok {
			break
		}
		if sep, ok := p.separatorOp(); ok && sep.Kind == token.Ampersand {
			l = asyncify(l)
		}
		lists = append(lists, l)
		if !p.newlineList() {
			break
		}
	}
	p.linebreak()
	p.accept(token.Eof)
	if !p.cur.AtEof() {
		t, _ := p.peek()
		p.errorf("unexpected token %v %q", t.Kind, t.Value)
		return nil, false
	}
	return &syntax.Program{Lists: lists}, true
}

// asyncify converts the top node of l into an AsyncList if it's currently
// a SequentialList, leaving an already-async top node untouched.
func asyncify(l syntax.List) syntax.List {
	if s, ok := l.(*syntax.SequentialList); ok {
		return syntax.AsyncFromSeq(s)
	}
	return l
}

// list := and_or ( separator and_or )*
func (p *parser) list() (syntax.List, bool) {
	return p.andOrChain()
}

// term := and_or ( separator and_or )*  (identical production to list,
// used inside a subshell's compound_list)
func (p *parser) term() (syntax.List, bool) {
	return p.andOrChain()
}

// andOrChain implements the shared rotation for list/term: each further
// "sep and_or" grows the left-leaning spine with a new SequentialList top
// node; when sep was '&', the spine built so far is first turned into an
// AsyncList, so the and_or before the '&' is the one run in the background.
func (p *parser) andOrChain() (syntax.List, bool) {
	first, ok := p.andOr()
	if !ok {
		return nil, false
	}
	var retval syntax.List = &syntax.SequentialList{Right: first}
	for {
		save := p.cur
		sep, ok := p.separator()
		if !ok {
			break
		}
		next, ok := p.andOr()
		if !ok {
			p.cur = save
			break
		}
		if sep.Kind == token.Ampersand {
			retval = asyncify(retval)
		}
		retval = &syntax.SequentialList{Left: retval, Right: next}
	}
	return retval, true
}

// and_or := pipeline ( (AND_AND | OR_OR) linebreak pipeline )*
func (p *parser) andOr() (syntax.OpList, bool) {
	left, ok := p.pipeline()
	if !ok {
		return nil, false
	}
	var retval syntax.OpList = left
	for {
		save := p.cur
		var isAnd bool
		if _, ok := p.accept(token.AndAnd); ok {
			isAnd = true
		} else if _, ok := p.accept(token.OrOr); ok {
			isAnd = false
		} else {
			break
		}
		p.linebreak()
		right, ok := p.pipeline()
		if !ok {
			p.cur = save
			break
		}
		if isAnd {
			retval = &syntax.AndList{Left: retval, Right: right}
		} else {
			retval = &syntax.OrList{Left: retval, Right: right}
		}
	}
	return retval, true
}

// pipeline := [BANG] pipe_sequence
func (p *parser) pipeline() (*syntax.Pipeline, bool) {
	negated := false
	if _, ok := p.accept(token.Bang); ok {
		negated = true
	}
	cmds, ok := p.pipeSequence()
	if !ok {
		return nil, false
	}
	return &syntax.Pipeline{Commands: cmds, Negated: negated}, true
}

// pipe_sequence := command ( '|' linebreak command )*
func (p *parser) pipeSequence() ([]syntax.Command, bool) {
	first, ok := p.command()
	if !ok {
		return nil, false
	}
	cmds := []syntax.Command{first}
	for {
		save := p.cur
		if _, ok := p.accept(token.Pipe); !ok {
			break
		}
		p.linebreak()
		next, ok := p.command()
		if !ok {
			p.cur = save
			break
		}
		cmds = append(cmds, next)
	}
	return cmds, true
}

// command := simple_command | compound_command [ redirect_list ]
func (p *parser) command() (syntax.Command, bool) {
	if sub, ok := p.compoundCommand(); ok {
		if redirs, ok := p.redirectList(); ok {
			sub.Redirects = append(sub.Redirects, redirs...)
		}
		return sub, true
	}
	return p.simpleCommand()
}

// compound_command := subshell   -- only variant supported
func (p *parser) compoundCommand() (*syntax.Subshell, bool) {
	return p.subshell()
}

// subshell := '(' compound_list ')'
func (p *parser) subshell() (*syntax.Subshell, bool) {
	save := p.cur
	if _, ok := p.accept(token.OpenRound); !ok {
		return nil, false
	}
	body, ok := p.compoundList()
	if !ok {
		p.cur = save
		return nil, false
	}
	if _, ok := p.accept(token.CloseRound); !ok {
		p.cur = save
		return nil, false
	}
	return &syntax.Subshell{Body: body}, true
}

// compound_list := linebreak term [ separator_op ]
func (p *parser) compoundList() (syntax.List, bool) {
	p.linebreak()
	l, ok := p.term()
	if !ok {
		return nil, false
	}
	if sep, ok := p.separatorOp(); ok && sep.Kind == token.Ampersand {
		l = asyncify(l)
	}
	return l, true
}

// simple_command := cmd_prefix [ cmd_word cmd_suffix? ] | cmd_name cmd_suffix?
func (p *parser) simpleCommand() (syntax.Command, bool) {
	assigns, prefixRedirs := p.cmdPrefix()
	if len(assigns) > 0 || len(prefixRedirs) > 0 {
		word, hasWord := p.cmdWord()
		var args []syntax.Word
		var redirs []syntax.Redirect
		if hasWord {
			args, redirs = p.cmdSuffix()
		}
		redirs = append(prefixRedirs, redirs...)
		if !hasWord {
			return &syntax.SimpleAssignment{Redirects: redirs, Envs: assigns}, true
		}
		return &syntax.UnsubCommand{Program: word, Arguments: args, Redirects: redirs, Envs: assigns}, true
	}

	name, ok := p.cmdName()
	if !ok {
		return nil, false
	}
	args, redirs := p.cmdSuffix()
	return &syntax.UnsubCommand{Program: name, Arguments: args, Redirects: redirs}, true
}

// cmd_name := WORD. A word whose text starts with '=' would already have
// failed assignment_word (equals at position 0), so it falls through to
// here and is accepted as a plain program name, matching the cmd_word
// caveat in the grammar notes.
func (p *parser) cmdName() (syntax.Word, bool) { return p.word() }

func (p *parser) cmdWord() (syntax.Word, bool) { return p.word() }

// cmd_prefix := ( io_redirect | assignment_word )+
func (p *parser) cmdPrefix() ([]syntax.AssignmentWord, []syntax.Redirect) {
	var assigns []syntax.AssignmentWord
	var redirs []syntax.Redirect
	for {
		if aw, ok := p.assignmentWord(); ok {
			assigns = append(assigns, aw)
			continue
		}
		if r, ok := p.ioRedirect(); ok {
			redirs = append(redirs, r)
			continue
		}
		break
	}
	return assigns, redirs
}

// cmd_suffix := ( io_redirect | word )+
func (p *parser) cmdSuffix() ([]syntax.Word, []syntax.Redirect) {
	var words []syntax.Word
	var redirs []syntax.Redirect
	for {
		if r, ok := p.ioRedirect(); ok {
			redirs = append(redirs, r)
			continue
		}
		if w, ok := p.word(); ok {
			words = append(words, w)
			continue
		}
		break
	}
	return words, redirs
}

// redirect_list := io_redirect+
func (p *parser) redirectList() ([]syntax.Redirect, bool) {
	first, ok := p.ioRedirect()
	if !ok {
		return nil, false
	}
	redirs := []syntax.Redirect{first}
	for {
		r, ok := p.ioRedirect()
		if !ok {
			break
		}
		redirs = append(redirs, r)
	}
	return redirs, true
}

// io_redirect := [IO_NUMBER] io_file
func (p *parser) ioRedirect() (syntax.Redirect, bool) {
	save := p.cur
	var fdOverride *int
	if t, ok := p.accept(token.IoNumber); ok {
		n := atoiOrZero(t.Value)
		fdOverride = &n
	}
	r, ok := p.ioFile()
	if !ok {
		p.cur = save
		return nil, false
	}
	if fdOverride != nil {
		switch red := r.(type) {
		case *syntax.FileRedirect:
			red.TargetFd = *fdOverride
		case *syntax.FdRedirect:
			red.TargetFd = *fdOverride
		case *syntax.CloseFd:
			red.Fd = *fdOverride
		}
	}
	return r, true
}

// io_file := '<' filename | '<&' filename | '>' filename | '>&' filename
//          | '>>' filename | '<>' filename
func (p *parser) ioFile() (syntax.Redirect, bool) {
	save := p.cur
	t, ok := p.peek()
	if !ok {
		return nil, false
	}
	var kind token.Kind
	switch t.Kind {
	case token.Less, token.Great, token.DGreat, token.LessGreat, token.LessAnd, token.GreatAnd:
		kind = t.Kind
		p.cur.Next()
	default:
		return nil, false
	}
	name, ok := p.filename()
	if !ok {
		p.cur = save
		return nil, false
	}
	switch kind {
	case token.Less:
		return &syntax.FileRedirect{TargetFd: 0, Kind: syntax.OpenRead, Filename: name}, true
	case token.Great:
		return &syntax.FileRedirect{TargetFd: 1, Kind: syntax.OpenReplace, Filename: name}, true
	case token.DGreat:
		return &syntax.FileRedirect{TargetFd: 1, Kind: syntax.OpenAppend, Filename: name}, true
	case token.LessGreat:
		return &syntax.FileRedirect{TargetFd: syntax.DefaultTargetFd(syntax.OpenRW), Kind: syntax.OpenRW, Filename: name}, true
	case token.LessAnd:
		r, ok := convertAndRedirect(0, name)
		if !ok {
			p.cur = save
			return nil, false
		}
		return r, true
	case token.GreatAnd:
		r, ok := convertAndRedirect(1, name)
		if !ok {
			p.cur = save
			return nil, false
		}
		return r, true
	}
	return nil, false
}

func convertAndRedirect(defaultFd int, filename string) (syntax.Redirect, bool) {
	if filename == "-" {
		return &syntax.CloseFd{Fd: defaultFd}, true
	}
	if n, ok := parseIntStrict(filename); ok {
		return &syntax.FdRedirect{TargetFd: defaultFd, SourceFd: n}, true
	}
	return nil, false
}

// filename := WORD
func (p *parser) filename() (string, bool) {
	t, ok := p.accept(token.Word)
	if !ok {
		return "", false
	}
	return t.Value, true
}

// newline_list := NEWLINE+
func (p *parser) newlineList() bool {
	if _, ok := p.accept(token.Newline); !ok {
		return false
	}
	for {
		if _, ok := p.accept(token.Newline); !ok {
			break
		}
	}
	return true
}

// linebreak := newline_list | EMPTY
func (p *parser) linebreak() { p.newlineList() }

// separator_op := '&' | ';'
func (p *parser) separatorOp() (token.Token, bool) {
	if t, ok := p.accept(token.Ampersand); ok {
		return t, true
	}
	if t, ok := p.accept(token.Semicolon); ok {
		return t, true
	}
	return token.Token{}, false
}

// separator := separator_op linebreak | newline_list
func (p *parser) separator() (token.Token, bool) {
	if sep, ok := p.separatorOp(); ok {
		p.linebreak()
		return sep, true
	}
	if p.newlineList() {
		return token.Token{Kind: token.Newline}, true
	}
	return token.Token{}, false
}

// word := word_part ( word_part )*, where a further word_part is only
// consumed if its token is Glued to the one before it (no word break) —
// the case of a "$(" command substitution embedded in a double-quoted
// string, spliced back into the one word it's part of.
func (p *parser) word() (syntax.Word, bool) {
	first, ok := p.wordPart()
	if !ok {
		return nil, false
	}
	parts := []syntax.Word{first}
	for {
		t, ok := p.peek()
		if !ok || !t.Glued {
			break
		}
		next, ok := p.wordPart()
		if !ok {
			break
		}
		parts = append(parts, next)
	}
	if len(parts) == 1 {
		return parts[0], true
	}
	return &syntax.CompositeWord{Parts: parts}, true
}

// word_part := WORD | QUOTED_WORD | cmdsub
func (p *parser) wordPart() (syntax.Word, bool) {
	if t, ok := p.accept(token.Word); ok {
		return &syntax.LiteralWord{Value: t.Value}, true
	}
	if t, ok := p.accept(token.QuotedWord); ok {
		return &syntax.LiteralWord{Value: t.Value, Quoted: true}, true
	}
	if cs, ok := p.cmdsub(); ok {
		return cs, true
	}
	return nil, false
}

// cmdsub := '$(' compound_list ')'
func (p *parser) cmdsub() (*syntax.CmdSub, bool) {
	save := p.cur
	if _, ok := p.accept(token.AndOpen); !ok {
		return nil, false
	}
	body, ok := p.compoundList()
	if !ok {
		p.cur = save
		return nil, false
	}
	if _, ok := p.accept(token.CloseRound); !ok {
		p.cur = save
		return nil, false
	}
	return &syntax.CmdSub{Body: body}, true
}

// assignment_word := WORD where value contains '=' and does not start with it
func (p *parser) assignmentWord() (syntax.AssignmentWord, bool) {
	save := p.cur
	t, ok := p.accept(token.Word)
	if !ok {
		return syntax.AssignmentWord{}, false
	}
	eq := strings.IndexByte(t.Value, '=')
	if eq <= 0 {
		p.cur = save
		return syntax.AssignmentWord{}, false
	}
	return syntax.AssignmentWord{Key: t.Value[:eq], Value: t.Value[eq+1:]}, true
}

func atoiOrZero(s string) int {
	n, ok := parseIntStrict(s)
	if !ok {
		return 0
	}
	return n
}

func parseIntStrict(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
