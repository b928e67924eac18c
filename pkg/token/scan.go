package token

import (
	"fmt"
	"strings"
)

// Scan classifies raw input text into the token kinds of the core grammar.
// It is intentionally small: the interactive line editor, history and
// completion are external collaborators, and nothing in the parser,
// executor or job-control runtime depends on scanning internals beyond the
// Source contract.
func Scan(input string) ([]Token, error) {
	s := &scanner{input: input}
	var toks []Token
	for {
		t, err := s.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind == Eof {
			return toks, nil
		}
	}
}

type scanner struct {
	input   string
	pos     int
	pending []Token // extra tokens produced by a split quoted scan, queued for the next next() calls
}

func (s *scanner) rest() string { return s.input[s.pos:] }

func (s *scanner) peekByte() (byte, bool) {
	if s.pos >= len(s.input) {
		return 0, false
	}
	return s.input[s.pos], true
}

func (s *scanner) next() (Token, error) {
	if len(s.pending) > 0 {
		t := s.pending[0]
		s.pending = s.pending[1:]
		return t, nil
	}

	s.skipInlineSpaceAndComments()

	begin := s.pos
	b, ok := s.peekByte()
	if !ok {
		return Token{Kind: Eof, Begin: begin, End: begin}, nil
	}

	switch b {
	case '\n':
		s.pos++
		return s.tok(Newline, begin), nil
	case ';':
		s.pos++
		return s.tok(Semicolon, begin), nil
	case '&':
		s.pos++
		if s.hasByte('&') {
			s.pos++
			return s.tok(AndAnd, begin), nil
		}
		return s.tok(Ampersand, begin), nil
	case '|':
		s.pos++
		if s.hasByte('|') {
			s.pos++
			return s.tok(OrOr, begin), nil
		}
		return s.tok(Pipe, begin), nil
	case '(':
		s.pos++
		return s.tok(OpenRound, begin), nil
	case ')':
		s.pos++
		return s.tok(CloseRound, begin), nil
	case '<':
		s.pos++
		switch {
		case s.hasByte('&'):
			s.pos++
			return s.tok(LessAnd, begin), nil
		case s.hasByte('>'):
			s.pos++
			return s.tok(LessGreat, begin), nil
		default:
			return s.tok(Less, begin), nil
		}
	case '>':
		s.pos++
		switch {
		case s.hasByte('&'):
			s.pos++
			return s.tok(GreatAnd, begin), nil
		case s.hasByte('>'):
			s.pos++
			return s.tok(DGreat, begin), nil
		default:
			return s.tok(Great, begin), nil
		}
	case '\'', '"':
		toks, err := s.scanQuoted(begin, b)
		if err != nil {
			return Token{}, err
		}
		s.pending = toks[1:]
		return toks[0], nil
	case '\\':
		if s.pos+1 == len(s.input) {
			// Trailing backslash with nothing after it: an explicit
			// continuation marker rather than an escape of anything.
			s.pos++
			return s.tok(LineContinuation, begin), nil
		}
	case '!':
		if s.wordBreaksAt(s.pos + 1) {
			s.pos++
			return s.tok(Bang, begin), nil
		}
	case '$':
		if strings.HasPrefix(s.rest(), "$(") {
			s.pos += 2
			return s.tok(AndOpen, begin), nil
		}
	}

	return s.scanWord(begin)
}

func (s *scanner) tok(k Kind, begin int) Token {
	return Token{Kind: k, Value: s.input[begin:s.pos], Raw: s.input[begin:s.pos], Begin: begin, End: s.pos}
}

func (s *scanner) hasByte(b byte) bool {
	c, ok := s.peekByte()
	return ok && c == b
}

// wordBreaksAt reports whether position i is at whitespace, EOF or an
// operator character, i.e. nothing that could continue a bare word.
func (s *scanner) wordBreaksAt(i int) bool {
	if i >= len(s.input) {
		return true
	}
	return strings.IndexByte(" \t\n;&|()<>'\"", s.input[i]) >= 0
}

func (s *scanner) skipInlineSpaceAndComments() {
	for {
		b, ok := s.peekByte()
		if !ok {
			return
		}
		if b == ' ' || b == '\t' || b == '\r' {
			s.pos++
			continue
		}
		if b == '#' {
			for {
				b, ok := s.peekByte()
				if !ok || b == '\n' {
					break
				}
				s.pos++
			}
			continue
		}
		return
	}
}

// scanQuoted scans a quoted string starting at its opening quote character.
// A single-quoted string is always exactly one literal QuotedWord token. A
// double-quoted string may contain one or more "$(" command substitutions;
// each one splits the string into a literal chunk, the substitution's own
// tokens (scanned by the ordinary, unquoted path), and a following literal
// chunk, all marked Glued so the parser splices them back into one Word.
func (s *scanner) scanQuoted(begin int, quote byte) ([]Token, error) {
	s.pos++ // opening quote
	var toks []Token
	chunkBegin := s.pos
	var val strings.Builder

	flushLiteral := func() {
		toks = append(toks, Token{
			Kind:  QuotedWord,
			Value: val.String(),
			Raw:   s.input[chunkBegin:s.pos],
			Begin: chunkBegin,
			End:   s.pos,
			Glued: len(toks) > 0,
		})
		val.Reset()
	}

	for {
		b, ok := s.peekByte()
		if !ok {
			return nil, fmt.Errorf("unterminated quoted string starting at offset %d", begin)
		}
		if b == quote {
			s.pos++
			flushLiteral()
			return toks, nil
		}
		if quote == '"' && b == '\\' && s.pos+1 < len(s.input) {
			next := s.input[s.pos+1]
			if next == '"' || next == '\\' || next == '$' {
				val.WriteByte(next)
				s.pos += 2
				continue
			}
		}
		if quote == '"' && b == '$' && strings.HasPrefix(s.rest(), "$(") {
			flushLiteral()

			andOpenBegin := s.pos
			s.pos += 2 // "$("
			toks = append(toks, Token{Kind: AndOpen, Value: "$(", Raw: "$(", Begin: andOpenBegin, End: s.pos, Glued: true})

			depth := 1
			for depth > 0 {
				t, err := s.next()
				if err != nil {
					return nil, err
				}
				if t.Kind == Eof {
					return nil, fmt.Errorf("unterminated command substitution starting at offset %d", andOpenBegin)
				}
				switch t.Kind {
				case OpenRound, AndOpen:
					depth++
				case CloseRound:
					depth--
				}
				toks = append(toks, t)
			}

			chunkBegin = s.pos
			continue
		}
		val.WriteByte(b)
		s.pos++
	}
}

func (s *scanner) scanWord(begin int) (Token, error) {
	var val strings.Builder
	for {
		b, ok := s.peekByte()
		if !ok || s.wordBreaksAt(s.pos) {
			break
		}
		if b == '\\' {
			if s.pos+1 >= len(s.input) {
				// trailing backslash handled by next() on the next call
				break
			}
			val.WriteByte(s.input[s.pos+1])
			s.pos += 2
			continue
		}
		val.WriteByte(b)
		s.pos++
	}
	if s.pos == begin {
		return Token{}, fmt.Errorf("skipped invalid byte %q at offset %d", s.input[begin], begin)
	}
	raw := s.input[begin:s.pos]

	// An all-digit word immediately followed (no intervening space) by a
	// redirect operator is an IO_NUMBER, not a plain argument word.
	if isAllDigits(val.String()) && s.atRedirectOperator() {
		return Token{Kind: IoNumber, Value: val.String(), Raw: raw, Begin: begin, End: s.pos}, nil
	}
	return Token{Kind: Word, Value: val.String(), Raw: raw, Begin: begin, End: s.pos}, nil
}

func (s *scanner) atRedirectOperator() bool {
	r := s.rest()
	for _, op := range []string{"<&", ">&", "<>", ">>", "<", ">"} {
		if strings.HasPrefix(r, op) {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
