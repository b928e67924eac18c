// Package syntax defines the owning algebraic syntax tree the parser
// builds and the executor walks: programs, lists, pipelines, commands,
// redirects and words.
package syntax

// Node is implemented by every tree element. The tree is strictly
// tree-shaped: no cross-links, no back-pointers, matching how the parser
// builds it bottom-up and how the executor consumes it by recursive
// descent.
type Node interface {
	Begin() int
	End() int
}

type base struct{ begin, end int }

func (b base) Begin() int { return b.begin }
func (b base) End() int   { return b.end }

// Program is the root: a sequence of complete commands, each a List.
type Program struct {
	base
	Lists []List
}

// List is either a SequentialList (children separated by ';' or newline)
// or an AsyncList (Left run first, then Right run in the background via
// '&'). Both have an optional Left and a required Right, forming a
// left-leaning spine.
type List interface {
	Node
	listNode()
}

type SequentialList struct {
	base
	Left  List
	Right OpList
}

type AsyncList struct {
	base
	Left  List
	Right OpList
}

func (*SequentialList) listNode() {}
func (*AsyncList) listNode()      {}

// AsyncFromSeq performs the "asynchrony rewrite": a trailing '&' converts
// the preceding sequential list into an async one at the same point in the
// spine, carrying over Left/Right unchanged.
func AsyncFromSeq(s *SequentialList) *AsyncList {
	return &AsyncList{base: s.base, Left: s.Left, Right: s.Right}
}

// OpList is one of AndList, OrList, Pipeline.
type OpList interface {
	Node
	opListNode()
}

type AndList struct {
	base
	Left, Right OpList
}

type OrList struct {
	base
	Left, Right OpList
}

type Pipeline struct {
	base
	Commands []Command
	Negated  bool
}

func (*AndList) opListNode()  {}
func (*OrList) opListNode()   {}
func (*Pipeline) opListNode() {}

// Command is one of UnsubCommand, SimpleAssignment, Subshell.
type Command interface {
	Node
	commandNode()
}

// UnsubCommand holds a program word plus argument words that may still
// contain CmdSub nodes ("unsubstituted"); the executor expands it into a
// plain argv before exec.
type UnsubCommand struct {
	base
	Program   Word
	Arguments []Word
	Redirects []Redirect
	Envs      []AssignmentWord
}

// SimpleAssignment holds assignments and redirections but no program: it
// mutates shell variables rather than spawning anything.
type SimpleAssignment struct {
	base
	Redirects []Redirect
	Envs      []AssignmentWord
}

// Subshell owns a body List evaluated in a forked, isolated copy of shell
// state, plus its own redirections.
type Subshell struct {
	base
	Body      List
	Redirects []Redirect
}

func (*UnsubCommand) commandNode()     {}
func (*SimpleAssignment) commandNode() {}
func (*Subshell) commandNode()         {}

// Word is a literal token (Word/QuotedWord), a CmdSub ('$(' list ')'), or a
// CompositeWord gluing several of either together with no word break.
// LiteralWord.Value already has quoting/escaping resolved by the scanner.
type Word interface {
	Node
	wordNode()
}

type LiteralWord struct {
	base
	Value  string
	Quoted bool
}

type CmdSub struct {
	base
	Body List
}

// CompositeWord is a run of adjacent, word-break-free parts that together
// make up one word, e.g. a double-quoted string with a "$(" command
// substitution embedded in it: the literal text before and after the
// substitution and the substitution itself are separate Words glued with
// no space between them.
type CompositeWord struct {
	base
	Parts []Word
}

func (*LiteralWord) wordNode()   {}
func (*CmdSub) wordNode()        {}
func (*CompositeWord) wordNode() {}

// AssignmentWord is a token whose text contains '=' not at position 0: Key
// is the part before '=', Value the part after (possibly empty).
type AssignmentWord struct {
	base
	Key   string
	Value string
}

// OpenKind is the disposition a FileRedirect opens its target with.
type OpenKind int

const (
	OpenRead OpenKind = iota
	OpenReplace
	OpenAppend
	OpenRW
)

// Redirect is a sum of three shapes: FileRedirect, FdRedirect, CloseFd.
type Redirect interface {
	Node
	redirectNode()
}

type FileRedirect struct {
	base
	TargetFd int
	Kind     OpenKind
	Filename string
}

type FdRedirect struct {
	base
	TargetFd int
	SourceFd int
}

type CloseFd struct {
	base
	Fd int
}

func (*FileRedirect) redirectNode() {}
func (*FdRedirect) redirectNode()   {}
func (*CloseFd) redirectNode()      {}

// DefaultTargetFd returns the target fd implied by a redirect operator
// absent a leading IO_NUMBER. '<>' defaults to fd 0, the POSIX-aligned
// correction over the occasional stdout default found in older sources.
func DefaultTargetFd(kind OpenKind) int {
	switch kind {
	case OpenRead, OpenRW:
		return 0
	default:
		return 1
	}
}
