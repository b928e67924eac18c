package syntax

import "encoding/gob"

// A subshell or async-list body crosses a re-exec boundary (see
// pkg/spawn's doc comment): the parent gob-encodes the body List and
// ships it to the worker process over a pipe instead of re-parsing text.
// gob requires every concrete type that will flow through an interface
// value to be registered up front.
func init() {
	gob.Register(&SequentialList{})
	gob.Register(&AsyncList{})
	gob.Register(&AndList{})
	gob.Register(&OrList{})
	gob.Register(&Pipeline{})
	gob.Register(&UnsubCommand{})
	gob.Register(&SimpleAssignment{})
	gob.Register(&Subshell{})
	gob.Register(&LiteralWord{})
	gob.Register(&CmdSub{})
	gob.Register(&CompositeWord{})
	gob.Register(&FileRedirect{})
	gob.Register(&FdRedirect{})
	gob.Register(&CloseFd{})
}
