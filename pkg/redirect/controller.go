// Package redirect implements scoped acquisition of file descriptors from
// redirect specs: open files in the spawning process, validate duplication
// targets, and resolve the result into the *os.File triple (plus any extra
// fds beyond stderr) that os/exec hands to a child.
//
// Go's exec.Cmd does not inherit the spawning process's fd table the way a
// raw fork() does: every fd opened through the os package carries
// close-on-exec by default, and only Stdin/Stdout/Stderr/ExtraFiles cross
// into the child. That collapses the original shell's explicit
// close-fds-in-child bookkeeping (needed because fork() duplicates
// everything) into simply never handing a fd to the child in the first
// place: a redirect that would have been "close fd 5 in the child" here is
// just "don't put fd 5 in ExtraFiles".
package redirect

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/Brendon-Mendicino/testsh/pkg/syntax"
)

// OpenError is returned when opening a FileRedirect's target fails.
type OpenError struct{ Err error }

func (e OpenError) Error() string { return fmt.Sprintf("open: %v", e.Err) }

// FdInvalidError is returned when a duplication redirect names a source fd
// that isn't open.
type FdInvalidError struct{ Fd int }

func (e FdInvalidError) Error() string {
	return fmt.Sprintf("testsh: file descriptor %d does not exist", e.Fd)
}

// Controller owns the fd lifetimes implied by one command's redirects. It
// is built in the spawning process (so open() errors can abort the command
// before forking) and then asked to Resolve into the files a child
// process needs. Close must run exactly once, after the child (if any) has
// started and duplicated what it needs.
type Controller struct {
	base map[int]*os.File // target fd -> source file, seeded by pipeline wiring
	opened []*os.File     // files this Controller itself opened, for Close
}

// New seeds a Controller with the fds a pipeline stage already owns before
// its own redirects are layered on: typically 0/1/2 pointing at the
// previous/next pipe ends or the terminal.
func New(base map[int]*os.File) *Controller {
	b := make(map[int]*os.File, len(base))
	for k, v := range base {
		b[k] = v
	}
	return &Controller{base: b}
}

// AddRedirects layers redirs onto the base set, in parse order, so a later
// redirect overrides an earlier one targeting the same fd exactly as
// running the equivalent dup2 calls in sequence would. On the first
// failure it returns a non-nil error and performs no further processing;
// the caller aborts the command with exit status 1 without forking.
func (c *Controller) AddRedirects(redirs []syntax.Redirect) error {
	for _, r := range redirs {
		switch red := r.(type) {
		case *syntax.FileRedirect:
			f, err := openFileRedirect(red)
			if err != nil {
				return err
			}
			c.opened = append(c.opened, f)
			c.base[red.TargetFd] = f
		case *syntax.FdRedirect:
			if _, err := unix.FcntlInt(uintptr(red.SourceFd), unix.F_GETFD, 0); err != nil {
				return FdInvalidError{Fd: red.SourceFd}
			}
			src, ok := c.base[red.SourceFd]
			if !ok {
				src = os.NewFile(uintptr(red.SourceFd), fmt.Sprintf("fd%d", red.SourceFd))
			}
			c.base[red.TargetFd] = src
		case *syntax.CloseFd:
			delete(c.base, red.Fd)
		}
	}
	return nil
}

func openFileRedirect(r *syntax.FileRedirect) (*os.File, error) {
	var flags int
	switch r.Kind {
	case syntax.OpenRead:
		flags = os.O_RDONLY
	case syntax.OpenReplace:
		flags = os.O_CREATE | os.O_TRUNC | os.O_WRONLY
	case syntax.OpenAppend:
		flags = os.O_CREATE | os.O_APPEND | os.O_WRONLY
	case syntax.OpenRW:
		flags = os.O_CREATE | os.O_RDWR
	}
	f, err := os.OpenFile(r.Filename, flags, 0664)
	if err != nil {
		return nil, OpenError{Err: err}
	}
	return f, nil
}

// Resolve returns the fd-0/1/2 triple and any files bound to higher target
// fds, in ascending target-fd order, ready to become cmd.Stdin/Stdout/
// Stderr and cmd.ExtraFiles. A gap fd above 2 with nothing bound to it is
// left nil: os/exec treats a nil *os.File in ExtraFiles as "close this
// descriptor in the child" rather than opening anything, which is exactly
// what a gap should mean here, and lets every explicit target land at its
// requested fd number without needing a filler file.
func (c *Controller) Resolve() (stdin, stdout, stderr *os.File, extra []*os.File) {
	stdin, stdout, stderr = c.base[0], c.base[1], c.base[2]

	maxFd := 2
	for fd := range c.base {
		if fd > maxFd {
			maxFd = fd
		}
	}
	for fd := 3; fd <= maxFd; fd++ {
		extra = append(extra, c.base[fd])
	}
	return stdin, stdout, stderr, extra
}

// Close releases every fd this Controller opened for FileRedirects. Fds
// inherited from the caller's base map are never closed here: the caller
// still owns those.
func (c *Controller) Close() {
	for _, f := range c.opened {
		f.Close()
	}
}
