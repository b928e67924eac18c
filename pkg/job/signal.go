package job

import "golang.org/x/sys/unix"

var signalNames = map[int]string{
	int(unix.SIGHUP):  "HUP",
	int(unix.SIGINT):  "INT",
	int(unix.SIGQUIT): "QUIT",
	int(unix.SIGILL):  "ILL",
	int(unix.SIGTRAP): "TRAP",
	int(unix.SIGABRT): "ABRT",
	int(unix.SIGBUS):  "BUS",
	int(unix.SIGFPE):  "FPE",
	int(unix.SIGKILL): "KILL",
	int(unix.SIGUSR1): "USR1",
	int(unix.SIGSEGV): "SEGV",
	int(unix.SIGUSR2): "USR2",
	int(unix.SIGPIPE): "PIPE",
	int(unix.SIGALRM): "ALRM",
	int(unix.SIGTERM): "TERM",
	int(unix.SIGCHLD): "CHLD",
	int(unix.SIGCONT): "CONT",
	int(unix.SIGSTOP): "STOP",
	int(unix.SIGTSTP): "TSTP",
	int(unix.SIGTTIN): "TTIN",
	int(unix.SIGTTOU): "TTOU",
	int(unix.SIGURG):  "URG",
	int(unix.SIGXCPU): "XCPU",
	int(unix.SIGXFSZ): "XFSZ",
	int(unix.SIGIO):   "IO",
	int(unix.SIGSYS):  "SYS",
}

// SignalName returns the short POSIX name for a signal number, e.g. "TERM"
// for 15, for use in "<pid>: Terminated by signal TERM(15)"-style
// diagnostics. Unknown numbers return "?".
func SignalName(sig int) string {
	if name, ok := signalNames[sig]; ok {
		return name
	}
	return "?"
}
