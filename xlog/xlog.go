/*
Package xlog provides a minimal Logger interface for debug output of the codec
packages.

The interface is satisfied by *log.Logger. Loggers of other logging libraries
can be adapted by implementing the single Output method. All functions of the
package accept a nil Logger; nothing is formatted or written in that case, so
debug statements cost nothing if logging is disabled.
*/
package xlog

import "fmt"

// Logger is the interface required for debug output. The log.Logger type
// supports this interface.
type Logger interface {
	Output(calldepth int, s string) error
}

// Print outputs the arguments using the logger. If the logger is nil nothing
// will be printed.
func Print(l Logger, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprint(v...))
	}
}

// Printf prints the arguments using the format string. If the logger argument
// is nil nothing will be printed.
func Printf(l Logger, format string, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}

// Println prints the arguments and adds a newline. If the logger argument is
// nil nothing will be printed.
func Println(l Logger, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintln(v...))
	}
}

type prefixLogger struct {
	prefix string
	l      Logger
}

func (p *prefixLogger) Output(calldepth int, s string) error {
	return p.l.Output(calldepth+1, p.prefix+s)
}

// WithPrefix returns a logger that puts prefix in front of every message. A
// nil logger stays nil.
func WithPrefix(l Logger, prefix string) Logger {
	if l == nil {
		return nil
	}
	return &prefixLogger{prefix: prefix, l: l}
}

// Func adapts an ordinary print function to the Logger interface. The call
// depth is ignored.
type Func func(s string)

// Output calls the function.
func (f Func) Output(calldepth int, s string) error {
	f(s)
	return nil
}
