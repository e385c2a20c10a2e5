//go:build !windows

package main

import (
	"os"
	"syscall"
)

// termsigs contains the signals indicating termination of the program.
// The temporary output file is removed before the program exits.
var termsigs = []os.Signal{
	syscall.SIGHUP,
	syscall.SIGINT,
	syscall.SIGQUIT,
	syscall.SIGPIPE,
	syscall.SIGTERM,
	syscall.SIGUSR1,
	syscall.SIGUSR2,
	syscall.SIGXCPU,
	syscall.SIGXFSZ,
}
