//go:build !unix

package local

import "os/exec"

// killProcessGroup keeps the exec.CommandContext default of killing the
// direct child; WaitDelay still bounds the wait on inherited pipes.
func killProcessGroup(*exec.Cmd) {}
