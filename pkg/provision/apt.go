package provision

import (
	"context"
	"os"
	"os/exec"
)

// Helpers for running apt in a sane way.

// osRunCommand calls cmd.Run, this is used as an overloading point so we can
// test what *would* be run without actually executing another program
func osRunCommand(cmd *exec.Cmd) error {
	return cmd.Run()
}

var runCommand = osRunCommand

// aptGetCommand is the default apt-get invocation. The dpkg options keep apt
// from blocking on a configuration prompt.
var aptGetCommand = []string{
	"apt-get", "--option=Dpkg::Options::=--force-confold",
	"--assume-yes", "--quiet",
}

// aptGetEnvOptions are options we need to pass to apt-get to not have it
// prompt the user
var aptGetEnvOptions = []string{"DEBIAN_FRONTEND=noninteractive"}

// AptGetUpdate refreshes the OS package index.
func AptGetUpdate(ctx context.Context) error {
	return runApt(ctx, "update")
}

// AptGetInstall runs 'apt-get install packages' for the packages listed here
func AptGetInstall(ctx context.Context, packages ...string) error {
	args := append([]string{"install"}, packages...)
	return runApt(ctx, args...)
}

func runApt(ctx context.Context, args ...string) error {
	cmdArgs := append([]string(nil), aptGetCommand...)
	cmdArgs = append(cmdArgs, args...)
	cmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	cmd.Env = append(os.Environ(), aptGetEnvOptions...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return runCommand(cmd)
}
