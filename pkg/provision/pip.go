package provision

import (
	"context"
	"os"
	"os/exec"

	"github.com/bankreco/bankreco/pkg/status"
)

// pipCommand is the default pip invocation.
var pipCommand = []string{"pip3", "install"}

// PipInstallRequirements installs every package listed in the manifest file.
//
// A missing or unreadable manifest fails the step before pip is invoked, so
// the caller propagates a non-zero exit status.
func PipInstallRequirements(ctx context.Context, manifest string) error {
	if _, err := os.Stat(manifest); err != nil {
		return status.ErrManifest.Wrap(err)
	}
	cmdArgs := append([]string(nil), pipCommand...)
	cmdArgs = append(cmdArgs, "--requirement", manifest)
	cmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return runCommand(cmd)
}
