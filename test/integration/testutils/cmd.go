package testutils

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// RunWBS executes a wbs command with a whitespace separated arguments string.
// Use RunWBSArgs when arguments contain spaces, like project names.
func RunWBS(ctx context.Context, env []string, binary, cmdArgs string, nolog bool) (stdout, stderr []byte, err error) {
	return RunWBSArgs(ctx, env, binary, strings.Fields(cmdArgs), nolog)
}

// RunWBSArgs executes a wbs command with pre-split arguments. The process
// inherits the current environment with env on top, so env overrides it.
func RunWBSArgs(ctx context.Context, env []string, binary string, args []string, nolog bool) (stdout, stderr []byte, err error) {
	var outData, errData bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &outData
	cmd.Stderr = &errData

	cmd.Env = append(os.Environ(), env...)
	if nolog {
		cmd.Env = append(cmd.Env, "WBS_NO_LOG=true")
	}

	err = cmd.Run()

	return outData.Bytes(), errData.Bytes(), err
}
