// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// Runner abstracts process execution so adapters can be tested without the
// real tools installed.
type Runner interface {
	LookPath(file string) (string, error)
	// Run executes name with args, feeding stdin when non-nil, and returns
	// everything written to stdout and stderr. A non-zero exit is reported
	// through err alongside the captured output.
	Run(ctx context.Context, name string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// OSRunner is the production Runner backed by os/exec.
type OSRunner struct{}

func (OSRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OSRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

var defaultRunner Runner = OSRunner{}
