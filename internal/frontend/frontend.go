// Package frontend runs the web UI's own build tool to refresh the dist
// directory before it is embedded.
package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

// ErrSkipped is returned when there is no web UI project to build.
var ErrSkipped = errors.New("web UI project not found")

// BuildError reports a failed build tool run with its captured output.
type BuildError struct {
	Command []string
	Stderr  string
	Err     error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s: %v", strings.Join(e.Command, " "), e.Err)
	if errors.Is(e.Err, exec.ErrNotFound) {
		msg = fmt.Sprintf("%s not found", e.Command[0])
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Err }

// Output is what the build tool printed.
type Output struct {
	Stdout string
	Stderr string
}

// runFunc executes a command in dir. Tests swap it out.
var runFunc = defaultRun

func defaultRun(ctx context.Context, dir string, args []string) (Output, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return Output{Stdout: stdout.String(), Stderr: stderr.String()}, err
}

// ParseCommand splits a build command string with shell quoting rules.
func ParseCommand(command string) ([]string, error) {
	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", command, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return args, nil
}

// Build runs command inside webuiDir and blocks until it exits. It returns
// ErrSkipped when webuiDir has no package.json, and a *BuildError when the
// tool is missing or exits non-zero.
func Build(ctx context.Context, webuiDir, command string) (Output, error) {
	if _, err := os.Stat(filepath.Join(webuiDir, "package.json")); err != nil {
		return Output{}, fmt.Errorf("%w: %s", ErrSkipped, webuiDir)
	}
	args, err := ParseCommand(command)
	if err != nil {
		return Output{}, err
	}
	out, err := runFunc(ctx, webuiDir, args)
	if err != nil {
		return out, &BuildError{Command: args, Stderr: out.Stderr, Err: err}
	}
	return out, nil
}
