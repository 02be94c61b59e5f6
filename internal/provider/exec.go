package provider

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Command runs a local CLI tool as the model transport: the prompt is
// written to stdin and stdout is returned as a raw string payload for
// the invoker to decode.
type Command struct {
	name string
	args []string
}

// NewCommand creates a Command provider for the given binary and args.
func NewCommand(name string, args ...string) *Command {
	return &Command{name: name, args: append([]string(nil), args...)}
}

// Complete executes the command once. Non-zero exit is a provider
// error; stderr is folded into the error message for diagnostics.
func (c *Command) Complete(ctx context.Context, req Request) (Response, error) {
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Stdin = strings.NewReader(req.Prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return Response{}, fmt.Errorf("command %q failed: %w: %s", c.name, err, msg)
		}
		return Response{}, fmt.Errorf("command %q failed: %w", c.name, err)
	}

	return Response{Raw: strings.TrimSpace(stdout.String())}, nil
}
