// Package opener hands a (path, line) location to an external editor.
package opener

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"codemarks/internal/contextutil"
)

// ErrDisabled is returned by openers that have no command configured.
var ErrDisabled = errors.New("opener disabled")

// Opener opens a file at a 1-based line number.
type Opener interface {
	Open(ctx context.Context, path string, line int) error
}

// Disabled is an Opener that never opens anything.
type Disabled struct{}

// Open always returns ErrDisabled.
func (Disabled) Open(context.Context, string, int) error {
	return ErrDisabled
}

// CommandOpener runs a command template such as "code --goto {path}:{line}".
// The template is split on whitespace, so arguments cannot contain spaces.
// When the template has no {path} placeholder the path is appended as the last argument.
type CommandOpener struct {
	template []string
}

// New returns a CommandOpener for template, or Disabled when template is blank.
func New(template string) Opener {
	fields := strings.Fields(template)
	if len(fields) == 0 {
		return Disabled{}
	}
	return &CommandOpener{template: fields}
}

// Command expands the template for a location.
func (o *CommandOpener) Command(path string, line int) []string {
	lineStr := strconv.Itoa(line)
	args := make([]string, 0, len(o.template)+1)
	hasPath := false
	for _, field := range o.template {
		if strings.Contains(field, "{path}") {
			hasPath = true
		}
		field = strings.ReplaceAll(field, "{path}", path)
		field = strings.ReplaceAll(field, "{line}", lineStr)
		args = append(args, field)
	}
	if !hasPath {
		args = append(args, path)
	}
	return args
}

// Open starts the editor and returns without waiting for it to exit.
func (o *CommandOpener) Open(ctx context.Context, path string, line int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	args := o.Command(path, line)
	// Not bound to ctx: the editor must outlive the request that opened it.
	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", args[0], err)
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "opened source location", "path", path, "line", line, "command", args[0])

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Warn("editor exited with error", "command", args[0], "error", err)
		}
	}()
	return nil
}
