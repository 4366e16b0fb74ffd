package runner

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Command is a presentation request addressed to a Runner. Starting a run
// needs a container and is handled by the caller, so Dispatch covers the
// commands that act on the current run only.
type Command struct {
	Name  string `json:"command" validate:"required,oneof=pause resume cancel reset speed"`
	Speed int    `json:"speed_ms,omitempty" validate:"omitempty,min=100,max=2000"`
}

// ParseCommand reads the short text form used by interactive terminals:
// "p", "pause", "r", "resume", "c", "cancel", "reset", "s 250", "speed 250".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", domain.ErrInvalidParams)
	}
	name := map[string]string{"p": "pause", "r": "resume", "c": "cancel", "s": "speed"}[fields[0]]
	if name == "" {
		name = fields[0]
	}
	switch name {
	case "pause", "resume", "cancel", "reset", "speed":
	default:
		return Command{}, fmt.Errorf("%w: unknown command %q", domain.ErrInvalidParams, fields[0])
	}
	cmd := Command{Name: name}
	if name == "speed" {
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("%w: usage: speed <ms>", domain.ErrInvalidParams)
		}
		ms, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: speed %q is not a number", domain.ErrInvalidParams, fields[1])
		}
		cmd.Speed = ms
	}
	return cmd, nil
}

// Dispatch applies cmd to r.
func Dispatch(_ context.Context, r *Runner, cmd Command) error {
	switch cmd.Name {
	case "pause":
		return r.Pause()
	case "resume":
		return r.Resume()
	case "cancel":
		return r.Cancel()
	case "reset":
		return r.Reset()
	case "speed":
		return r.SetSpeed(cmd.Speed)
	default:
		return fmt.Errorf("%w: unknown command %q", domain.ErrInvalidParams, cmd.Name)
	}
}
