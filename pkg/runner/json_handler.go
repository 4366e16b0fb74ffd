package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// JSONHandler streams updates as JSON lines and reads commands as JSON
// objects ({"command":"speed","speed_ms":200}) or the short text form.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Handle writes u as a single line.
func (h *JSONHandler) Handle(_ context.Context, u Update) error {
	return h.Encoder.Encode(u)
}

// Input reads one command per line.
func (h *JSONHandler) Input(ctx context.Context) (Command, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Command{}, err
		}
		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text != "" {
			var cmd Command
			if json.Unmarshal([]byte(text), &cmd) == nil && cmd.Name != "" {
				return cmd, nil
			}
			if cmd, perr := ParseCommand(text); perr == nil {
				return cmd, nil
			}
		}
		if err != nil {
			return Command{}, err
		}
	}
}
