package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/dustin/go-humanize"
)

// FrameRenderer turns a snapshot into printable text (bars, grids, boards).
type FrameRenderer func(f *domain.Frame) string

// TextHandler prints updates for a terminal and reads interactive commands.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer FrameRenderer
	// Redraw clears the screen before each frame so the run animates in place.
	Redraw bool

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithFrameRenderer draws every frame below the status line.
func WithFrameRenderer(fr FrameRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = fr
	}
}

// WithRedraw animates in place instead of scrolling.
func WithRedraw(on bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Redraw = on
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle prints the status line and, when a renderer is set, the frame.
func (h *TextHandler) Handle(_ context.Context, u Update) error {
	if h.Redraw {
		fmt.Fprint(h.Writer, "\033[H\033[2J")
	}
	if _, err := fmt.Fprintln(h.Writer, StatusLine(u)); err != nil {
		return err
	}
	if h.Renderer != nil && u.Frame != nil {
		fmt.Fprintln(h.Writer, strings.TrimRight(h.Renderer(u.Frame), "\n"))
	}
	if u.State.Status == domain.StatusCompleted && u.State.Outcome != nil {
		fmt.Fprintln(h.Writer, OutcomeLine(*u.State.Outcome))
	}
	if u.State.Fault != nil {
		fmt.Fprintf(h.Writer, "fault: %s\n", u.State.Fault.Message)
	}
	return nil
}

// StatusLine summarizes an update on one line.
func StatusLine(u Update) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s step %d", u.State.Status, u.State.Kind, u.State.StepCount)
	if u.Label != "" {
		fmt.Fprintf(&b, ": %s", u.Label)
	}
	fmt.Fprintf(&b, " | ops %s cmp %s mut %s mem %s %s",
		humanize.Comma(u.Stats.Operations),
		humanize.Comma(u.Stats.Comparisons),
		humanize.Comma(u.Stats.Mutations),
		humanize.IBytes(u.Stats.MemoryEstimate),
		u.Stats.Elapsed.Round(time.Millisecond),
	)
	return b.String()
}

// OutcomeLine describes a finished run's result.
func OutcomeLine(o domain.Outcome) string {
	var parts []string
	switch {
	case o.Found && o.Index >= 0:
		parts = append(parts, fmt.Sprintf("found at %d", o.Index))
	case !o.Found && o.Index < 0 && len(o.Sequence) == 0 && o.Detail == "":
		parts = append(parts, "not found")
	}
	if o.Value != 0 {
		parts = append(parts, fmt.Sprintf("value %g", o.Value))
	}
	if len(o.Path) > 0 {
		parts = append(parts, fmt.Sprintf("path %s (cost %g)", strings.Join(o.Path, " → "), o.Cost))
	}
	if len(o.Sequence) > 0 {
		parts = append(parts, "sequence "+strings.Join(o.Sequence, " "))
	}
	if o.Detail != "" {
		parts = append(parts, o.Detail)
	}
	if len(parts) == 0 {
		return "done"
	}
	return strings.Join(parts, ", ")
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// Input reads the next command line. Malformed lines are reported on the
// writer and skipped.
func (h *TextHandler) Input(ctx context.Context) (Command, error) {
	h.initPump()
	for {
		select {
		case <-ctx.Done():
			return Command{}, ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return Command{}, io.EOF
			}
			if res.err != nil {
				return Command{}, res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err == nil && clean != "" {
				var cmd Command
				if cmd, err = ParseCommand(clean); err == nil {
					return cmd, nil
				}
			}
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Try p, r, c, reset or s <ms>.\n", err)
			}
		}
	}
}

// CommandSource yields presentation commands.
type CommandSource interface {
	Input(ctx context.Context) (Command, error)
}

// Control dispatches commands from src to r until src is exhausted or ctx
// is done. Rejected commands are reported through report and do not stop
// the loop.
func Control(ctx context.Context, r *Runner, src CommandSource, report func(error)) error {
	for {
		cmd, err := src.Input(ctx)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := Dispatch(ctx, r, cmd); err != nil && report != nil {
			report(err)
		}
	}
}
