package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/fatih/color"
)

var (
	systemColor  = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	faultColor   = color.New(color.FgRed, color.Bold)
)

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	systemColor.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

// logCompletion reports how a run ended.
func logCompletion(w io.Writer, st domain.RunState) {
	switch st.Status {
	case domain.StatusCompleted:
		successColor.Fprintf(w, ">>> Completed %s in %d steps.\n", st.Kind, st.StepCount)
	case domain.StatusCancelled:
		if st.Fault != nil {
			faultColor.Fprintf(w, ">>> %s faulted at step %d: %s\n", st.Kind, st.StepCount, st.Fault.Message)
			return
		}
		warnColor.Fprintf(w, ">>> Cancelled %s at step %d.\n", st.Kind, st.StepCount)
	}
}
