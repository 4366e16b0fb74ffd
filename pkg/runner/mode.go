package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Mode selects how a run is paced.
type Mode string

const (
	// ModeLearning uses the configured speed.
	ModeLearning Mode = "learning"
	// ModeQuick always steps at the minimum delay.
	ModeQuick Mode = "quick"
	// ModeChallenge cancels the run when the countdown expires.
	ModeChallenge Mode = "challenge"
)

// ParseMode accepts a mode name, case-insensitively. Empty means learning.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeLearning, nil
	case ModeLearning, ModeQuick, ModeChallenge:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidParams, s)
	}
}
