package algo

import (
	"errors"

	"github.com/aretw0/stepwise/pkg/domain"
)

// ErrHalted is returned by Run when Yield asked the procedure to stop.
var ErrHalted = errors.New("algorithm halted")

// Step is one visible unit of progress.
type Step struct {
	Label string
	Tally domain.Tally
}

// Yield receives every step. Returning false halts the procedure.
type Yield func(Step) bool

// Procedure is a runnable, stepwise algorithm bound to its container.
type Procedure interface {
	Kind() domain.Kind
	Run(yield Yield) (domain.Outcome, error)
}

type procFunc struct {
	kind domain.Kind
	run  func(t *tracker) (domain.Outcome, error)
}

func (p *procFunc) Kind() domain.Kind { return p.kind }

func (p *procFunc) Run(yield Yield) (domain.Outcome, error) {
	return p.run(&tracker{yield: yield})
}

func newProc(kind domain.Kind, run func(t *tracker) (domain.Outcome, error)) Procedure {
	return &procFunc{kind: kind, run: run}
}

// tracker forwards steps and stamps them with the current auxiliary memory.
type tracker struct {
	yield Yield
	aux   uint64
}

func (t *tracker) emit(label string, tally domain.Tally) error {
	tally.AuxBytes = t.aux
	if !t.yield(Step{Label: label, Tally: tally}) {
		return ErrHalted
	}
	return nil
}

func (t *tracker) compare(label string, swapped bool) error {
	tally := domain.Tally{Ops: 1, Comparisons: 1}
	if swapped {
		tally.Mutations = 1
	}
	return t.emit(label, tally)
}

func (t *tracker) write(label string) error {
	return t.emit(label, domain.Tally{Ops: 1, Mutations: 1})
}

// Drain runs p to completion without pacing and returns the accumulated stats.
func Drain(p Procedure) (domain.Outcome, domain.Stats, error) {
	var stats domain.Stats
	out, err := p.Run(func(s Step) bool {
		stats = stats.Add(s.Tally)
		return true
	})
	return out, stats, err
}

const wordBytes = 8
