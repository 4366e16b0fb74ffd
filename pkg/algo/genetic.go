package algo

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

// GeneticParams tune the evolution loop.
type GeneticParams struct {
	Generations  int     `mapstructure:"generations" validate:"gte=0,lte=10000"`
	MutationRate float64 `mapstructure:"mutation_rate" validate:"gte=0,lte=1"`
	Seed         uint64  `mapstructure:"seed"`
}

// DefaultGeneticParams mirror the classic demo: 50 generations, 10% mutation.
func DefaultGeneticParams() GeneticParams {
	return GeneticParams{Generations: 50, MutationRate: 0.1, Seed: 1}
}

// Genetic evolves the population for a fixed number of generations. One
// generation is one step: evaluate fitness, keep the top half as parents,
// breed a full replacement by uniform crossover and per-gene mutation.
func Genetic(p *viz.Population, params GeneticParams) (Procedure, error) {
	if params.Generations < 0 || params.MutationRate < 0 || params.MutationRate > 1 {
		return nil, fmt.Errorf("genetic: %w: generations must be >= 0 and mutation rate in [0, 1]", domain.ErrInvalidParams)
	}
	return newProc(domain.KindGenetic, func(t *tracker) (domain.Outcome, error) {
		size := p.Len()
		if size <= 1 {
			if size == 1 {
				return domain.Outcome{Found: true, Index: 0, Value: viz.Fitness(p.Genes(0))}, nil
			}
			return domain.NotFound(), nil
		}
		rng := viz.NewRand(params.Seed)
		genes := len(p.Genes(0))
		t.aux = uint64(2*size*genes) * wordBytes

		for gen := 0; gen < params.Generations; gen++ {
			ranked := rank(p)
			parents := ranked[:max(size/2, 1)]
			for _, i := range parents {
				p.SetFlags(i, domain.Mark(domain.FlagProcessing))
			}
			best := viz.Fitness(p.Genes(ranked[0]))
			err := t.emit(fmt.Sprintf("generation %d best %.3f", gen+1, best), domain.Tally{Ops: 1, Comparisons: size, Mutations: size})
			for _, i := range parents {
				p.SetFlags(i, domain.Unmark(domain.FlagProcessing))
			}
			if err != nil {
				return domain.Outcome{}, err
			}

			pool := make([][]float64, len(parents))
			for k, i := range parents {
				pool[k] = p.Genes(i)
			}
			for i := 0; i < size; i++ {
				p.Replace(i, breed(rng, pool, params.MutationRate))
			}
		}

		ranked := rank(p)
		p.SetFlags(ranked[0], domain.Mark(domain.FlagFound))
		return domain.Outcome{
			Found: true,
			Index: ranked[0],
			Value: viz.Fitness(p.Genes(ranked[0])),
		}, nil
	}), nil
}

// rank orders individuals by descending fitness; ties keep index order.
func rank(p *viz.Population) []int {
	fit := make([]float64, p.Len())
	idx := make([]int, p.Len())
	for i := range idx {
		idx[i] = i
		fit[i] = viz.Fitness(p.Genes(i))
	}
	sort.SliceStable(idx, func(a, b int) bool { return fit[idx[a]] > fit[idx[b]] })
	return idx
}

func breed(rng *rand.Rand, parents [][]float64, mutation float64) []float64 {
	a := parents[rng.IntN(len(parents))]
	b := parents[rng.IntN(len(parents))]
	child := make([]float64, len(a))
	for j := range child {
		if rng.Float64() < 0.5 {
			child[j] = a[j]
		} else {
			child[j] = b[j]
		}
		if rng.Float64() < mutation {
			child[j] = rng.Float64()
		}
	}
	return child
}
