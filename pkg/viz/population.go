package viz

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Population holds the gene vectors evolved by genetic search.
// Vectors are replaced whole and never mutated in place.
type Population struct {
	*Store[int, []float64]
}

// NewPopulation creates size individuals with genes drawn uniformly from [0,1).
func NewPopulation(rng *rand.Rand, size, genes int) *Population {
	ind := make([][]float64, size)
	for i := range ind {
		g := make([]float64, genes)
		for j := range g {
			g[j] = rng.Float64()
		}
		ind[i] = g
	}
	return &Population{Store: NewStore(seq(size), ind)}
}

func (p *Population) Family() domain.Family { return domain.FamilyPopulation }

// Genes returns a copy of the individual's genes.
func (p *Population) Genes(i int) []float64 {
	return append([]float64(nil), p.Value(i)...)
}

// Replace installs a new gene vector for individual i.
func (p *Population) Replace(i int, genes []float64) {
	p.SetValue(i, append([]float64(nil), genes...))
}

// Fitness is the mean of the gene vector.
func Fitness(genes []float64) float64 {
	if len(genes) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range genes {
		sum += g
	}
	return sum / float64(len(genes))
}

func (p *Population) ClearRunFlags() { p.ClearFlags(domain.RunFlags) }

func (p *Population) Frame() *domain.Frame {
	snap := p.Snapshot()
	f := &domain.Frame{
		Family:   domain.FamilyPopulation,
		Version:  snap.Version,
		Elements: make([]domain.Element, len(snap.Values)),
	}
	for i, genes := range snap.Values {
		parts := make([]string, len(genes))
		for j, g := range genes {
			parts[j] = strconv.FormatFloat(g, 'f', 2, 64)
		}
		f.Elements[i] = domain.Element{
			ID:    strconv.Itoa(i),
			Value: Fitness(genes),
			Label: strings.Join(parts, " "),
			Flags: snap.Flags[i],
		}
	}
	return f
}
