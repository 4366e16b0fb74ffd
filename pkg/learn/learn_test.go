package learn_test

import (
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/learn"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CoversCatalog(t *testing.T) {
	deck := learn.Default()
	for _, e := range registry.Default().List() {
		_, ok := deck.Topic(e.Kind)
		assert.True(t, ok, "no card for %s", e.Kind)
	}
}

func TestDeck_Card(t *testing.T) {
	card, err := learn.Default().Card(registry.Default(), domain.KindBinarySearch)
	require.NoError(t, err)

	assert.Equal(t, "searching", card.Topic.ID)
	assert.Equal(t, domain.KindBinarySearch, card.Topic.Steps[card.Focus].Kind)

	md := card.Markdown()
	assert.Contains(t, md, "# Binary Search")
	assert.Contains(t, md, "O(log n)")
	assert.Contains(t, md, "**Requires:** target")
	assert.Contains(t, md, "- **Linear Search**")
	assert.NotContains(t, md, "- **Binary Search**")
	assert.Contains(t, md, "> Tip:")
}

func TestDeck_CardUnknown(t *testing.T) {
	_, err := learn.Default().Card(registry.Default(), "bogo-sort")
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)

	deck, err := learn.Parse([]byte("topics: []"))
	require.NoError(t, err)
	_, err = deck.Card(registry.Default(), domain.KindBubbleSort)
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)
}

func TestParse_DuplicateKind(t *testing.T) {
	_, err := learn.Parse([]byte(`
topics:
  - id: a
    steps: [{kind: dfs, title: DFS}]
  - id: b
    steps: [{kind: dfs, title: DFS again}]
`))
	assert.ErrorContains(t, err, "dfs appears in a and b")
}
