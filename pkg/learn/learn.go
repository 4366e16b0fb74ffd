// Package learn provides the learning cards shown in learning mode and by the
// explain surfaces.
package learn

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"gopkg.in/yaml.v3"
)

//go:embed cards.yaml
var cardsYAML []byte

// Step is one page of a card.
type Step struct {
	Kind        domain.Kind `yaml:"kind,omitempty" json:"kind,omitempty"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	Code        string      `yaml:"code,omitempty" json:"code,omitempty"`
}

// Topic groups the steps of one area of the catalog.
type Topic struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Intro string `yaml:"intro" json:"intro"`
	Tip   string `yaml:"tip" json:"tip"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Card is the learning material for a single algorithm.
type Card struct {
	Kind  domain.Kind `json:"kind"`
	Topic Topic       `json:"topic"`
	// Focus indexes the step in Topic.Steps that introduces Kind.
	Focus int            `json:"focus"`
	Entry registry.Entry `json:"entry"`
}

// Deck indexes the embedded topics by algorithm.
type Deck struct {
	Topics []Topic
	byKind map[domain.Kind]int
}

// Parse decodes a deck from YAML.
func Parse(data []byte) (*Deck, error) {
	var doc struct {
		Topics []Topic `yaml:"topics"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse learning cards: %w", err)
	}
	d := &Deck{Topics: doc.Topics, byKind: make(map[domain.Kind]int)}
	for ti, t := range doc.Topics {
		for _, s := range t.Steps {
			if s.Kind == "" {
				continue
			}
			if prev, dup := d.byKind[s.Kind]; dup {
				return nil, fmt.Errorf("parse learning cards: %s appears in %s and %s", s.Kind, doc.Topics[prev].ID, t.ID)
			}
			d.byKind[s.Kind] = ti
		}
	}
	return d, nil
}

var (
	defaultOnce sync.Once
	defaultDeck *Deck
)

// Default returns the embedded deck.
func Default() *Deck {
	defaultOnce.Do(func() {
		d, err := Parse(cardsYAML)
		if err != nil {
			panic(err)
		}
		defaultDeck = d
	})
	return defaultDeck
}

// Topic returns the topic covering kind.
func (d *Deck) Topic(kind domain.Kind) (Topic, bool) {
	i, ok := d.byKind[kind]
	if !ok {
		return Topic{}, false
	}
	return d.Topics[i], true
}

// Card assembles the card for kind from its topic and catalog entry.
func (d *Deck) Card(reg *registry.Registry, kind domain.Kind) (Card, error) {
	entry, err := reg.Lookup(kind)
	if err != nil {
		return Card{}, err
	}
	topic, ok := d.Topic(kind)
	if !ok {
		return Card{}, fmt.Errorf("%w: no learning card for %s", domain.ErrUnknownAlgorithm, kind)
	}
	c := Card{Kind: kind, Topic: topic, Entry: entry}
	for i, s := range topic.Steps {
		if s.Kind == kind {
			c.Focus = i
		}
	}
	return c, nil
}

// Markdown renders the card with the focused algorithm first.
func (c Card) Markdown() string {
	var b strings.Builder
	focus := c.Topic.Steps[c.Focus]

	fmt.Fprintf(&b, "# %s\n\n", focus.Title)
	if c.Entry.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", c.Entry.Summary)
	}
	fmt.Fprintf(&b, "%s\n\n", focus.Description)
	if focus.Code != "" {
		fmt.Fprintf(&b, "```go\n%s```\n\n", focus.Code)
	}

	b.WriteString("| Time | Space | Family |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s |\n\n", c.Entry.Time, c.Entry.Space, c.Entry.Family)
	if len(c.Entry.Requires) > 0 {
		fmt.Fprintf(&b, "**Requires:** %s\n\n", strings.Join(c.Entry.Requires, ", "))
	}

	fmt.Fprintf(&b, "## %s\n\n%s\n\n", c.Topic.Title, c.Topic.Intro)
	for i, s := range c.Topic.Steps {
		if i == c.Focus {
			continue
		}
		fmt.Fprintf(&b, "- **%s**: %s\n", s.Title, s.Description)
	}
	if c.Topic.Tip != "" {
		fmt.Fprintf(&b, "\n> Tip: %s\n", c.Topic.Tip)
	}
	return b.String()
}
