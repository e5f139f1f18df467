// Package names generates agent display names from an adjective+noun
// theme, the mechanism the presence registry needs to propose a name on
// join. The actual word lists are deliberately small defaults: curated
// name-generation word lists are an external collaborator's concern
// (configurable via nameWords); this package only owns the allocation
// mechanism — picking a candidate and retrying deterministically on
// collision — the way a Culture-ship name generator builds names from
// prefix/core/suffix word lists with math/rand.
package names

import (
	"fmt"
	"math/rand"
	"time"
)

var defaultAdjectives = []string{
	"amber", "brisk", "calm", "daring", "eager", "fleet", "gentle", "honest",
	"idle", "jolly", "keen", "lucid", "mellow", "nimble", "obliging", "patient",
	"quiet", "ready", "steady", "tidy", "upbeat", "vivid", "wry", "zesty",
}

var defaultNouns = []string{
	"badger", "cobra", "dune", "egret", "falcon", "gecko", "heron", "ibis",
	"jackal", "kite", "lynx", "marten", "newt", "otter", "puffin", "quail",
	"raven", "stoat", "tapir", "urchin", "vole", "wombat", "yak", "zebu",
}

// Generator proposes candidate names from a themed word list.
type Generator struct {
	Adjectives []string
	Nouns      []string
	rng        *rand.Rand
}

// NewGenerator returns a Generator using the given word lists, falling
// back to the built-in defaults when either list is empty.
func NewGenerator(adjectives, nouns []string) *Generator {
	if len(adjectives) == 0 {
		adjectives = defaultAdjectives
	}
	if len(nouns) == 0 {
		nouns = defaultNouns
	}
	return &Generator{
		Adjectives: adjectives,
		Nouns:      nouns,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Propose returns a candidate name "<adjective>-<noun>", or
// "<adjective>-<noun>-<attempt>" on retries so repeated collisions still
// converge on a distinct name instead of looping on the same pair.
func (g *Generator) Propose(attempt int) string {
	adj := g.Adjectives[g.rng.Intn(len(g.Adjectives))]
	noun := g.Nouns[g.rng.Intn(len(g.Nouns))]
	if attempt == 0 {
		return fmt.Sprintf("%s-%s", adj, noun)
	}
	return fmt.Sprintf("%s-%s-%d", adj, noun, attempt)
}
