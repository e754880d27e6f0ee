package ledger

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// DefaultReferencePrefix starts every booking reference unless configured
// otherwise.
const DefaultReferencePrefix = "HBK"

// ReferenceGenerator produces codes of the form PREFIX-YYYYMMDD-XXXX,
// e.g. HBK-20260112-A7B3, where XXXX is four upper-case hex digits drawn
// uniformly from [0, 0xFFFF).  It is safe for concurrent use.
//
// The generator does not guarantee uniqueness; the store rejects duplicate
// references and the ledger asks for a new one.
type ReferenceGenerator struct {
	prefix string
	loc    *time.Location

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewReferenceGenerator returns a generator stamping dates in loc.  A nil
// rnd uses a randomly seeded PCG source.
func NewReferenceGenerator(prefix string, loc *time.Location, rnd *rand.Rand) *ReferenceGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultReferencePrefix
	}
	if loc == nil {
		loc = time.UTC
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ReferenceGenerator{prefix: prefix, loc: loc, rnd: rnd}
}

// Next returns a reference stamped with the calendar date of now.
func (g *ReferenceGenerator) Next(now time.Time) string {
	g.mu.Lock()
	n := g.rnd.IntN(0xFFFF)
	g.mu.Unlock()
	return fmt.Sprintf("%s-%s-%04X", g.prefix, now.In(g.loc).Format("20060102"), n)
}
