package grammar

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/lizard/internal/ir"
)

// Source is a named string generator.
type Source struct {
	Name string
	Seq  iter.Seq[ir.GrammarString]
}

// Collection is the merged output of several sources.
type Collection struct {
	// Generated counts every string produced, duplicates included.
	Generated int
	// Unique holds each distinct string once, in first-occurrence order
	// across sources taken in the order given.
	Unique []ir.GrammarString
	// PerSource counts the strings produced by each source.
	PerSource map[string]int
}

// checkEvery is how many strings a source drains between context checks.
const checkEvery = 1024

// Collect drains every source on its own goroutine into a private slice,
// then merges the slices in source order and deduplicates by value. The
// result does not depend on goroutine scheduling.
func Collect(ctx context.Context, sources ...Source) (*Collection, error) {
	parts := make([][]ir.GrammarString, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			var out []ir.GrammarString
			for s := range src.Seq {
				if len(out)%checkEvery == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				out = append(out, s)
			}
			parts[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Collection{PerSource: make(map[string]int, len(sources))}
	seen := make(map[ir.GrammarString]struct{})
	for i, part := range parts {
		c.Generated += len(part)
		c.PerSource[sources[i].Name] += len(part)
		for _, s := range part {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			c.Unique = append(c.Unique, s)
		}
	}
	return c, nil
}

// UniqueRatio returns the share of generated strings that are distinct.
func (c *Collection) UniqueRatio() float64 {
	if c.Generated == 0 {
		return 0
	}
	return float64(len(c.Unique)) / float64(c.Generated)
}
