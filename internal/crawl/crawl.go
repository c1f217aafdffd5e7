// Package crawl pulls a range of tags through the dispatcher in parallel and
// post-processes the records: merging, proximity filtering and GeoJSON export.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/biketag/biketag-go/internal/backend"
	"github.com/biketag/biketag-go/internal/biketag"
	"github.com/biketag/biketag-go/internal/cache"
	"github.com/biketag/biketag-go/internal/client"
)

// Source is the part of the dispatcher the crawler needs.
type Source interface {
	GetTag(ctx context.Context, req client.Request) (biketag.Tag, error)
}

// Crawler fetches every tag number in a range. Backends share one extractor
// and therefore one memo cache, so text seen on one tag's album listing is
// matched once for the whole pass.
type Crawler struct {
	Client Source
	// Parallel bounds in-flight requests. Zero or less means 4.
	Parallel int
	// Memo, when set, is the counting wrapper of the shared memo cache; its
	// hit ratio is logged after each pass.
	Memo *cache.Counting
	// Fields projects every record. Empty uses the dispatcher default.
	Fields []string
}

// Run fetches tags from..to inclusive. Missing tags are expected gaps and are
// skipped; other per-tag errors are logged and skipped. Only cancellation
// aborts the pass.
func (c *Crawler) Run(ctx context.Context, from, to int) ([]biketag.Tag, error) {
	if from < 1 || to < from {
		return nil, fmt.Errorf("invalid tag range %d..%d", from, to)
	}
	parallel := c.Parallel
	if parallel <= 0 {
		parallel = 4
	}

	results := make([]*biketag.Tag, to-from+1)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for n := from; n <= to; n++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tag, err := c.Client.GetTag(gctx, client.ByOptions(client.Options{TagNumber: n, Fields: c.Fields}))
			switch {
			case err == nil:
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return err
			case errors.Is(err, backend.ErrTagNotFound):
				log.Debug().Int("tagnumber", n).Msg("tag not found")
				return nil
			default:
				log.Warn().Err(err).Int("tagnumber", n).Msg("tag fetch failed")
				return nil
			}
			mu.Lock()
			results[n-from] = &tag
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tags := make([]biketag.Tag, 0, len(results))
	for _, t := range results {
		if t != nil {
			tags = append(tags, *t)
		}
	}
	if c.Memo != nil {
		hits, misses := c.Memo.Stats()
		log.Info().Int("tags", len(tags)).Int("memo_hits", hits).Int("memo_misses", misses).Msg("crawl finished")
	}
	return Merge(tags), nil
}
