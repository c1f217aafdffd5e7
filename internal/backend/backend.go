// Package backend adapts the data sources a tag can be served from (the game
// API, the image host and the CMS) to one GetTag call. Each adapter models its
// raw response as its own type and maps it into biketag.Tag with a pure
// function, using the extractors where the source only has free text.
package backend

import (
	"context"
	"errors"

	"github.com/biketag/biketag-go/internal/biketag"
	"github.com/biketag/biketag-go/internal/extract"
	"github.com/biketag/biketag-go/internal/fetch"
)

// ErrTagNotFound is returned when a backend has no record for the requested tag.
var ErrTagNotFound = errors.New("tag not found")

// Options identifies the tag to fetch and the fields to return.
type Options struct {
	Slug      string
	TagNumber int
	Game      string
	// Fields lists the Tag JSON keys to keep. Empty keeps every field.
	Fields []string
}

// Backend is a source of tag records.
type Backend interface {
	Name() string
	GetTag(ctx context.Context, opts Options) (biketag.Tag, error)
}

// finish fills identifying fields the source did not carry and applies the
// field projection.
func finish(t biketag.Tag, opts Options) biketag.Tag {
	if t.TagNumber == 0 {
		t.TagNumber = opts.TagNumber
	}
	if t.Game == "" {
		t.Game = opts.Game
	}
	if t.Slug == "" {
		if opts.Slug != "" {
			t.Slug = opts.Slug
		} else if t.TagNumber > 0 {
			t.Slug = biketag.Slug(t.TagNumber, t.Game)
		}
	}
	return biketag.Project(t, opts.Fields)
}

func fetcherOrDefault(c *fetch.Client) *fetch.Client {
	if c != nil {
		return c
	}
	return &fetch.Client{MaxAttempts: 2}
}

func extractorOrDefault(e *extract.Extractor) *extract.Extractor {
	if e != nil {
		return e
	}
	return extract.New(nil, nil)
}
