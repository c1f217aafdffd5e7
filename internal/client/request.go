package client

import (
	"github.com/biketag/biketag-go/internal/backend"
	"github.com/biketag/biketag-go/internal/biketag"
)

// Request identifies a tag. Build one with ByNumber, BySlug or ByOptions.
type Request interface {
	// Normalize resolves the request into backend options with the slug and
	// field projection filled in. game is used when the request has none.
	Normalize(game string) backend.Options
	forced() API
}

// Options is the full request form.
type Options struct {
	TagNumber int
	Slug      string
	Game      string
	Fields    []string
	// ForceAPI overrides backend selection for this request.
	ForceAPI API
}

type byNumber int

type bySlug string

type byOptions Options

// ByNumber requests a tag by its number in the client's game.
func ByNumber(n int) Request { return byNumber(n) }

// BySlug requests a tag by its stored slug.
func BySlug(s string) Request { return bySlug(s) }

// ByOptions requests a tag with explicit options.
func ByOptions(o Options) Request { return byOptions(o) }

func (n byNumber) Normalize(game string) backend.Options {
	return byOptions{TagNumber: int(n)}.Normalize(game)
}

func (byNumber) forced() API { return "" }

func (s bySlug) Normalize(game string) backend.Options {
	return byOptions{Slug: string(s)}.Normalize(game)
}

func (bySlug) forced() API { return "" }

func (o byOptions) Normalize(game string) backend.Options {
	out := backend.Options{
		Slug:      o.Slug,
		TagNumber: o.TagNumber,
		Game:      o.Game,
		Fields:    o.Fields,
	}
	if out.Game == "" {
		out.Game = game
	}
	if out.Slug == "" {
		out.Slug = biketag.Slug(out.TagNumber, out.Game)
	}
	if len(out.Fields) == 0 {
		out.Fields = append([]string(nil), biketag.DefaultFields...)
	}
	return out
}

func (o byOptions) forced() API { return o.ForceAPI }
