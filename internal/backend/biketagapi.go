package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/biketag/biketag-go/internal/biketag"
	"github.com/biketag/biketag-go/internal/extract"
	"github.com/biketag/biketag-go/internal/fetch"
)

// DefaultBikeTagAPI is the hosted game API.
const DefaultBikeTagAPI = "https://api.biketag.org"

// BikeTagAPI reads tags from the game's own HTTP API.
type BikeTagAPI struct {
	BaseURL     string
	AccessToken string // optional
	Fetch       *fetch.Client
	Extract     *extract.Extractor
}

func (b *BikeTagAPI) Name() string { return "biketag" }

// apiTag is the record shape served by the game API. GPS arrives either as an
// object or embedded in the title text.
type apiTag struct {
	TagNumber       int               `json:"tagnumber"`
	Slug            string            `json:"slug"`
	Game            string            `json:"game"`
	Name            string            `json:"name"`
	MysteryPlayer   string            `json:"mysteryPlayer"`
	FoundPlayer     string            `json:"foundPlayer"`
	FoundLocation   string            `json:"foundLocation"`
	Hint            string            `json:"hint"`
	GPS             *biketag.GeoPoint `json:"gps"`
	MysteryImageURL string            `json:"mysteryImageUrl"`
	FoundImageURL   string            `json:"foundImageUrl"`
	DiscussionURL   string            `json:"discussionUrl"`
	ImageHash       string            `json:"imageHash"`
	AlbumID         string            `json:"albumId"`
	Title           string            `json:"title"`
}

type apiResponse struct {
	Success bool    `json:"success"`
	Status  int     `json:"status"`
	Data    *apiTag `json:"data"`
}

func (b *BikeTagAPI) GetTag(ctx context.Context, opts Options) (biketag.Tag, error) {
	if opts.Slug == "" {
		return biketag.Tag{}, fmt.Errorf("biketag: empty slug")
	}
	base := strings.TrimRight(b.BaseURL, "/")
	if base == "" {
		base = DefaultBikeTagAPI
	}
	endpoint := base + "/tags/" + url.PathEscape(opts.Slug)

	header := http.Header{}
	if b.AccessToken != "" {
		header.Set("Authorization", "Bearer "+b.AccessToken)
	}
	var resp apiResponse
	if err := fetcherOrDefault(b.Fetch).GetJSON(ctx, endpoint, header, &resp); err != nil {
		if fetch.IsNotFound(err) {
			return biketag.Tag{}, fmt.Errorf("biketag %s: %w", opts.Slug, ErrTagNotFound)
		}
		return biketag.Tag{}, fmt.Errorf("biketag %s: %w", opts.Slug, err)
	}
	if resp.Data == nil {
		return biketag.Tag{}, fmt.Errorf("biketag %s: %w", opts.Slug, ErrTagNotFound)
	}
	return finish(mapAPITag(extractorOrDefault(b.Extract), *resp.Data), opts), nil
}

// mapAPITag copies the structured fields and recovers the ones older records
// only carry in text.
func mapAPITag(e *extract.Extractor, r apiTag) biketag.Tag {
	t := biketag.Tag{
		TagNumber:       r.TagNumber,
		Slug:            r.Slug,
		Game:            r.Game,
		Name:            r.Name,
		MysteryPlayer:   r.MysteryPlayer,
		FoundPlayer:     r.FoundPlayer,
		FoundLocation:   r.FoundLocation,
		Hint:            r.Hint,
		GPS:             r.GPS,
		MysteryImageURL: r.MysteryImageURL,
		FoundImageURL:   r.FoundImageURL,
		DiscussionURL:   r.DiscussionURL,
		ImageHash:       r.ImageHash,
		AlbumID:         r.AlbumID,
	}
	if t.TagNumber == 0 {
		t.TagNumber = e.TagNumberFromSlug(t.Slug, 0)
	}
	if t.GPS == nil || t.GPS.IsZero() {
		t.GPS = e.GPSLocationFromText(r.Title, t.GPS)
	}
	if t.DiscussionURL == "" {
		if u, ok := e.DiscussionURLFromText(r.Title); ok {
			t.DiscussionURL = u
		}
	}
	if t.ImageHash == "" {
		if h, ok := e.MysteryImageHash(t); ok {
			t.ImageHash = h
		}
	}
	return t
}
