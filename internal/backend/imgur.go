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

// DefaultImgurAPI is the image host's v3 API root.
const DefaultImgurAPI = "https://api.imgur.com/3"

// Imgur rebuilds tags from the images of a game album. Each round is two
// images: the mystery image described "#N tag (hint: ...) by PLAYER" and the
// proof image described "#N proof found at (PLACE) by PLAYER". Titles carry
// the GPS triple and the discussion link.
type Imgur struct {
	ClientID    string
	AccessToken string // optional, preferred over ClientID
	// Album is an album hash or album URL.
	Album   string
	BaseURL string
	Fetch   *fetch.Client
	Extract *extract.Extractor
}

func (i *Imgur) Name() string { return "imgur" }

// Post is one image of an album listing. Offline exports use the same shape.
type Post struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Datetime    int64  `json:"datetime"`
}

type imgurAlbumResponse struct {
	Data    []Post `json:"data"`
	Success bool   `json:"success"`
	Status  int    `json:"status"`
}

func (i *Imgur) GetTag(ctx context.Context, opts Options) (biketag.Tag, error) {
	e := extractorOrDefault(i.Extract)
	number := opts.TagNumber
	if number == 0 {
		number = e.TagNumberFromSlug(opts.Slug, 0)
	}
	if number == 0 {
		return biketag.Tag{}, fmt.Errorf("imgur: no tag number in %q", opts.Slug)
	}
	album := e.AlbumIDFromText(i.Album, i.Album)
	if album == "" {
		return biketag.Tag{}, fmt.Errorf("imgur: no album configured")
	}

	base := strings.TrimRight(i.BaseURL, "/")
	if base == "" {
		base = DefaultImgurAPI
	}
	endpoint := base + "/album/" + url.PathEscape(album) + "/images"
	header := http.Header{}
	if i.AccessToken != "" {
		header.Set("Authorization", "Bearer "+i.AccessToken)
	} else if i.ClientID != "" {
		header.Set("Authorization", "Client-ID "+i.ClientID)
	}

	var resp imgurAlbumResponse
	if err := fetcherOrDefault(i.Fetch).GetJSON(ctx, endpoint, header, &resp); err != nil {
		if fetch.IsNotFound(err) {
			return biketag.Tag{}, fmt.Errorf("imgur album %s: %w", album, ErrTagNotFound)
		}
		return biketag.Tag{}, fmt.Errorf("imgur album %s: %w", album, err)
	}
	t, ok := mapAlbum(e, resp.Data, number)
	if !ok {
		return biketag.Tag{}, fmt.Errorf("imgur tag %d: %w", number, ErrTagNotFound)
	}
	t.AlbumID = album
	return finish(t, opts), nil
}

// mapAlbum finds the mystery and proof images of tag number n and rebuilds
// the record from their text. It reports false when neither image exists.
func mapAlbum(e *extract.Extractor, images []Post, n int) (biketag.Tag, bool) {
	var mystery, found *Post
	for idx := range images {
		img := &images[idx]
		desc := extract.PlainText(img.Description)
		switch imageRole(e.TagRolesFromText(desc, nil), n) {
		case roleFound:
			if found == nil {
				found = img
			}
		case roleMystery:
			if mystery == nil {
				mystery = img
			}
		}
	}
	if mystery == nil && found == nil {
		return biketag.Tag{}, false
	}

	t := biketag.Tag{TagNumber: n}
	if mystery != nil {
		desc := extract.PlainText(mystery.Description)
		title := extract.PlainText(mystery.Title)
		t.MysteryPlayer = e.CreditFromText(desc, "")
		t.Hint = strings.Join(e.HintFromText(desc, nil), "; ")
		t.MysteryImageURL = firstURL(e.ImageURLsFromText(mystery.Link, nil), mystery.Link)
		if u, ok := e.DiscussionURLFromText(title); ok {
			t.DiscussionURL = u
		}
		t.GPS = e.GPSLocationFromText(title, nil)
	}
	if found != nil {
		desc := extract.PlainText(found.Description)
		t.FoundPlayer = e.CreditFromText(desc, "")
		t.FoundLocation = e.FoundLocationFromText(desc, "")
		t.FoundImageURL = firstURL(e.ImageURLsFromText(found.Link, nil), found.Link)
		// the proof title is the authoritative position
		t.GPS = e.GPSLocationFromText(extract.PlainText(found.Title), t.GPS)
	}
	if h, ok := e.MysteryImageHash(t); ok {
		t.ImageHash = h
	}
	return t, true
}

type role int

const (
	roleNone role = iota
	roleMystery
	roleFound
)

// imageRole reads the role from the word right after tag number n, so a hint
// that mentions "proof" or "tag" does not change it.
func imageRole(roles []extract.TagRole, n int) role {
	for _, r := range roles {
		if r.Number != n {
			continue
		}
		switch r.Role {
		case "proof":
			return roleFound
		case "tag":
			return roleMystery
		}
	}
	return roleNone
}

func firstURL(urls []string, fallback string) string {
	if len(urls) > 0 {
		return urls[0]
	}
	return fallback
}
