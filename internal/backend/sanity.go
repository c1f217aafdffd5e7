package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/biketag/biketag-go/internal/biketag"
	"github.com/biketag/biketag-go/internal/extract"
	"github.com/biketag/biketag-go/internal/fetch"
)

// DefaultSanityAPIVersion is the dated API version queried.
const DefaultSanityAPIVersion = "v2021-06-07"

// Sanity reads tags from a CMS dataset with a GROQ query.
type Sanity struct {
	ProjectID  string
	Dataset    string
	Token      string // optional, needed for private datasets
	APIVersion string
	// BaseURL overrides https://<project>.api.sanity.io.
	BaseURL string
	Fetch   *fetch.Client
	Extract *extract.Extractor
}

func (s *Sanity) Name() string { return "sanity" }

// sanityTag is a tag document. Image fields hold resolved asset URLs.
type sanityTag struct {
	ID            string `json:"_id"`
	TagNumber     int    `json:"tagnumber"`
	Slug          string `json:"slug"`
	Game          string `json:"game"`
	Name          string `json:"name"`
	MysteryPlayer string `json:"mysteryPlayer"`
	FoundPlayer   string `json:"foundPlayer"`
	FoundLocation string `json:"foundLocation"`
	Hint          string `json:"hint"`
	GPS           *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
		Alt float64 `json:"alt"`
	} `json:"gps"`
	MysteryImage  string `json:"mysteryImage"`
	FoundImage    string `json:"foundImage"`
	DiscussionURL string `json:"discussionUrl"`
}

type sanityQueryResponse struct {
	Ms     int        `json:"ms"`
	Query  string     `json:"query"`
	Result *sanityTag `json:"result"`
}

// sanityProjection maps Tag field names to GROQ projections.
var sanityProjection = map[string]string{
	biketag.FieldTagNumber:       "tagnumber",
	biketag.FieldSlug:            `"slug": slug.current`,
	biketag.FieldGame:            `"game": game->name`,
	biketag.FieldName:            "name",
	biketag.FieldMysteryPlayer:   `"mysteryPlayer": mysteryPlayer->name`,
	biketag.FieldFoundPlayer:     `"foundPlayer": foundPlayer->name`,
	biketag.FieldFoundLocation:   "foundLocation",
	biketag.FieldHint:            "hint",
	biketag.FieldGPS:             "gps",
	biketag.FieldMysteryImageURL: `"mysteryImage": mysteryImage.asset->url`,
	biketag.FieldFoundImageURL:   `"foundImage": foundImage.asset->url`,
	biketag.FieldDiscussionURL:   "discussionUrl",
}

// Query builds the GROQ query for one tag slug, projected to fields.
func (s *Sanity) Query(fields []string) string {
	if len(fields) == 0 {
		fields = biketag.DefaultFields
	}
	parts := []string{"_id"}
	seen := map[string]bool{}
	for _, f := range fields {
		p, ok := sanityProjection[f]
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		parts = append(parts, p)
	}
	// image hashes are derived from the image URLs
	for _, f := range fields {
		img := sanityProjection[biketag.FieldMysteryImageURL]
		if f == biketag.FieldImageHash && !seen[img] {
			seen[img] = true
			parts = append(parts, img)
		}
	}
	return `*[_type == "tag" && slug.current == $slug][0]{` + strings.Join(parts, ", ") + "}"
}

func (s *Sanity) GetTag(ctx context.Context, opts Options) (biketag.Tag, error) {
	if s.ProjectID == "" && s.BaseURL == "" {
		return biketag.Tag{}, fmt.Errorf("sanity: no project configured")
	}
	if opts.Slug == "" {
		return biketag.Tag{}, fmt.Errorf("sanity: empty slug")
	}
	dataset := s.Dataset
	if dataset == "" {
		dataset = "production"
	}
	version := s.APIVersion
	if version == "" {
		version = DefaultSanityAPIVersion
	}
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		base = "https://" + s.ProjectID + ".api.sanity.io"
	}

	q := url.Values{}
	q.Set("query", s.Query(opts.Fields))
	q.Set("$slug", strconv.Quote(opts.Slug))
	endpoint := base + "/" + version + "/data/query/" + url.PathEscape(dataset) + "?" + q.Encode()

	header := http.Header{}
	if s.Token != "" {
		header.Set("Authorization", "Bearer "+s.Token)
	}
	var resp sanityQueryResponse
	if err := fetcherOrDefault(s.Fetch).GetJSON(ctx, endpoint, header, &resp); err != nil {
		return biketag.Tag{}, fmt.Errorf("sanity %s: %w", opts.Slug, err)
	}
	if resp.Result == nil {
		return biketag.Tag{}, fmt.Errorf("sanity %s: %w", opts.Slug, ErrTagNotFound)
	}
	return finish(mapSanityTag(extractorOrDefault(s.Extract), *resp.Result), opts), nil
}

func mapSanityTag(e *extract.Extractor, r sanityTag) biketag.Tag {
	t := biketag.Tag{
		TagNumber:       r.TagNumber,
		Slug:            r.Slug,
		Game:            r.Game,
		Name:            r.Name,
		MysteryPlayer:   r.MysteryPlayer,
		FoundPlayer:     r.FoundPlayer,
		FoundLocation:   r.FoundLocation,
		Hint:            r.Hint,
		MysteryImageURL: r.MysteryImage,
		FoundImageURL:   r.FoundImage,
		DiscussionURL:   r.DiscussionURL,
	}
	if r.GPS != nil {
		t.GPS = &biketag.GeoPoint{Lat: r.GPS.Lat, Long: r.GPS.Lng, Alt: r.GPS.Alt}
	}
	if t.TagNumber == 0 {
		t.TagNumber = e.TagNumberFromSlug(t.Slug, 0)
	}
	if h, ok := e.CMSImageHashFromText(t.MysteryImageURL); ok {
		t.ImageHash = h
	}
	return t
}
