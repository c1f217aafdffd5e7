// Package client selects a backend for each tag request and forwards a
// normalized set of options to it.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/biketag/biketag-go/internal/backend"
	"github.com/biketag/biketag-go/internal/biketag"
	"github.com/biketag/biketag-go/internal/extract"
	"github.com/biketag/biketag-go/internal/fetch"
)

// ErrNoBackend is returned when no configured credentials select a backend.
var ErrNoBackend = errors.New("no backend configured")

// API names a backend kind.
type API string

const (
	APIBikeTag API = "biketag"
	APIImgur   API = "imgur"
	APISanity  API = "sanity"
	APIFile    API = "file"
)

// BikeTagCredentials configure the game API.
type BikeTagCredentials struct {
	BaseURL     string `json:"baseUrl" yaml:"base_url"`
	AccessToken string `json:"accessToken" yaml:"access_token"`
}

// ImgurCredentials configure the image host.
type ImgurCredentials struct {
	ClientID    string `json:"clientId" yaml:"client_id"`
	AccessToken string `json:"accessToken" yaml:"access_token"`
	Album       string `json:"album" yaml:"album"`
}

// SanityCredentials configure the CMS.
type SanityCredentials struct {
	ProjectID string `json:"projectId" yaml:"project_id"`
	Dataset   string `json:"dataset" yaml:"dataset"`
	Token     string `json:"token" yaml:"token"`
}

// Credentials holds one optional entry per backend. A nil entry means the
// backend is not configured. File is an offline export path.
type Credentials struct {
	BikeTag *BikeTagCredentials
	Imgur   *ImgurCredentials
	Sanity  *SanityCredentials
	File    string
}

// Client dispatches tag requests to the most available backend: the game API,
// then the image host, then the CMS. The choice is made once and reused.
type Client struct {
	// Game is used to build slugs for requests that only carry a number.
	Game string

	backends map[API]backend.Backend
	creds    Credentials

	mu            sync.Mutex
	mostAvailable API
}

// New builds one adapter per configured backend, all sharing the fetch client
// and extractor. Either may be nil.
func New(game string, creds Credentials, fc *fetch.Client, e *extract.Extractor) *Client {
	c := &Client{Game: game, creds: creds, backends: map[API]backend.Backend{}}
	if creds.BikeTag != nil {
		c.backends[APIBikeTag] = &backend.BikeTagAPI{BaseURL: creds.BikeTag.BaseURL, AccessToken: creds.BikeTag.AccessToken, Fetch: fc, Extract: e}
	}
	if creds.Imgur != nil {
		c.backends[APIImgur] = &backend.Imgur{ClientID: creds.Imgur.ClientID, AccessToken: creds.Imgur.AccessToken, Album: creds.Imgur.Album, Fetch: fc, Extract: e}
	}
	if creds.Sanity != nil {
		c.backends[APISanity] = &backend.Sanity{ProjectID: creds.Sanity.ProjectID, Dataset: creds.Sanity.Dataset, Token: creds.Sanity.Token, Fetch: fc, Extract: e}
	}
	if creds.File != "" {
		c.backends[APIFile] = &backend.File{Path: creds.File, Extract: e}
	}
	return c
}

// WithBackend registers or replaces the adapter for api.
func (c *Client) WithBackend(api API, b backend.Backend) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backends == nil {
		c.backends = map[API]backend.Backend{}
	}
	c.backends[api] = b
	c.mostAvailable = ""
	return c
}

// Configuration reports the credentials each backend was configured with.
func (c *Client) Configuration() Credentials {
	return c.creds
}

// Backend returns the adapter for api, if configured.
func (c *Client) Backend(api API) (backend.Backend, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.backends[api]
	return b, ok
}

var priority = []API{APIBikeTag, APIImgur, APISanity, APIFile}

// MostAvailable returns the highest-priority configured backend, or "" when
// none is configured.
func (c *Client) MostAvailable() API {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mostAvailable != "" {
		return c.mostAvailable
	}
	for _, api := range priority {
		if _, ok := c.backends[api]; ok {
			c.mostAvailable = api
			return api
		}
	}
	return ""
}

// Resolve picks the backend for req and normalizes its options.
func (c *Client) Resolve(req Request) (backend.Backend, backend.Options, error) {
	opts := req.Normalize(c.Game)
	api := c.MostAvailable()
	if force := req.forced(); force != "" {
		api = force
	}
	if api == "" {
		return nil, opts, ErrNoBackend
	}
	b, ok := c.Backend(api)
	if !ok {
		return nil, opts, fmt.Errorf("%s: %w", api, ErrNoBackend)
	}
	return b, opts, nil
}

// GetTag fetches one tag record from the selected backend.
func (c *Client) GetTag(ctx context.Context, req Request) (biketag.Tag, error) {
	b, opts, err := c.Resolve(req)
	if err != nil {
		return biketag.Tag{}, err
	}
	log.Debug().Str("backend", b.Name()).Str("slug", opts.Slug).Msg("get tag")
	return b.GetTag(ctx, opts)
}

// ParseAPI maps a configured backend name to an API, accepting any case.
func ParseAPI(s string) (API, error) {
	switch API(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case APIBikeTag:
		return APIBikeTag, nil
	case APIImgur:
		return APIImgur, nil
	case APISanity:
		return APISanity, nil
	case APIFile:
		return APIFile, nil
	}
	return "", fmt.Errorf("unknown backend %q", s)
}
