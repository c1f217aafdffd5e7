package app

import (
	"strings"
	"time"

	"github.com/biketag/biketag-go/internal/biketag"
	"github.com/biketag/biketag-go/internal/client"
)

// Cache kinds accepted by Config.CacheKind.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheDisk   = "disk"
	CacheRedis  = "redis"
)

// Defaults applied by ApplyDefaults to fields left unset by flags, env and file.
const (
	defaultCacheKind = CacheMemory
	defaultCacheDir  = ".biketag-cache"
	defaultParallel  = 4
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "biketag-go (+https://github.com/biketag/biketag-go)"
)

// Config holds runtime configuration for the application.
type Config struct {
	// What to do. Exactly one of TagNumber/Slug, From..To or ParsePath.
	TagNumber int
	Slug      string
	From      int
	To        int
	ParsePath string
	Fields    []string

	Game     string
	ForceAPI string

	// Backends
	BikeTagURL    string
	BikeTagToken  string
	ImgurClientID string
	ImgurToken    string
	ImgurAlbum    string
	SanityProject string
	SanityDataset string
	SanityToken   string
	PostsFile     string

	// Output. An empty OutputPath writes JSON to stdout.
	OutputPath  string
	GeoJSONPath string
	NearLat     float64
	NearLong    float64
	NearMeters  float64

	// Transport / crawl
	Parallel           int
	RequestTimeout     time.Duration
	UserAgent          string
	InsecureSkipVerify bool

	// Memo and HTTP caches
	CacheKind        string
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	CacheMaxBytes    int64
	CacheMaxCount    int
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisTTL         time.Duration

	Verbose bool
}

// ApplyDefaults fills every field still zero after flags, env and file.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.CacheKind == "" {
		cfg.CacheKind = defaultCacheKind
	}
	cfg.CacheKind = strings.ToLower(strings.TrimSpace(cfg.CacheKind))
	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultCacheDir
	}
	if cfg.Parallel == 0 {
		cfg.Parallel = defaultParallel
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent + " " + BuildVersion
	}
}

// Credentials builds the dispatcher credentials for every backend with enough
// settings to be usable.
func (c Config) Credentials() client.Credentials {
	var creds client.Credentials
	if c.BikeTagURL != "" || c.BikeTagToken != "" {
		creds.BikeTag = &client.BikeTagCredentials{BaseURL: c.BikeTagURL, AccessToken: c.BikeTagToken}
	}
	if c.ImgurAlbum != "" && (c.ImgurClientID != "" || c.ImgurToken != "") {
		creds.Imgur = &client.ImgurCredentials{ClientID: c.ImgurClientID, AccessToken: c.ImgurToken, Album: c.ImgurAlbum}
	}
	if c.SanityProject != "" {
		creds.Sanity = &client.SanityCredentials{ProjectID: c.SanityProject, Dataset: c.SanityDataset, Token: c.SanityToken}
	}
	creds.File = c.PostsFile
	return creds
}

// NearCenter returns the proximity filter centre, and false when the filter
// is off.
func (c Config) NearCenter() (biketag.GeoPoint, bool) {
	if c.NearMeters <= 0 {
		return biketag.GeoPoint{}, false
	}
	return biketag.GeoPoint{Lat: c.NearLat, Long: c.NearLong}, true
}

// SplitList parses a comma separated flag or env value, dropping blanks.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
