package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/biketag/biketag-go/internal/biketag"
	"github.com/biketag/biketag-go/internal/cache"
	"github.com/biketag/biketag-go/internal/client"
	"github.com/biketag/biketag-go/internal/compose"
	"github.com/biketag/biketag-go/internal/crawl"
	"github.com/biketag/biketag-go/internal/extract"
	"github.com/biketag/biketag-go/internal/fetch"
	"github.com/biketag/biketag-go/internal/pattern"
)

// ErrNoTags is returned when a crawl ends with zero tag records.
var ErrNoTags = errors.New("no tags found")

type App struct {
	cfg       Config
	memo      *cache.Counting
	redis     *cache.RedisCache
	httpCache *cache.HTTPCache
	extract   *extract.Extractor
	client    *client.Client
	out       io.Writer
}

// New wires caches, transport, extractor and dispatcher from cfg.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, out: os.Stdout}

	httpDir := filepath.Join(cfg.CacheDir, "http")
	memoDir := filepath.Join(cfg.CacheDir, "memo")
	if cfg.CacheKind != CacheNone {
		maintainCacheDirs(cfg, httpDir, memoDir)
		a.httpCache = &cache.HTTPCache{Dir: httpDir, Scope: credentialScope(cfg), StrictPerms: cfg.CacheStrictPerms}
	}

	var inner cache.Cache
	switch cfg.CacheKind {
	case CacheNone:
		inner = cache.Noop{}
	case CacheDisk:
		inner = &cache.DiskCache{Dir: memoDir, StrictPerms: cfg.CacheStrictPerms}
	case CacheRedis:
		rc, err := cache.NewRedisCache(cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "biketag:memo:",
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("memo cache: %w", err)
		}
		a.redis = rc
		inner = rc
	default:
		inner = cache.NewMemory()
	}
	a.memo = &cache.Counting{Inner: inner}
	a.extract = extract.New(pattern.Default(), a.memo)

	fc := &fetch.Client{
		HTTPClient:        newHighThroughputHTTPClient(cfg.RequestTimeout, cfg.InsecureSkipVerify),
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       3,
		PerRequestTimeout: cfg.RequestTimeout,
		Cache:             a.httpCache,
		RedirectMaxHops:   5,
		MaxConcurrent:     cfg.Parallel,
		BypassCache:       cfg.CacheClear,
	}
	a.client = client.New(cfg.Game, cfg.Credentials(), fc, a.extract)

	if cfg.ParsePath == "" && a.client.MostAvailable() == "" && cfg.ForceAPI == "" {
		return nil, client.ErrNoBackend
	}
	log.Debug().Str("backend", string(a.client.MostAvailable())).Str("cache", cfg.CacheKind).Msg("app ready")
	return a, nil
}

// maintainCacheDirs applies clear, age and size limits before a run. Errors are
// logged and ignored so a damaged cache never blocks startup.
func maintainCacheDirs(cfg Config, httpDir, memoDir string) {
	if cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
		}
	}
	if cfg.CacheMaxAge > 0 {
		if n, err := cache.PurgeHTTPCacheByAge(httpDir, cfg.CacheMaxAge); err == nil && n > 0 {
			log.Debug().Int("removed", n).Msg("purged aged http cache entries")
		}
		if n, err := cache.PurgeDiskCacheByAge(memoDir, cfg.CacheMaxAge); err == nil && n > 0 {
			log.Debug().Int("removed", n).Msg("purged aged memo entries")
		}
	}
	if cfg.CacheMaxBytes > 0 || cfg.CacheMaxCount > 0 {
		_, _ = cache.EnforceHTTPCacheLimits(httpDir, cfg.CacheMaxBytes, cfg.CacheMaxCount)
		_, _ = cache.EnforceDiskCacheLimits(memoDir, cfg.CacheMaxBytes, cfg.CacheMaxCount)
	}
}

// credentialScope keeps cached responses fetched with different credentials apart.
func credentialScope(cfg Config) string {
	return cache.Digest(strings.Join([]string{cfg.BikeTagToken, cfg.ImgurClientID, cfg.ImgurToken, cfg.SanityToken}, "\n"))
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// SetOutput redirects stdout output, used by tests.
func (a *App) SetOutput(w io.Writer) { a.out = w }

// Client exposes the dispatcher.
func (a *App) Client() *client.Client { return a.client }

func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		hits, misses := a.memo.Stats()
		log.Debug().Dur("took", time.Since(start)).Int("memo_hits", hits).Int("memo_misses", misses).Msg("run finished")
	}()

	switch {
	case a.cfg.ParsePath != "":
		return a.runParse()
	case a.cfg.From > 0:
		return a.runCrawl(ctx)
	default:
		return a.runSingle(ctx)
	}
}

func (a *App) request(n int, slug string) client.Request {
	api, _ := client.ParseAPI(a.cfg.ForceAPI)
	return client.ByOptions(client.Options{
		TagNumber: n,
		Slug:      slug,
		Game:      a.cfg.Game,
		Fields:    a.cfg.Fields,
		ForceAPI:  api,
	})
}

func (a *App) runSingle(ctx context.Context) error {
	tag, err := a.client.GetTag(ctx, a.request(a.cfg.TagNumber, a.cfg.Slug))
	if err != nil {
		return err
	}
	if err := a.writeJSON(a.cfg.OutputPath, tag); err != nil {
		return err
	}
	return a.writeGeoJSON([]biketag.Tag{tag})
}

func (a *App) runCrawl(ctx context.Context) error {
	api, _ := client.ParseAPI(a.cfg.ForceAPI)
	cr := &crawl.Crawler{Client: forcedSource{a.client, api, a.cfg.Game}, Parallel: a.cfg.Parallel, Memo: a.memo, Fields: a.cfg.Fields}
	tags, err := cr.Run(ctx, a.cfg.From, a.cfg.To)
	if err != nil {
		return err
	}
	if center, ok := a.cfg.NearCenter(); ok {
		tags = crawl.Near(tags, center, a.cfg.NearMeters)
	}
	if len(tags) == 0 {
		return ErrNoTags
	}
	if b, ok := crawl.Bound(tags); ok {
		log.Info().Int("tags", len(tags)).Interface("bound", b).Msg("crawl bound")
	}
	if err := a.writeJSON(a.cfg.OutputPath, tags); err != nil {
		return err
	}
	return a.writeGeoJSON(tags)
}

// forcedSource applies the configured backend override and game to every
// crawl request.
type forcedSource struct {
	c    *client.Client
	api  client.API
	game string
}

func (f forcedSource) GetTag(ctx context.Context, req client.Request) (biketag.Tag, error) {
	opts := req.Normalize(f.game)
	return f.c.GetTag(ctx, client.ByOptions(client.Options{
		TagNumber: opts.TagNumber,
		Slug:      opts.Slug,
		Game:      opts.Game,
		Fields:    opts.Fields,
		ForceAPI:  f.api,
	}))
}

// ParseReport is every field the extractors recover from one text, plus the
// record rebuilt from them rendered back through the composers.
type ParseReport struct {
	TagNumbers    []int             `json:"tagNumbers"`
	Credit        string            `json:"credit,omitempty"`
	FoundLocation string            `json:"foundLocation,omitempty"`
	Hints         []string          `json:"hints"`
	GPS           *biketag.GeoPoint `json:"gps,omitempty"`
	AlbumID       string            `json:"albumId,omitempty"`
	MentionURLs   []string          `json:"mentionUrls"`
	ImageURLs     []string          `json:"imageUrls"`
	DiscussionURL string            `json:"discussionUrl,omitempty"`
	ImageHash     string            `json:"imageHash,omitempty"`
	CMSImageHash  string            `json:"cmsImageHash,omitempty"`

	Tag                biketag.Tag `json:"tag"`
	MysteryTitle       string      `json:"mysteryTitle"`
	MysteryDescription string      `json:"mysteryDescription"`
	FoundTitle         string      `json:"foundTitle"`
	FoundDescription   string      `json:"foundDescription"`
}

// Parse runs every extractor over raw text.
func Parse(e *extract.Extractor, raw string) ParseReport {
	text := extract.PlainText(raw)
	r := ParseReport{
		TagNumbers:    e.TagNumbersFromText(text, nil),
		Credit:        e.CreditFromText(text, ""),
		FoundLocation: e.FoundLocationFromText(text, ""),
		Hints:         e.HintFromText(text, nil),
		GPS:           e.GPSLocationFromText(text, nil),
		AlbumID:       e.AlbumIDFromText(text, ""),
		MentionURLs:   e.MentionURLsFromText(text, nil),
		ImageURLs:     e.ImageURLsFromText(text, nil),
	}
	r.DiscussionURL, _ = e.DiscussionURLFromText(text)
	r.ImageHash, _ = e.ImageHashFromText(text)
	r.CMSImageHash, _ = e.CMSImageHashFromText(text)

	t := biketag.Tag{
		MysteryPlayer: r.Credit,
		FoundPlayer:   r.Credit,
		FoundLocation: r.FoundLocation,
		Hint:          strings.Join(r.Hints, "; "),
		GPS:           r.GPS,
		DiscussionURL: r.DiscussionURL,
		ImageHash:     r.ImageHash,
		AlbumID:       r.AlbumID,
	}
	if len(r.TagNumbers) > 0 {
		t.TagNumber = r.TagNumbers[0]
	}
	if len(r.ImageURLs) > 0 {
		t.MysteryImageURL = r.ImageURLs[0]
	}
	r.Tag = t
	r.MysteryTitle = compose.MysteryTitle(t)
	r.MysteryDescription = compose.MysteryDescription(t, true, true)
	r.FoundTitle = compose.FoundTitle(t)
	r.FoundDescription = compose.FoundDescription(t, true)
	return r
}

func (a *App) runParse() error {
	b, err := os.ReadFile(a.cfg.ParsePath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return a.writeJSON(a.cfg.OutputPath, Parse(a.extract, string(b)))
}

func (a *App) writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	b = append(b, '\n')
	if path == "" || path == "-" {
		_, err := a.out.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("out", path).Msg("wrote output")
	return nil
}

func (a *App) writeGeoJSON(tags []biketag.Tag) error {
	if a.cfg.GeoJSONPath == "" {
		return nil
	}
	b, err := json.MarshalIndent(crawl.FeatureCollection(tags), "", "  ")
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if err := os.WriteFile(a.cfg.GeoJSONPath, b, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	log.Info().Str("out", a.cfg.GeoJSONPath).Msg("wrote geojson")
	return nil
}
