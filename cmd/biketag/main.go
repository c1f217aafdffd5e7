package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/biketag/biketag-go/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(".env"); err != nil {
		log.Warn().Err(err).Msg("load .env")
	}

	var (
		cfg        app.Config
		configPath string
		fields     string
		version    bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("BIKETAG_CONFIG"), "Path to YAML or JSON config file")
	flag.IntVar(&cfg.TagNumber, "tag", 0, "Tag number to fetch")
	flag.StringVar(&cfg.Slug, "slug", "", "Tag slug to fetch, e.g. tag-42")
	flag.IntVar(&cfg.From, "from", 0, "First tag number of a crawl range")
	flag.IntVar(&cfg.To, "to", 0, "Last tag number of a crawl range")
	flag.StringVar(&cfg.ParsePath, "parse", "", "Parse a local post (text or HTML) and print every extracted field")
	flag.StringVar(&fields, "fields", "", "Comma-separated fields to keep in each record")
	flag.StringVar(&cfg.Game, "game", "", "Game name, e.g. portland")
	flag.StringVar(&cfg.ForceAPI, "api", "", "Force a backend: biketag, imgur, sanity or file")

	flag.StringVar(&cfg.BikeTagURL, "biketag.url", "", "BikeTag API base URL")
	flag.StringVar(&cfg.BikeTagToken, "biketag.token", "", "BikeTag API access token")
	flag.StringVar(&cfg.ImgurClientID, "imgur.clientId", "", "Imgur client id")
	flag.StringVar(&cfg.ImgurToken, "imgur.token", "", "Imgur access token")
	flag.StringVar(&cfg.ImgurAlbum, "imgur.album", "", "Imgur album id or URL")
	flag.StringVar(&cfg.SanityProject, "sanity.project", "", "Sanity project id")
	flag.StringVar(&cfg.SanityDataset, "sanity.dataset", "", "Sanity dataset")
	flag.StringVar(&cfg.SanityToken, "sanity.token", "", "Sanity token")
	flag.StringVar(&cfg.PostsFile, "posts", "", "Local JSON export of album posts (offline backend)")

	flag.StringVar(&cfg.OutputPath, "output", "", "Write JSON here instead of stdout")
	flag.StringVar(&cfg.GeoJSONPath, "geojson", "", "Also write a GeoJSON FeatureCollection of located tags")
	flag.Float64Var(&cfg.NearLat, "near.lat", 0, "Latitude of the proximity filter centre")
	flag.Float64Var(&cfg.NearLong, "near.long", 0, "Longitude of the proximity filter centre")
	flag.Float64Var(&cfg.NearMeters, "near.meters", 0, "Keep only crawled tags within this many meters (0 disables)")

	flag.IntVar(&cfg.Parallel, "parallel", 0, "Concurrent requests during a crawl (default 4)")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", 0, "Per-request timeout (default 15s)")
	flag.StringVar(&cfg.UserAgent, "ua", "", "Custom User-Agent for backend requests")
	flag.BoolVar(&cfg.InsecureSkipVerify, "insecure", false, "Skip TLS certificate verification")

	flag.StringVar(&cfg.CacheKind, "cache.kind", "", "Memo cache: none, memory, disk or redis (default memory)")
	flag.StringVar(&cfg.CacheDir, "cache.dir", "", "Cache directory path (default .biketag-cache)")
	flag.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.Int64Var(&cfg.CacheMaxBytes, "cache.maxBytes", 0, "Evict oldest cache entries above this size; 0 disables")
	flag.IntVar(&cfg.CacheMaxCount, "cache.maxCount", 0, "Evict oldest cache entries above this count; 0 disables")
	flag.StringVar(&cfg.RedisAddr, "redis.addr", "", "Redis address for -cache.kind=redis")
	flag.StringVar(&cfg.RedisPassword, "redis.password", "", "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis.db", 0, "Redis database number")
	flag.DurationVar(&cfg.RedisTTL, "redis.ttl", 0, "Expiry of memo entries in redis; 0 keeps them")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	flag.BoolVar(&version, "version", false, "Print build information and exit")
	flag.Parse()

	if version {
		fmt.Printf("biketag %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}

	cfg.Fields = app.SplitList(fields)
	if err := loadConfig(&cfg, configPath); err != nil {
		log.Error().Err(err).Msg("config")
		os.Exit(1)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		stop()
		os.Exit(exitCode(err))
	}
}

// loadConfig layers env and the optional config file under the flags.
func loadConfig(cfg *app.Config, path string) error {
	app.ApplyEnvToConfig(cfg)
	if path != "" {
		fc, err := app.LoadConfigFile(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		app.ApplyFileConfig(cfg, fc)
	}
	app.ApplyDefaults(cfg)
	return app.ValidateConfig(*cfg)
}

// exitCode maps an empty crawl to 2 and every other failure to 1.
func exitCode(err error) int {
	if errors.Is(err, app.ErrNoTags) {
		return 2
	}
	return 1
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
