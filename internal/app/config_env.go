package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values (flags) take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    setString := func(dst *string, keys ...string) {
        if *dst != "" { return }
        for _, k := range keys {
            if v := strings.TrimSpace(os.Getenv(k)); v != "" {
                *dst = v
                return
            }
        }
    }
    setString(&cfg.Game, "BIKETAG_GAME")
    setString(&cfg.ForceAPI, "BIKETAG_FORCE_API")
    setString(&cfg.BikeTagURL, "BIKETAG_API_URL")
    setString(&cfg.BikeTagToken, "BIKETAG_ACCESS_TOKEN")
    setString(&cfg.ImgurClientID, "IMGUR_CLIENT_ID")
    setString(&cfg.ImgurToken, "IMGUR_ACCESS_TOKEN")
    // IMGUR_ADMIN_ALBUM is the name older deployments used
    setString(&cfg.ImgurAlbum, "IMGUR_ALBUM", "IMGUR_ADMIN_ALBUM")
    setString(&cfg.SanityProject, "SANITY_PROJECT_ID")
    setString(&cfg.SanityDataset, "SANITY_DATASET")
    setString(&cfg.SanityToken, "SANITY_TOKEN", "SANITY_ACCESS_TOKEN")
    setString(&cfg.PostsFile, "BIKETAG_POSTS_FILE")
    setString(&cfg.UserAgent, "BIKETAG_USER_AGENT")

    setString(&cfg.CacheKind, "CACHE_KIND")
    setString(&cfg.CacheDir, "CACHE_DIR")
    setString(&cfg.RedisAddr, "REDIS_ADDR")
    setString(&cfg.RedisPassword, "REDIS_PASSWORD")

    if len(cfg.Fields) == 0 {
        cfg.Fields = SplitList(os.Getenv("BIKETAG_FIELDS"))
    }

    setInt := func(dst *int, key string) {
        if *dst != 0 { return }
        if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
            *dst = n
        }
    }
    setInt(&cfg.Parallel, "CRAWL_PARALLEL")
    setInt(&cfg.RedisDB, "REDIS_DB")
    setInt(&cfg.CacheMaxCount, "CACHE_MAX_COUNT")
    if cfg.CacheMaxBytes == 0 {
        if n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("CACHE_MAX_BYTES")), 10, 64); err == nil {
            cfg.CacheMaxBytes = n
        }
    }

    // Optional durations
    setDuration := func(dst *time.Duration, key string) {
        if *dst != 0 { return }
        if s := os.Getenv(key); s != "" {
            if d, err := time.ParseDuration(s); err == nil {
                *dst = d
            }
        }
    }
    setDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")
    setDuration(&cfg.RedisTTL, "REDIS_TTL")
    setDuration(&cfg.RequestTimeout, "REQUEST_TIMEOUT")

    // Booleans
    setBool := func(dst *bool, envKey string) {
        if *dst { return }
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            if s == "1" || s == "true" || s == "yes" || s == "on" {
                *dst = true
            }
        }
    }
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
    setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
    setBool(&cfg.InsecureSkipVerify, "INSECURE_SKIP_VERIFY")
}
