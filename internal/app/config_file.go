package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/biketag/biketag-go/internal/client"
)

// FileConfig represents the single-file configuration schema. Nested sections
// mirror the flag prefixes.
type FileConfig struct {
    Game     string   `yaml:"game" json:"game"`
    ForceAPI string   `yaml:"forceAPI" json:"forceAPI"`
    Fields   []string `yaml:"fields" json:"fields"`

    BikeTag struct {
        URL   string `yaml:"url" json:"url"`
        Token string `yaml:"token" json:"token"`
    } `yaml:"biketag" json:"biketag"`

    Imgur struct {
        ClientID string `yaml:"clientId" json:"clientId"`
        Token    string `yaml:"token" json:"token"`
        Album    string `yaml:"album" json:"album"`
    } `yaml:"imgur" json:"imgur"`

    Sanity struct {
        Project string `yaml:"project" json:"project"`
        Dataset string `yaml:"dataset" json:"dataset"`
        Token   string `yaml:"token" json:"token"`
    } `yaml:"sanity" json:"sanity"`

    Posts string `yaml:"posts" json:"posts"`

    Output  string `yaml:"output" json:"output"`
    GeoJSON string `yaml:"geojson" json:"geojson"`

    Near struct {
        Lat    float64 `yaml:"lat" json:"lat"`
        Long   float64 `yaml:"long" json:"long"`
        Meters float64 `yaml:"meters" json:"meters"`
    } `yaml:"near" json:"near"`

    Crawl struct {
        From     int           `yaml:"from" json:"from"`
        To       int           `yaml:"to" json:"to"`
        Parallel int           `yaml:"parallel" json:"parallel"`
        Timeout  time.Duration `yaml:"timeout" json:"timeout"`
    } `yaml:"crawl" json:"crawl"`

    Cache struct {
        Kind        string        `yaml:"kind" json:"kind"`
        Dir         string        `yaml:"dir" json:"dir"`
        MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
        Clear       bool          `yaml:"clear" json:"clear"`
        StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
        MaxBytes    int64         `yaml:"maxBytes" json:"maxBytes"`
        MaxCount    int           `yaml:"maxCount" json:"maxCount"`
    } `yaml:"cache" json:"cache"`

    Redis struct {
        Addr     string        `yaml:"addr" json:"addr"`
        Password string        `yaml:"password" json:"password"`
        DB       int           `yaml:"db" json:"db"`
        TTL      time.Duration `yaml:"ttl" json:"ttl"`
    } `yaml:"redis" json:"redis"`

    Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are still zero after flags and env.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if cfg.Game == "" { cfg.Game = fc.Game }
    if cfg.ForceAPI == "" { cfg.ForceAPI = fc.ForceAPI }
    if len(cfg.Fields) == 0 && len(fc.Fields) > 0 { cfg.Fields = append([]string{}, fc.Fields...) }

    if cfg.BikeTagURL == "" { cfg.BikeTagURL = fc.BikeTag.URL }
    if cfg.BikeTagToken == "" { cfg.BikeTagToken = fc.BikeTag.Token }
    if cfg.ImgurClientID == "" { cfg.ImgurClientID = fc.Imgur.ClientID }
    if cfg.ImgurToken == "" { cfg.ImgurToken = fc.Imgur.Token }
    if cfg.ImgurAlbum == "" { cfg.ImgurAlbum = fc.Imgur.Album }
    if cfg.SanityProject == "" { cfg.SanityProject = fc.Sanity.Project }
    if cfg.SanityDataset == "" { cfg.SanityDataset = fc.Sanity.Dataset }
    if cfg.SanityToken == "" { cfg.SanityToken = fc.Sanity.Token }
    if cfg.PostsFile == "" { cfg.PostsFile = fc.Posts }

    if cfg.OutputPath == "" { cfg.OutputPath = fc.Output }
    if cfg.GeoJSONPath == "" { cfg.GeoJSONPath = fc.GeoJSON }
    if cfg.NearMeters == 0 && fc.Near.Meters > 0 {
        cfg.NearLat, cfg.NearLong, cfg.NearMeters = fc.Near.Lat, fc.Near.Long, fc.Near.Meters
    }

    if cfg.From == 0 && cfg.To == 0 { cfg.From, cfg.To = fc.Crawl.From, fc.Crawl.To }
    if cfg.Parallel == 0 { cfg.Parallel = fc.Crawl.Parallel }
    if cfg.RequestTimeout == 0 { cfg.RequestTimeout = fc.Crawl.Timeout }

    if cfg.CacheKind == "" { cfg.CacheKind = fc.Cache.Kind }
    if cfg.CacheDir == "" { cfg.CacheDir = fc.Cache.Dir }
    if cfg.CacheMaxAge == 0 { cfg.CacheMaxAge = fc.Cache.MaxAge }
    if !cfg.CacheClear && fc.Cache.Clear { cfg.CacheClear = true }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms { cfg.CacheStrictPerms = true }
    if cfg.CacheMaxBytes == 0 { cfg.CacheMaxBytes = fc.Cache.MaxBytes }
    if cfg.CacheMaxCount == 0 { cfg.CacheMaxCount = fc.Cache.MaxCount }

    if cfg.RedisAddr == "" { cfg.RedisAddr = fc.Redis.Addr }
    if cfg.RedisPassword == "" { cfg.RedisPassword = fc.Redis.Password }
    if cfg.RedisDB == 0 { cfg.RedisDB = fc.Redis.DB }
    if cfg.RedisTTL == 0 { cfg.RedisTTL = fc.Redis.TTL }

    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig rejects settings that cannot produce a run.
func ValidateConfig(cfg Config) error {
    modes := 0
    if cfg.TagNumber > 0 || strings.TrimSpace(cfg.Slug) != "" { modes++ }
    if cfg.From > 0 || cfg.To > 0 { modes++ }
    if strings.TrimSpace(cfg.ParsePath) != "" { modes++ }
    if modes == 0 {
        return errors.New("config: one of -tag, -slug, -from/-to or -parse is required")
    }
    if modes > 1 {
        return errors.New("config: -tag/-slug, -from/-to and -parse are mutually exclusive")
    }
    if cfg.TagNumber < 0 || cfg.Parallel < 0 || cfg.CacheMaxBytes < 0 || cfg.CacheMaxCount < 0 || cfg.NearMeters < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    if cfg.From > 0 || cfg.To > 0 {
        if cfg.From < 1 || cfg.To < cfg.From {
            return fmt.Errorf("config: invalid tag range %d..%d", cfg.From, cfg.To)
        }
    }
    switch cfg.CacheKind {
    case "", CacheNone, CacheMemory, CacheDisk:
    case CacheRedis:
        if strings.TrimSpace(cfg.RedisAddr) == "" {
            return errors.New("config: redis cache requires redis.addr (or REDIS_ADDR)")
        }
    default:
        return fmt.Errorf("config: unknown cache kind %q", cfg.CacheKind)
    }
    if _, err := client.ParseAPI(cfg.ForceAPI); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    return nil
}
