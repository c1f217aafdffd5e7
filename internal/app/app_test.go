package app

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/biketag/biketag-go/internal/biketag"
    "github.com/biketag/biketag-go/internal/client"
)

const postsJSON = `[
  {"id": "Myst042", "title": "(45.5231, -122.6765, 0) {https://reddit.com/r/CyclingPortland/comments/x1}",
   "description": "#42 tag (hint: under the bridge) by Dana", "link": "https://i.imgur.com/Myst042.jpg"},
  {"id": "Proof42", "title": "(45.5200, -122.6800, 0)",
   "description": "#42 proof found at (Park Blocks) by Jo", "link": "https://imgur.com/Proof42"},
  {"id": "Myst043", "title": " ", "description": "#43 tag ) by Jo", "link": "https://i.imgur.com/Myst043.png"}
]`

func writeFile(t *testing.T, dir, name, content string) string {
    t.Helper()
    p := filepath.Join(dir, name)
    if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
        t.Fatalf("write %s: %v", name, err)
    }
    return p
}

func newTestApp(t *testing.T, cfg Config) (*App, *bytes.Buffer) {
    t.Helper()
    if cfg.CacheDir == "" {
        cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
    }
    a, err := New(context.Background(), cfg)
    if err != nil {
        t.Fatalf("new app: %v", err)
    }
    t.Cleanup(a.Close)
    var buf bytes.Buffer
    a.SetOutput(&buf)
    return a, &buf
}

func TestRun_SingleTagFromFile(t *testing.T) {
    tmp := t.TempDir()
    posts := writeFile(t, tmp, "posts.json", postsJSON)
    out := filepath.Join(tmp, "tag.json")

    a, _ := newTestApp(t, Config{TagNumber: 42, PostsFile: posts, Game: "portland", ForceAPI: "file", OutputPath: out})
    if err := a.Run(context.Background()); err != nil {
        t.Fatalf("run: %v", err)
    }
    b, err := os.ReadFile(out)
    if err != nil {
        t.Fatalf("read output: %v", err)
    }
    var tag biketag.Tag
    if err := json.Unmarshal(b, &tag); err != nil {
        t.Fatalf("decode output: %v", err)
    }
    if tag.TagNumber != 42 || tag.Game != "portland" || tag.MysteryPlayer != "Dana" || tag.FoundLocation != "Park Blocks" {
        t.Fatalf("unexpected tag: %+v", tag)
    }
}

func TestRun_CrawlWritesJSONAndGeoJSON(t *testing.T) {
    tmp := t.TempDir()
    posts := writeFile(t, tmp, "posts.json", postsJSON)
    geo := filepath.Join(tmp, "tags.geojson")

    a, buf := newTestApp(t, Config{From: 40, To: 45, PostsFile: posts, GeoJSONPath: geo, CacheKind: CacheDisk})
    if err := a.Run(context.Background()); err != nil {
        t.Fatalf("run: %v", err)
    }
    var tags []biketag.Tag
    if err := json.Unmarshal(buf.Bytes(), &tags); err != nil {
        t.Fatalf("decode output: %v\n%s", err, buf.String())
    }
    if len(tags) != 2 || tags[0].TagNumber != 42 || tags[1].TagNumber != 43 {
        t.Fatalf("want tags 42 and 43, got %+v", tags)
    }
    g, err := os.ReadFile(geo)
    if err != nil {
        t.Fatalf("read geojson: %v", err)
    }
    if !strings.Contains(string(g), `"FeatureCollection"`) {
        t.Fatalf("geojson missing feature collection: %s", g)
    }
}

func TestRun_CrawlNearFilter(t *testing.T) {
    tmp := t.TempDir()
    posts := writeFile(t, tmp, "posts.json", postsJSON)

    a, buf := newTestApp(t, Config{From: 40, To: 45, PostsFile: posts, NearLat: 45.52, NearLong: -122.68, NearMeters: 200})
    if err := a.Run(context.Background()); err != nil {
        t.Fatalf("run: %v", err)
    }
    var tags []biketag.Tag
    if err := json.Unmarshal(buf.Bytes(), &tags); err != nil {
        t.Fatalf("decode output: %v", err)
    }
    if len(tags) != 1 || tags[0].TagNumber != 42 {
        t.Fatalf("want only tag 42 near the centre, got %+v", tags)
    }
}

func TestRun_CrawlEmptyReturnsErrNoTags(t *testing.T) {
    tmp := t.TempDir()
    posts := writeFile(t, tmp, "posts.json", postsJSON)

    a, _ := newTestApp(t, Config{From: 100, To: 105, PostsFile: posts, CacheKind: CacheNone})
    if err := a.Run(context.Background()); !errors.Is(err, ErrNoTags) {
        t.Fatalf("want ErrNoTags, got %v", err)
    }
}

func TestRun_ParseReport(t *testing.T) {
    tmp := t.TempDir()
    in := writeFile(t, tmp, "post.html", "<p>#42 tag (hint: under the bridge) by Dana</p>")

    a, buf := newTestApp(t, Config{ParsePath: in})
    if err := a.Run(context.Background()); err != nil {
        t.Fatalf("run: %v", err)
    }
    var r ParseReport
    if err := json.Unmarshal(buf.Bytes(), &r); err != nil {
        t.Fatalf("decode report: %v", err)
    }
    if len(r.TagNumbers) != 1 || r.TagNumbers[0] != 42 {
        t.Fatalf("tag numbers %v", r.TagNumbers)
    }
    if r.Credit != "Dana" {
        t.Fatalf("credit %q", r.Credit)
    }
    if r.MysteryDescription != "#42 tag (hint: under the bridge) by Dana" {
        t.Fatalf("mystery description %q", r.MysteryDescription)
    }
}

func TestNew_NoBackend(t *testing.T) {
    _, err := New(context.Background(), Config{TagNumber: 1, CacheKind: CacheNone})
    if !errors.Is(err, client.ErrNoBackend) {
        t.Fatalf("want ErrNoBackend, got %v", err)
    }
}

func TestNew_InvalidConfig(t *testing.T) {
    if _, err := New(context.Background(), Config{CacheKind: CacheNone}); err == nil {
        t.Fatalf("expected error when no mode is selected")
    }
}
