package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apppkg "github.com/biketag/biketag-go/internal/app"
)

const posts = `[{"id": "Myst7", "title": " ", "description": "#7 tag (hint: red door) by Sam", "link": "https://i.imgur.com/Myst7.jpg"}]`

// Smoke test: run writes the fetched tag to the output file.
func TestRun_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "posts.json")
	out := filepath.Join(dir, "out.json")
	if err := os.WriteFile(in, []byte(posts), 0o644); err != nil {
		t.Fatalf("write posts: %v", err)
	}
	cfg := apppkg.Config{
		TagNumber:  7,
		PostsFile:  in,
		OutputPath: out,
		CacheDir:   filepath.Join(dir, "cache"),
	}
	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run error: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil || len(b) == 0 {
		t.Fatalf("expected output file, err=%v", err)
	}
}

// An empty crawl surfaces ErrNoTags and exits with 2.
func TestRun_EmptyCrawlExitCode(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "posts.json")
	if err := os.WriteFile(in, []byte(posts), 0o644); err != nil {
		t.Fatalf("write posts: %v", err)
	}
	cfg := apppkg.Config{From: 1, To: 3, PostsFile: in, CacheKind: apppkg.CacheNone}
	err := run(context.Background(), cfg)
	if !errors.Is(err, apppkg.ErrNoTags) {
		t.Fatalf("expected ErrNoTags, got %v", err)
	}
	if code := exitCode(err); code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
	if code := exitCode(errors.New("boom")); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
}

// Flags win over the config file; the file fills what flags left unset.
func TestLoadConfig_FileUnderFlags(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "biketag.yaml")
	if err := os.WriteFile(p, []byte("game: boston\ncrawl:\n  parallel: 9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BIKETAG_GAME", "")
	t.Setenv("CRAWL_PARALLEL", "")
	cfg := apppkg.Config{TagNumber: 1, Game: "portland"}
	if err := loadConfig(&cfg, p); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Game != "portland" || cfg.Parallel != 9 {
		t.Fatalf("game=%q parallel=%d", cfg.Game, cfg.Parallel)
	}
	if err := loadConfig(&apppkg.Config{TagNumber: 1}, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
