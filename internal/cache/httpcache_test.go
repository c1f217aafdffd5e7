package cache

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "testing"
    "time"
)

func TestHTTPCache_LRUEnforcement_Count(t *testing.T) {
    t.Parallel()
    dir := t.TempDir()
    c := &HTTPCache{Dir: dir}
    urls := []string{"https://api.example.com/tags/1", "https://api.example.com/tags/2", "https://api.example.com/tags/3"}
    for i, u := range urls {
        if err := c.Save(context.Background(), u, "application/json", "", "", []byte(fmt.Sprintf("body-%d", i))); err != nil {
            t.Fatalf("save %d: %v", i, err)
        }
        time.Sleep(10 * time.Millisecond)
    }
    // Touch second to make it MRU compared to first
    if _, err := c.LoadBody(context.Background(), urls[1]); err != nil {
        t.Fatalf("touch body: %v", err)
    }
    removed, err := EnforceHTTPCacheLimits(dir, 0, 2)
    if err != nil { t.Fatalf("enforce: %v", err) }
    if removed != 1 { t.Fatalf("expected 1 removed, got %d", removed) }
    if _, err := c.LoadBody(context.Background(), urls[0]); err == nil {
        t.Fatalf("expected oldest evicted")
    }
}

func TestHTTPCache_LRUEnforcement_Bytes(t *testing.T) {
    t.Parallel()
    dir := t.TempDir()
    c := &HTTPCache{Dir: dir}
    if err := c.Save(context.Background(), "https://b.com/1", "application/json", "", "", []byte("1111111111")); err != nil {
        t.Fatalf("save 1: %v", err)
    }
    time.Sleep(10 * time.Millisecond)
    if err := c.Save(context.Background(), "https://b.com/2", "application/json", "", "", []byte("22")); err != nil {
        t.Fatalf("save 2: %v", err)
    }
    removed, err := EnforceHTTPCacheLimits(dir, 5, 0)
    if err != nil { t.Fatalf("enforce: %v", err) }
    if removed != 1 {
        t.Fatalf("expected 1 removal, got %d", removed)
    }
}

func TestHTTPCache_ScopeSeparatesEntries(t *testing.T) {
    dir := t.TempDir()
    a := &HTTPCache{Dir: dir, Scope: "token-a"}
    b := &HTTPCache{Dir: dir, Scope: "token-b"}
    url := "https://api.example.com/tags/9"
    if err := a.Save(context.Background(), url, "application/json", `"e1"`, "", []byte("a")); err != nil {
        t.Fatalf("save: %v", err)
    }
    if _, err := b.LoadBody(context.Background(), url); err == nil {
        t.Fatalf("scope b must not see scope a's body")
    }
    meta, err := a.LoadMeta(context.Background(), url)
    if err != nil || meta.ETag != `"e1"` {
        t.Fatalf("meta: %+v err=%v", meta, err)
    }
}

func TestHTTPCache_StrictPerms(t *testing.T) {
    t.Parallel()
    dir := filepath.Join(t.TempDir(), "http")
    c := &HTTPCache{Dir: dir, StrictPerms: true}
    url := "https://example.com/x"
    if err := c.Save(context.Background(), url, "application/json", "etag", "", []byte("hello")); err != nil {
        t.Fatalf("save: %v", err)
    }
    info, err := os.Stat(dir)
    if err != nil {
        t.Fatalf("stat dir: %v", err)
    }
    if got := info.Mode() & 0o777; got != 0o700 {
        t.Fatalf("dir mode = %o, want 0700", got)
    }
    key := c.key(url)
    for _, f := range []string{filepath.Join(dir, key+".body"), filepath.Join(dir, key+".meta.json")} {
        finfo, err := os.Stat(f)
        if err != nil {
            t.Fatalf("stat %s: %v", f, err)
        }
        if got := finfo.Mode() & 0o777; got != 0o600 {
            t.Fatalf("%s mode = %o, want 0600", f, got)
        }
    }
}

func TestPurgeHTTPCacheByAge_MissingDir(t *testing.T) {
    removed, err := PurgeHTTPCacheByAge(filepath.Join(t.TempDir(), "nope"), time.Hour)
    if err != nil || removed != 0 {
        t.Fatalf("removed=%d err=%v", removed, err)
    }
}
