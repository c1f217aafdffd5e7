package cache

import (
    "encoding/json"
    "errors"
    "io/fs"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
    if strings.TrimSpace(dir) == "" {
        return errors.New("empty dir")
    }
    if err := os.RemoveAll(dir); err != nil {
        return err
    }
    return os.MkdirAll(dir, 0o755)
}

// PurgeHTTPCacheByAge removes HTTP cache entries older than maxAge.
// It reads SavedAt from <key>.meta.json and deletes both meta and
// <key>.body when expired.
func PurgeHTTPCacheByAge(dir string, maxAge time.Duration) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    now := time.Now().UTC()
    removed := 0
    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            if errors.Is(err, fs.ErrNotExist) { return nil }
            return err
        }
        if d.IsDir() || !strings.HasSuffix(d.Name(), ".meta.json") {
            return nil
        }
        b, err := os.ReadFile(path)
        if err != nil {
            return nil // skip unreadable
        }
        var e HTTPEntry
        if err := json.Unmarshal(b, &e); err != nil {
            return nil // skip malformed
        }
        if now.Sub(e.SavedAt) <= maxAge {
            return nil
        }
        removed++
        _ = os.Remove(path)
        _ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
        return nil
    })
    return removed, err
}

// PurgeDiskCacheByAge removes memo entries whose last access is older than
// maxAge. Memo entries are the plain .json leaf files.
func PurgeDiskCacheByAge(dir string, maxAge time.Duration) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    now := time.Now().UTC()
    removed := 0
    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            if errors.Is(err, fs.ErrNotExist) { return nil }
            return err
        }
        if d.IsDir() || !isMemoFile(d.Name()) {
            return nil
        }
        info, err := d.Info()
        if err != nil {
            return nil
        }
        if now.Sub(info.ModTime().UTC()) <= maxAge {
            return nil
        }
        removed++
        _ = os.Remove(path)
        return nil
    })
    return removed, err
}

func isMemoFile(name string) bool {
    if strings.HasSuffix(name, ".meta.json") || strings.HasSuffix(name, ".body") {
        return false
    }
    return strings.HasSuffix(name, ".json")
}

type lruEntry struct {
    paths []string
    size  int64
    used  time.Time
}

// enforceLimits deletes least recently used entries until both caps hold.
// A zero cap disables that limit.
func enforceLimits(entries []lruEntry, maxBytes int64, maxCount int) int {
    sort.Slice(entries, func(i, j int) bool { return entries[i].used.Before(entries[j].used) })
    var total int64
    for _, e := range entries {
        total += e.size
    }
    count := len(entries)
    removed := 0
    for _, e := range entries {
        overCount := maxCount > 0 && count > maxCount
        overBytes := maxBytes > 0 && total > maxBytes
        if !overCount && !overBytes {
            break
        }
        for _, p := range e.paths {
            _ = os.Remove(p)
        }
        total -= e.size
        count--
        removed++
    }
    return removed
}

// EnforceHTTPCacheLimits evicts least recently used HTTP entries (body mtime)
// until the directory holds at most maxCount entries and maxBytes of bodies.
func EnforceHTTPCacheLimits(dir string, maxBytes int64, maxCount int) (int, error) {
    if maxBytes <= 0 && maxCount <= 0 {
        return 0, nil
    }
    var entries []lruEntry
    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            return err
        }
        if d.IsDir() || !strings.HasSuffix(d.Name(), ".body") {
            return nil
        }
        info, err := d.Info()
        if err != nil {
            return nil
        }
        base := strings.TrimSuffix(path, ".body")
        entries = append(entries, lruEntry{
            paths: []string{path, base + ".meta.json"},
            size:  info.Size(),
            used:  info.ModTime(),
        })
        return nil
    })
    if err != nil {
        return 0, err
    }
    return enforceLimits(entries, maxBytes, maxCount), nil
}

// EnforceDiskCacheLimits is EnforceHTTPCacheLimits for memo entries.
func EnforceDiskCacheLimits(dir string, maxBytes int64, maxCount int) (int, error) {
    if maxBytes <= 0 && maxCount <= 0 {
        return 0, nil
    }
    var entries []lruEntry
    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            return err
        }
        if d.IsDir() || !isMemoFile(d.Name()) {
            return nil
        }
        info, err := d.Info()
        if err != nil {
            return nil
        }
        entries = append(entries, lruEntry{paths: []string{path}, size: info.Size(), used: info.ModTime()})
        return nil
    })
    if err != nil {
        return 0, err
    }
    return enforceLimits(entries, maxBytes, maxCount), nil
}
