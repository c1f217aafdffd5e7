package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
    "time"

	"github.com/rs/zerolog/log"
)

// DiskCache persists memoized extraction results as <sha256(key)>.json files
// so repeated crawl runs over the same posts skip pattern work.
type DiskCache struct {
    Dir         string
    // StrictPerms, when true, enforces 0700 on the cache directory and 0600 on
    // entry files.
    StrictPerms bool
}

func (c *DiskCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
    perm := os.FileMode(0o755)
    if c.StrictPerms {
        perm = 0o700
    }
    if err := os.MkdirAll(c.Dir, perm); err != nil {
        return err
    }
    // An existing directory may predate StrictPerms
    if c.StrictPerms {
        if info, err := os.Stat(c.Dir); err == nil {
            if info.Mode()&0o777 != 0o700 {
                _ = os.Chmod(c.Dir, 0o700)
            }
        }
    }
    return nil
}

// Digest returns the file stem used for a memo key.
func Digest(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func (c *DiskCache) pathFor(key string) string {
	return filepath.Join(c.Dir, Digest(key)+".json")
}

// Get returns the stored value if present.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	if err := c.ensureDir(); err != nil {
		log.Debug().Err(err).Msg("disk memo get")
		return nil, false
	}
	p := c.pathFor(key)
    b, err := os.ReadFile(p)
    if err != nil {
        return nil, false
    }
    // mtime doubles as last-access time for EnforceDiskCacheLimits
    now := time.Now()
    _ = os.Chtimes(p, now, now)
	return b, true
}

// Put writes value to disk, replacing any previous entry atomically.
func (c *DiskCache) Put(key string, value []byte) {
	if err := c.ensureDir(); err != nil {
		log.Debug().Err(err).Msg("disk memo put")
		return
	}
	p := c.pathFor(key)
    mode := os.FileMode(0o644)
    if c.StrictPerms {
        mode = 0o600
    }
    // Parallel crawl workers may write the same key; each gets its own temp file
    f, err := os.CreateTemp(c.Dir, filepath.Base(p)+".*.tmp")
    if err != nil {
        log.Debug().Err(err).Str("path", p).Msg("disk memo write")
        return
    }
    tmp := f.Name()
    _, werr := f.Write(value)
    cerr := f.Close()
    if werr != nil || cerr != nil {
        _ = os.Remove(tmp)
        log.Debug().Str("path", p).Msg("disk memo write failed")
        return
    }
    _ = os.Chmod(tmp, mode)
    if err := os.Rename(tmp, p); err != nil {
        _ = os.Remove(tmp)
        log.Debug().Err(err).Str("path", p).Msg("disk memo rename")
    }
}
