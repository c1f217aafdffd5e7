package extract

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/biketag/biketag-go/internal/biketag"
)

// Hosts whose URLs are kept. Matching is by domain suffix so that
// "reddit.com" does not pass for "t.co".
var (
	imageHosts   = []string{"imgur.com", "t.co"}
	mentionHosts = []string{"t.co"}
)

const primaryImageHost = "imgur.com"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
}

// Words a credit candidate may not start with. They show up because the
// credit pattern also captures the "tag #N" / "proof #N" prefix.
var reservedCreditWords = []string{"tag", "proof", "by"}

// firstCredit applies the credit filter to the groups of one credit match,
// full match included, and returns the first survivor.
func firstCredit(groups []string) (string, bool) {
	for _, g := range groups {
		c := strings.TrimSpace(g)
		if isCredit(c) {
			return c, true
		}
	}
	return "", false
}

func isCredit(c string) bool {
	if c == "" {
		return false
	}
	lower := strings.ToLower(c)
	for _, w := range reservedCreditWords {
		if startsWithWord(lower, w) {
			return false
		}
	}
	if strings.Contains(lower, "to:") || strings.Contains(lower, "hint:") {
		return false
	}
	return !isNumeric(c)
}

// startsWithWord reports whether s is w or starts with w followed by a
// non-alphanumeric byte, so "tag #4" matches "tag" but "Tagger" does not.
func startsWithWord(s, w string) bool {
	if !strings.HasPrefix(s, w) {
		return false
	}
	if len(s) == len(w) {
		return true
	}
	next := s[len(w)]
	return !(next >= 'a' && next <= 'z' || next >= '0' && next <= '9')
}

// isNumeric reports whether s is an integer, optionally written as #N.
func isNumeric(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// firstAlbumID drops candidates that are gallery paths, album prefixes, query
// strings or single characters.
func firstAlbumID(candidates []string) string {
	for _, id := range candidates {
		if strings.Contains(id, "gallery") ||
			strings.Contains(id, "?") ||
			strings.Contains(id, "a/") ||
			len(id) <= 1 {
			continue
		}
		return id
	}
	return ""
}

// allowedURL trims trailing punctuation, checks the host against hosts and
// applies the direct-image rewrite.
func allowedURL(raw string, hosts []string) (string, bool) {
	raw = strings.TrimRight(raw, ".,;:!?'\"")
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if !hostAllowed(host, hosts) {
		return "", false
	}
	if needsDirectImage(host, u.Path) {
		u.Host = "i." + primaryImageHost
		u.Path += ".jpg"
		return u.String(), true
	}
	return raw, true
}

func hostAllowed(host string, hosts []string) bool {
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// needsDirectImage reports whether a primary image-host link points at an
// image page rather than the image itself. Albums and galleries are left alone.
func needsDirectImage(host, p string) bool {
	if host != primaryImageHost && host != "www."+primaryImageHost {
		return false
	}
	if len(p) <= 1 {
		return false
	}
	if strings.Contains(p, "/a/") || strings.Contains(p, "3/album") || strings.HasPrefix(p, "/gallery") {
		return false
	}
	return !imageExtensions[strings.ToLower(path.Ext(p))]
}

func parseGeoPair(pair string) (biketag.GeoPoint, bool) {
	parts := strings.SplitN(pair, ",", 2)
	if len(parts) != 2 {
		return biketag.GeoPoint{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return biketag.GeoPoint{}, false
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return biketag.GeoPoint{}, false
	}
	return biketag.GeoPoint{Lat: lat, Long: long, Alt: 0}, true
}
