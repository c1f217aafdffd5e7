package extract

import (
	"strconv"
	"strings"

	"github.com/biketag/biketag-go/internal/biketag"
	"github.com/biketag/biketag-go/internal/cache"
	"github.com/biketag/biketag-go/internal/pattern"
)

// TagNumberFromSlug returns the first integer token of a slug, or fallback.
func (e *Extractor) TagNumberFromSlug(text string, fallback int) int {
	if text == "" {
		return fallback
	}
	key := cache.Key(cache.SlugText, text)
	if v, ok := lookup[int](e.cache, key); ok {
		return v
	}

	out := fallback
	if m := e.patterns.Must(pattern.Slug).FindString(text); m != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(m)); err == nil {
			out = n
		}
	}
	store(e.cache, key, out)
	return out
}

// TagNumbersFromText returns every distinct tag number mentioned in text in
// first-seen order. With no mentions it returns fallback, or an empty slice
// when fallback is nil.
func (e *Extractor) TagNumbersFromText(text string, fallback []int) []int {
	if text == "" {
		return fallback
	}
	key := cache.Key(cache.TagNumberText, text)
	if v, ok := lookup[[]int](e.cache, key); ok {
		return v
	}

	var numbers []int
	seen := map[int]struct{}{}
	for _, m := range e.patterns.Must(pattern.TagNumbers).FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		numbers = fallbackInts(fallback)
	}
	store(e.cache, key, numbers)
	return numbers
}

// CreditFromText returns the player credited in text. The credit pattern
// yields several candidate groups; the first one that is not a reserved word,
// a tag number or part of a hint/"to:" phrase wins.
func (e *Extractor) CreditFromText(text string, fallback string) string {
	if text == "" {
		return fallback
	}
	key := cache.Key(cache.CreditText, text)
	if v, ok := lookup[string](e.cache, key); ok {
		return v
	}

	out := fallback
	if m := e.patterns.Must(pattern.Credit).FindStringSubmatch(e.creditText(text)); m != nil {
		if c, ok := firstCredit(m); ok {
			out = c
		}
	}
	store(e.cache, key, out)
	return out
}

// creditText masks parenthesised hints and splits "proofby" so the credit
// pattern only sees the credit clause. The cache key stays the raw text.
func (e *Extractor) creditText(text string) string {
	text = e.patterns.Must(pattern.HintSpan).ReplaceAllString(text, "()")
	return e.patterns.Must(pattern.GluedCredit).ReplaceAllString(text, "$1 $2")
}

// TagRole pairs a tag number with the role word written right after it:
// "tag" for a mystery image, "proof" for a found image.
type TagRole struct {
	Number int    `json:"number"`
	Role   string `json:"role"`
}

// TagRolesFromText returns every "#N tag" / "#N proof" mention in text in
// first-seen order, or fallback (empty slice when nil) if there is none.
func (e *Extractor) TagRolesFromText(text string, fallback []TagRole) []TagRole {
	if text == "" {
		return fallback
	}
	key := cache.Key(cache.RoleText, text)
	if v, ok := lookup[[]TagRole](e.cache, key); ok {
		return v
	}

	var roles []TagRole
	for _, m := range e.patterns.Must(pattern.PostRole).FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		roles = append(roles, TagRole{Number: n, Role: strings.ToLower(m[2])})
	}
	if len(roles) == 0 {
		roles = fallback
		if roles == nil {
			roles = []TagRole{}
		}
	}
	store(e.cache, key, roles)
	return roles
}

// FoundLocationFromText returns the place named after "found at", or fallback.
func (e *Extractor) FoundLocationFromText(text string, fallback string) string {
	if text == "" {
		return fallback
	}
	key := cache.Key(cache.LocationText, text)
	if v, ok := lookup[string](e.cache, key); ok {
		return v
	}

	out := fallback
	if m := e.patterns.Must(pattern.FoundLocation).FindStringSubmatch(text); m != nil {
		if loc := strings.TrimSpace(m[1]); loc != "" {
			out = loc
		}
	}
	store(e.cache, key, out)
	return out
}

// HintFromText returns every distinct hint in text in first-seen order, or
// fallback (empty slice when nil) if there is none.
func (e *Extractor) HintFromText(text string, fallback []string) []string {
	if text == "" {
		return fallback
	}
	key := cache.Key(cache.HintText, text)
	if v, ok := lookup[[]string](e.cache, key); ok {
		return v
	}

	var hints []string
	seen := map[string]struct{}{}
	for _, m := range e.patterns.Must(pattern.Hint).FindAllStringSubmatch(text, -1) {
		h := strings.TrimSpace(m[1])
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		hints = append(hints, h)
	}
	if len(hints) == 0 {
		hints = fallbackStrings(fallback)
	}
	store(e.cache, key, hints)
	return hints
}

// GPSLocationFromText returns the first lat,long pair in text with altitude 0,
// or fallback. Backslashes are stripped first; some posts carry escaped quotes
// between the two coordinates.
func (e *Extractor) GPSLocationFromText(text string, fallback *biketag.GeoPoint) *biketag.GeoPoint {
	if text == "" {
		return fallback
	}
	key := cache.Key(cache.GPSLocationText, text)
	if v, ok := lookup[*biketag.GeoPoint](e.cache, key); ok {
		return v
	}

	out := fallback
	normalized := strings.ReplaceAll(text, `\`, "")
	if m := e.patterns.Must(pattern.GPS).FindString(normalized); m != "" {
		if p, ok := parseGeoPair(m); ok {
			out = &p
		}
	}
	store(e.cache, key, out)
	return out
}

// AlbumIDFromText returns the first album id candidate that is not a path
// prefix or query string, or fallback.
func (e *Extractor) AlbumIDFromText(text string, fallback string) string {
	if text == "" {
		return fallback
	}
	key := cache.Key(cache.AlbumIDText, text)
	if v, ok := lookup[string](e.cache, key); ok {
		return v
	}

	out := fallback
	if m := e.patterns.Must(pattern.AlbumID).FindStringSubmatch(text); m != nil {
		if id := firstAlbumID(m[1:]); id != "" {
			out = id
		}
	}
	store(e.cache, key, out)
	return out
}

// MentionURLsFromText returns the link-shortener URLs in text, or fallback.
func (e *Extractor) MentionURLsFromText(text string, fallback []string) []string {
	return e.urls(cache.MentionText, mentionHosts, text, fallback)
}

// ImageURLsFromText returns image URLs in text, or fallback. Bare image-host
// page links are rewritten to their direct-image form with a .jpg extension;
// that is a guess, the content type is never checked.
func (e *Extractor) ImageURLsFromText(text string, fallback []string) []string {
	return e.urls(cache.ImagesText, imageHosts, text, fallback)
}

func (e *Extractor) urls(ns cache.Namespace, hosts []string, text string, fallback []string) []string {
	if text == "" {
		return fallback
	}
	key := cache.Key(ns, text)
	if v, ok := lookup[[]string](e.cache, key); ok {
		return v
	}

	var urls []string
	for _, raw := range e.patterns.Must(pattern.URLs).FindAllString(text, -1) {
		u, ok := allowedURL(raw, hosts)
		if !ok {
			continue
		}
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		urls = fallbackStrings(fallback)
	}
	store(e.cache, key, urls)
	return urls
}

// DiscussionURLFromText returns the braced discussion link of a mystery title.
func (e *Extractor) DiscussionURLFromText(text string) (string, bool) {
	return e.single(cache.DiscussionText, pattern.DiscussionURL, text)
}

// ImageHashFromText returns the image-host hash of an image URL.
func (e *Extractor) ImageHashFromText(text string) (string, bool) {
	return e.single(cache.ImageHashText, pattern.ImageHash, text)
}

// CMSImageHashFromText returns the asset hash of a CMS image CDN URL.
func (e *Extractor) CMSImageHashFromText(text string) (string, bool) {
	return e.single(cache.CMSImageHashText, pattern.CMSImageHash, text)
}

// FoundImageHash is ImageHashFromText over the record's found image URL.
func (e *Extractor) FoundImageHash(t biketag.Tag) (string, bool) {
	return e.ImageHashFromText(t.FoundImageURL)
}

// MysteryImageHash is ImageHashFromText over the record's mystery image URL.
func (e *Extractor) MysteryImageHash(t biketag.Tag) (string, bool) {
	return e.ImageHashFromText(t.MysteryImageURL)
}

// single runs a one-group pattern. These extractors take no fallback: an
// unmatched input is an explicit no-value, cached as such.
func (e *Extractor) single(ns cache.Namespace, kind pattern.Kind, text string) (string, bool) {
	if text == "" {
		return "", false
	}
	key := cache.Key(ns, text)
	if v, ok := lookup[*string](e.cache, key); ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	var out *string
	if m := e.patterns.Must(kind).FindStringSubmatch(text); m != nil {
		s := strings.TrimSpace(m[1])
		out = &s
	}
	store(e.cache, key, out)
	if out == nil {
		return "", false
	}
	return *out, true
}

func fallbackInts(fallback []int) []int {
	if fallback != nil {
		return fallback
	}
	return []int{}
}

func fallbackStrings(fallback []string) []string {
	if fallback != nil {
		return fallback
	}
	return []string{}
}
