package crawl

import (
	"net/url"
	"sort"
	"strings"

	"github.com/biketag/biketag-go/internal/biketag"
)

// Merge combines tag lists from several passes or backends. Records are
// de-duplicated by tag number keeping the first occurrence, discussion links
// lose tracking parameters, and the result is sorted by tag number. Records
// without a number are dropped.
func Merge(groups ...[]biketag.Tag) []biketag.Tag {
	seen := map[int]struct{}{}
	out := make([]biketag.Tag, 0, 64)
	for _, g := range groups {
		for _, t := range g {
			if t.TagNumber <= 0 {
				continue
			}
			if _, ok := seen[t.TagNumber]; ok {
				continue
			}
			seen[t.TagNumber] = struct{}{}
			t.DiscussionURL = normalizeURL(t.DiscussionURL)
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TagNumber < out[j].TagNumber })
	return out
}

func normalizeURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	q := u.Query()
	for _, p := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid", "share_id"} {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
