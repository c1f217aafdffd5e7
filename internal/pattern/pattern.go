package pattern

import (
	"fmt"
	"regexp"
	"sync"
)

// Kind names the field a pattern recovers.
type Kind string

const (
	Slug          Kind = "slug"
	TagNumbers    Kind = "tagnumbers"
	Credit        Kind = "credit"
	FoundLocation Kind = "location"
	Hint          Kind = "hint"
	GPS           Kind = "gps"
	AlbumID       Kind = "albumid"
	URLs          Kind = "urls"
	DiscussionURL Kind = "discussion"
	ImageHash     Kind = "imagehash"
	CMSImageHash  Kind = "cmsimagehash"
	PostRole      Kind = "postrole"
	HintSpan      Kind = "hintspan"
	GluedCredit   Kind = "gluedcredit"
)

// Definition documents one pattern: what it is for and where it is known to
// misfire. Extractors own the filtering that compensates for the latter.
type Definition struct {
	Kind   Kind
	Expr   string
	Intent string
	Misses string
}

// Definitions is the library of text patterns, one per extractable field.
var Definitions = []Definition{
	{
		Kind:   Slug,
		Expr:   `\d+`,
		Intent: "first integer token of a slug such as portland-tag-42",
		Misses: "game names containing digits win over the tag number",
	},
	{
		Kind:   TagNumbers,
		Expr:   `(?i)(?:#|\btag\s*#?\s*|\bproof\s*#?\s*)(\d+)`,
		Intent: "every #N, tag N or proof N mention in a post",
		Misses: "hex colours and issue references (#123) are counted as tags",
	},
	{
		Kind:   Credit,
		Expr:   `(?im)(?:\b(tag|proof)\s*#?\s*(\d+)\s+)?(?:\bby\b\s*:?\s*|\bcredit(?:s|ed)?(?:\s+to)?\s*:\s*)([^\n]+?)\s*(?:\(?\s*hint\s*:|[)\]{}(]|$)`,
		Intent: "player name after 'by' or 'credit:'; the optional tag/proof prefix is captured so it can be rejected",
		Misses: "full match, tag word and tag number come back as candidate groups",
	},
	{
		Kind:   FoundLocation,
		Expr:   `(?im)found\s+(?:at|in|@)\s*\(?\s*([^()\n]+?)\s*(?:\)|\bby\b|$)`,
		Intent: "place named after 'found at', with or without parentheses",
		Misses: "unparenthesised locations swallow trailing prose up to 'by' or end of line",
	},
	{
		Kind:   Hint,
		Expr:   `(?im)\bhint\s*:\s*([^\n)]+)`,
		Intent: "every 'hint:' span up to a closing parenthesis or end of line",
		Misses: "hints that contain parentheses are cut short",
	},
	{
		Kind:   GPS,
		Expr:   `-?\d{1,3}\.\d+\s*,\s*-?\d{1,3}\.\d+`,
		Intent: "decimal lat,long pair",
		Misses: "any two comma separated decimals match; altitude is never present",
	},
	{
		Kind:   AlbumID,
		Expr:   `(?i)imgur\.com/((?:a|gallery)/)?([A-Za-z0-9]+)(\?\S*)?`,
		Intent: "album id from an image-host album or gallery link",
		Misses: "path prefix and query string come back as candidate groups",
	},
	{
		Kind:   URLs,
		Expr:   `https?://[^\s"'<>()\[\]{}]+`,
		Intent: "every absolute http(s) URL",
		Misses: "trailing punctuation such as '.' or ',' stays attached",
	},
	{
		Kind:   DiscussionURL,
		Expr:   `\{\s*(https?://[^\s{}]+)\s*\}`,
		Intent: "discussion link written in braces in a mystery title",
		Misses: "bare links without braces are ignored",
	},
	{
		Kind:   ImageHash,
		Expr:   `(?i)(?:i\.)?imgur\.com/(?:a/|gallery/)?([A-Za-z0-9]{5,})`,
		Intent: "image hash from an image-host URL",
		Misses: "album hashes are returned when given an album link",
	},
	{
		Kind:   CMSImageHash,
		Expr:   `(?i)cdn\.sanity\.io/images/[^/\s]+/[^/\s]+/([a-f0-9]+)-\d+x\d+\.[a-z0-9]+`,
		Intent: "asset hash from a CMS image CDN URL",
		Misses: "cropped or transformed asset URLs without dimensions",
	},
	{
		Kind:   PostRole,
		Expr:   `(?i)#\s*(\d+)\s+(tag|proof)(?:by)?\b`,
		Intent: "tag number and the role word right after it: #N tag for a mystery image, #N proof for a found image",
		Misses: "posts written as 'tag #N' carry no role",
	},
	{
		Kind:   HintSpan,
		Expr:   `(?im)\(\s*hint\s*:[^)\n]*(?:\)|$)`,
		Intent: "parenthesised hint clause, masked before credit matching so a 'by' inside the hint is not read as a credit",
		Misses: "unparenthesised hints are left in place",
	},
	{
		Kind:   GluedCredit,
		Expr:   `(?i)\b(proof)(by)\b`,
		Intent: "'proofby' as written by found descriptions without a location, split before credit matching",
		Misses: "other words glued to 'by'",
	},
}

// Registry is an immutable set of compiled patterns. Build it once and share
// it; all methods are safe for concurrent use.
type Registry struct {
	patterns map[Kind]*regexp.Regexp
}

// New compiles every definition in Definitions. A definition that does not
// compile is a programming error and panics.
func New() *Registry {
	r := &Registry{patterns: make(map[Kind]*regexp.Regexp, len(Definitions))}
	for _, d := range Definitions {
		r.patterns[d.Kind] = regexp.MustCompile(d.Expr)
	}
	return r
}

// Compile builds a registry from custom definitions, reporting the first
// expression that does not compile.
func Compile(defs []Definition) (*Registry, error) {
	r := &Registry{patterns: make(map[Kind]*regexp.Regexp, len(defs))}
	for _, d := range defs {
		re, err := regexp.Compile(d.Expr)
		if err != nil {
			return nil, fmt.Errorf("compile %s pattern: %w", d.Kind, err)
		}
		r.patterns[d.Kind] = re
	}
	return r, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns a shared registry built from Definitions on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New()
	})
	return defaultReg
}

// Lookup returns the pattern for kind, if registered.
func (r *Registry) Lookup(kind Kind) (*regexp.Regexp, bool) {
	if r == nil {
		return nil, false
	}
	re, ok := r.patterns[kind]
	return re, ok
}

// Must returns the pattern for kind and panics when it is missing. Extractors
// cannot run without their pattern, so this is not a per-input failure.
func (r *Registry) Must(kind Kind) *regexp.Regexp {
	re, ok := r.Lookup(kind)
	if !ok {
		panic(fmt.Sprintf("pattern: no %q pattern registered", kind))
	}
	return re
}
