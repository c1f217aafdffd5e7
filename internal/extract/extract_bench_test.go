package extract

import (
	"testing"

	"github.com/biketag/biketag-go/internal/cache"
)

const benchText = "#42 tag (hint: under the bridge) by Dana Kim\n(45.5231, -122.6765, 0) {https://reddit.com/r/CyclingPortland/comments/x1} https://imgur.com/abc123"

func BenchmarkRunAll_NoCache(b *testing.B) {
	e := newTestExtractor()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = runAll(e, benchText)
	}
}

func BenchmarkRunAll_MemoryCache(b *testing.B) {
	e := newTestExtractor().WithCache(cache.NewMemory())
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = runAll(e, benchText)
	}
}

func BenchmarkPlainText_HTML(b *testing.B) {
	in := "<html><body><p>#42 proof found at (Park Blocks) by Jo</p><p><a href=\"https://imgur.com/abc123\">photo</a></p></body></html>"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = PlainText(in)
	}
}
