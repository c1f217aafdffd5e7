package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/biketag/biketag-go/internal/backend"
	"github.com/biketag/biketag-go/internal/biketag"
	"github.com/biketag/biketag-go/internal/client"
)

type fakeSource struct {
	missing  map[int]bool
	failing  map[int]bool
	inFlight int32
	maxSeen  int32
}

func (f *fakeSource) GetTag(_ context.Context, req client.Request) (biketag.Tag, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		prev := atomic.LoadInt32(&f.maxSeen)
		if cur <= prev || atomic.CompareAndSwapInt32(&f.maxSeen, prev, cur) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	opts := req.Normalize("portland")
	if f.missing[opts.TagNumber] {
		return biketag.Tag{}, fmt.Errorf("tag %d: %w", opts.TagNumber, backend.ErrTagNotFound)
	}
	if f.failing[opts.TagNumber] {
		return biketag.Tag{}, errors.New("boom")
	}
	return biketag.Tag{TagNumber: opts.TagNumber, Slug: opts.Slug}, nil
}

func TestRun_SkipsGapsAndSorts(t *testing.T) {
	src := &fakeSource{missing: map[int]bool{3: true}, failing: map[int]bool{5: true}}
	c := &Crawler{Client: src, Parallel: 2}
	got, err := c.Run(context.Background(), 1, 6)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []biketag.Tag{
		{TagNumber: 1, Slug: "portland-tag-1"},
		{TagNumber: 2, Slug: "portland-tag-2"},
		{TagNumber: 4, Slug: "portland-tag-4"},
		{TagNumber: 6, Slug: "portland-tag-6"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("crawl mismatch (-want +got):\n%s", diff)
	}
	if src.maxSeen > 2 {
		t.Fatalf("parallel limit exceeded: %d", src.maxSeen)
	}
}

func TestRun_InvalidRange(t *testing.T) {
	c := &Crawler{Client: &fakeSource{}}
	if _, err := c.Run(context.Background(), 5, 2); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if _, err := c.Run(context.Background(), 0, 2); err == nil {
		t.Fatalf("expected error for zero start")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Crawler{Client: &fakeSource{}, Parallel: 1}
	if _, err := c.Run(ctx, 1, 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestMerge_DedupesKeepsFirstAndNormalizes(t *testing.T) {
	a := []biketag.Tag{
		{TagNumber: 7, Name: "first", DiscussionURL: "https://Reddit.com/r/x?utm_source=share#top"},
		{TagNumber: 2},
		{Name: "no number"},
	}
	b := []biketag.Tag{{TagNumber: 7, Name: "second"}, {TagNumber: 1}}
	want := []biketag.Tag{
		{TagNumber: 1},
		{TagNumber: 2},
		{TagNumber: 7, Name: "first", DiscussionURL: "https://reddit.com/r/x"},
	}
	if diff := cmp.Diff(want, Merge(a, b)); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func geoTags() []biketag.Tag {
	return []biketag.Tag{
		{TagNumber: 1, GPS: &biketag.GeoPoint{Lat: 45.5231, Long: -122.6765}, Hint: "bridge"},
		{TagNumber: 2, GPS: &biketag.GeoPoint{Lat: 45.5300, Long: -122.6765}},
		{TagNumber: 3, GPS: &biketag.GeoPoint{Lat: 47.6062, Long: -122.3321}},
		{TagNumber: 4},
		{TagNumber: 5, GPS: &biketag.GeoPoint{}},
	}
}

func TestNear(t *testing.T) {
	center := biketag.GeoPoint{Lat: 45.5231, Long: -122.6765}
	got := Near(geoTags(), center, 1000)
	var numbers []int
	for _, tag := range got {
		numbers = append(numbers, tag.TagNumber)
	}
	// tag 2 is ~770 m north, tag 3 is in another city
	if diff := cmp.Diff([]int{1, 2}, numbers); diff != "" {
		t.Fatalf("near mismatch (-want +got):\n%s", diff)
	}
	if got := Near(geoTags(), center, 100); len(got) != 1 {
		t.Fatalf("expected only the centre tag within 100m, got %d", len(got))
	}
}

func TestBound(t *testing.T) {
	b, ok := Bound(geoTags())
	if !ok {
		t.Fatalf("expected a bound")
	}
	if b.Min[1] != 45.5231 || b.Max[1] != 47.6062 || b.Min[0] != -122.6765 || b.Max[0] != -122.3321 {
		t.Fatalf("unexpected bound %+v", b)
	}
	if _, ok := Bound([]biketag.Tag{{TagNumber: 1}}); ok {
		t.Fatalf("expected no bound without positions")
	}
}

func TestFeatureCollection(t *testing.T) {
	fc := FeatureCollection(geoTags())
	if len(fc.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(fc.Features))
	}
	b, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != "FeatureCollection" {
		t.Fatalf("type %q", decoded.Type)
	}
	first := decoded.Features[0]
	if diff := cmp.Diff([]float64{-122.6765, 45.5231}, first.Geometry.Coordinates); diff != "" {
		t.Fatalf("coordinates must be lon,lat (-want +got):\n%s", diff)
	}
	if first.Properties["hint"] != "bridge" || first.Properties["tagnumber"] != float64(1) {
		t.Fatalf("unexpected properties %v", first.Properties)
	}
}
