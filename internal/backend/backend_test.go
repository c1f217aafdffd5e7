package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biketag/biketag-go/internal/biketag"
	"github.com/biketag/biketag-go/internal/cache"
	"github.com/biketag/biketag-go/internal/extract"
	"github.com/biketag/biketag-go/internal/fetch"
)

var albumPosts = []Post{
	{
		ID:          "Myst042",
		Title:       "(45.5231, -122.6765, 0) {https://reddit.com/r/CyclingPortland/comments/x1}",
		Description: "#42 tag (hint: under the bridge) by Dana",
		Link:        "https://i.imgur.com/Myst042.jpg",
	},
	{
		ID:          "Proof42",
		Title:       "(45.5200, -122.6800, 0)",
		Description: "#42 proof found at (Park Blocks) by Jo",
		Link:        "https://imgur.com/Proof42",
	},
	{
		ID:          "Myst043",
		Title:       " ",
		Description: "#43 tag ) by Jo",
		Link:        "https://i.imgur.com/Myst043.png",
	},
}

func TestMapAlbum_RebuildsTagFromPosts(t *testing.T) {
	e := extract.New(nil, nil)
	got, ok := mapAlbum(e, albumPosts, 42)
	require.True(t, ok)

	assert.Equal(t, 42, got.TagNumber)
	assert.Equal(t, "Dana", got.MysteryPlayer)
	assert.Equal(t, "under the bridge", got.Hint)
	assert.Equal(t, "Jo", got.FoundPlayer)
	assert.Equal(t, "Park Blocks", got.FoundLocation)
	assert.Equal(t, "https://i.imgur.com/Myst042.jpg", got.MysteryImageURL)
	assert.Equal(t, "https://i.imgur.com/Proof42.jpg", got.FoundImageURL)
	assert.Equal(t, "https://reddit.com/r/CyclingPortland/comments/x1", got.DiscussionURL)
	assert.Equal(t, "Myst042", got.ImageHash)
	require.NotNil(t, got.GPS)
	assert.Equal(t, biketag.GeoPoint{Lat: 45.52, Long: -122.68}, *got.GPS)

	_, ok = mapAlbum(e, albumPosts, 99)
	assert.False(t, ok)
}

func TestMapAlbum_MysteryOnly(t *testing.T) {
	got, ok := mapAlbum(extract.New(nil, nil), albumPosts, 43)
	require.True(t, ok)
	assert.Equal(t, "Jo", got.MysteryPlayer)
	assert.Empty(t, got.FoundPlayer)
	assert.Nil(t, got.GPS)
	assert.Empty(t, got.DiscussionURL)
}

func TestMapAlbum_RoleComesFromWordAfterNumber(t *testing.T) {
	posts := []Post{
		{ID: "mmmmm", Description: "#5 tag (hint: proof is in the pudding) by Bob", Link: "https://i.imgur.com/mmmmm.jpg"},
		{ID: "fffff", Description: "#5 proofby Sam", Link: "https://i.imgur.com/fffff.jpg"},
	}
	got, ok := mapAlbum(extract.New(nil, nil), posts, 5)
	require.True(t, ok)
	assert.Equal(t, "Bob", got.MysteryPlayer)
	assert.Equal(t, "proof is in the pudding", got.Hint)
	assert.Equal(t, "https://i.imgur.com/mmmmm.jpg", got.MysteryImageURL)
	assert.Equal(t, "Sam", got.FoundPlayer)
	assert.Equal(t, "https://i.imgur.com/fffff.jpg", got.FoundImageURL)

	// a mystery image alone is never taken as the proof
	got, ok = mapAlbum(extract.New(nil, nil), posts[:1], 5)
	require.True(t, ok)
	assert.Equal(t, "Bob", got.MysteryPlayer)
	assert.Empty(t, got.FoundPlayer)
	assert.Empty(t, got.FoundImageURL)
}

func TestImgur_GetTag(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(imgurAlbumResponse{Data: albumPosts, Success: true, Status: 200})
	}))
	defer srv.Close()

	im := &Imgur{
		ClientID: "cid",
		Album:    "https://imgur.com/a/Alb123",
		BaseURL:  srv.URL,
		Fetch:    &fetch.Client{HTTPClient: srv.Client(), MaxAttempts: 1},
	}
	tag, err := im.GetTag(context.Background(), Options{Slug: "portland-tag-42", Game: "portland"})
	require.NoError(t, err)
	assert.Equal(t, "Client-ID cid", gotAuth)
	assert.Equal(t, "/album/Alb123/images", gotPath)
	assert.Equal(t, 42, tag.TagNumber)
	assert.Equal(t, "portland-tag-42", tag.Slug)
	assert.Equal(t, "portland", tag.Game)
	assert.Equal(t, "Alb123", tag.AlbumID)

	_, err = im.GetTag(context.Background(), Options{TagNumber: 7})
	assert.True(t, errors.Is(err, ErrTagNotFound))
}

func TestImgur_ProjectsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(imgurAlbumResponse{Data: albumPosts, Success: true})
	}))
	defer srv.Close()

	im := &Imgur{AccessToken: "tok", Album: "Alb123", BaseURL: srv.URL, Fetch: &fetch.Client{MaxAttempts: 1}}
	tag, err := im.GetTag(context.Background(), Options{TagNumber: 42, Fields: []string{biketag.FieldTagNumber, biketag.FieldHint}})
	require.NoError(t, err)
	assert.Equal(t, biketag.Tag{TagNumber: 42, Hint: "under the bridge"}, tag)
}

func TestBikeTagAPI_GetTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tags/portland-tag-42" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"status":200,"data":{
			"slug":"portland-tag-42","game":"portland","mysteryPlayer":"Dana",
			"title":"(45.5231, -122.6765, 0) {https://reddit.com/r/x}",
			"mysteryImageUrl":"https://i.imgur.com/Myst042.jpg"}}`))
	}))
	defer srv.Close()

	api := &BikeTagAPI{BaseURL: srv.URL, AccessToken: "secret", Fetch: &fetch.Client{MaxAttempts: 1}}
	tag, err := api.GetTag(context.Background(), Options{Slug: "portland-tag-42"})
	require.NoError(t, err)
	assert.Equal(t, 42, tag.TagNumber)
	assert.Equal(t, "Dana", tag.MysteryPlayer)
	assert.Equal(t, "https://reddit.com/r/x", tag.DiscussionURL)
	assert.Equal(t, "Myst042", tag.ImageHash)
	require.NotNil(t, tag.GPS)
	assert.InDelta(t, 45.5231, tag.GPS.Lat, 1e-9)

	_, err = api.GetTag(context.Background(), Options{Slug: "portland-tag-9"})
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestSanity_GetTag(t *testing.T) {
	var gotQuery, gotSlug string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2021-06-07/data/query/production", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		gotSlug = r.URL.Query().Get("$slug")
		w.Header().Set("Content-Type", "application/json")
		if gotSlug != `"portland-tag-42"` {
			_, _ = w.Write([]byte(`{"ms":1,"result":null}`))
			return
		}
		_, _ = w.Write([]byte(`{"ms":1,"result":{"_id":"abc","tagnumber":42,"slug":"portland-tag-42",
			"foundPlayer":"Jo","gps":{"lat":45.5,"lng":-122.6,"alt":0},
			"mysteryImage":"https://cdn.sanity.io/images/proj1/production/0a1b2c3d-1024x768.jpg"}}`))
	}))
	defer srv.Close()

	s := &Sanity{ProjectID: "proj1", BaseURL: srv.URL, Fetch: &fetch.Client{MaxAttempts: 1}}
	tag, err := s.GetTag(context.Background(), Options{Slug: "portland-tag-42"})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, `slug.current == $slug`)
	assert.Equal(t, "Jo", tag.FoundPlayer)
	assert.Equal(t, "0a1b2c3d", tag.ImageHash)
	assert.Equal(t, &biketag.GeoPoint{Lat: 45.5, Long: -122.6}, tag.GPS)

	_, err = s.GetTag(context.Background(), Options{Slug: "portland-tag-1"})
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestSanity_QueryProjection(t *testing.T) {
	s := &Sanity{}
	q := s.Query([]string{biketag.FieldTagNumber, biketag.FieldImageHash})
	assert.Equal(t, `*[_type == "tag" && slug.current == $slug][0]{_id, tagnumber, "mysteryImage": mysteryImage.asset->url}`, q)
	assert.Contains(t, s.Query(nil), `"foundPlayer": foundPlayer->name`)
}

func writePosts(t *testing.T, posts []Post) string {
	t.Helper()
	b, err := json.Marshal(posts)
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(p, b, 0o644))
	return p
}

func TestFile_GetTagAndNumbers(t *testing.T) {
	memo := &cache.Counting{Inner: cache.NewMemory()}
	f := &File{Path: writePosts(t, albumPosts), Extract: extract.New(nil, memo)}

	tag, err := f.GetTag(context.Background(), Options{TagNumber: 42})
	require.NoError(t, err)
	assert.Equal(t, "Dana", tag.MysteryPlayer)
	assert.Equal(t, "tag-42", tag.Slug)

	nums, err := f.TagNumbers()
	require.NoError(t, err)
	assert.Equal(t, []int{42, 43}, nums)

	hits, _ := memo.Stats()
	assert.Greater(t, hits, 0, "second pass over the same posts should hit the memo cache")

	_, err = f.GetTag(context.Background(), Options{TagNumber: 5})
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestFile_EmptyPath(t *testing.T) {
	_, err := (&File{}).GetTag(context.Background(), Options{TagNumber: 1})
	require.Error(t, err)
}
