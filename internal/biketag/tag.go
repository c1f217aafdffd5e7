package biketag

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// GeoPoint is a GPS position as written in tag posts. Alt is always zero for
// coordinates recovered from text because posts never carry altitude.
type GeoPoint struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
	Alt  float64 `json:"alt"`
}

// IsZero reports whether every axis is zero.
func (p GeoPoint) IsZero() bool {
	return p.Lat == 0 && p.Long == 0 && p.Alt == 0
}

// Point converts to an orb point. orb uses [lon, lat] order.
func (p GeoPoint) Point() orb.Point {
	return orb.Point{p.Long, p.Lat}
}

// Tag is the structured record rebuilt from a backend's raw posts. Every field
// is optional; a missing field never invalidates another.
type Tag struct {
	TagNumber       int       `json:"tagnumber,omitempty"`
	Slug            string    `json:"slug,omitempty"`
	Game            string    `json:"game,omitempty"`
	Name            string    `json:"name,omitempty"`
	MysteryPlayer   string    `json:"mysteryPlayer,omitempty"`
	FoundPlayer     string    `json:"foundPlayer,omitempty"`
	FoundLocation   string    `json:"foundLocation,omitempty"`
	Hint            string    `json:"hint,omitempty"`
	GPS             *GeoPoint `json:"gps,omitempty"`
	MysteryImageURL string    `json:"mysteryImageUrl,omitempty"`
	FoundImageURL   string    `json:"foundImageUrl,omitempty"`
	DiscussionURL   string    `json:"discussionUrl,omitempty"`
	ImageHash       string    `json:"imageHash,omitempty"`
	AlbumID         string    `json:"albumId,omitempty"`
}

// Field names used for projection. They match the JSON keys of Tag.
const (
	FieldTagNumber       = "tagnumber"
	FieldSlug            = "slug"
	FieldGame            = "game"
	FieldName            = "name"
	FieldMysteryPlayer   = "mysteryPlayer"
	FieldFoundPlayer     = "foundPlayer"
	FieldFoundLocation   = "foundLocation"
	FieldHint            = "hint"
	FieldGPS             = "gps"
	FieldMysteryImageURL = "mysteryImageUrl"
	FieldFoundImageURL   = "foundImageUrl"
	FieldDiscussionURL   = "discussionUrl"
	FieldImageHash       = "imageHash"
	FieldAlbumID         = "albumId"
)

// DefaultFields is the projection used when a request names no fields.
var DefaultFields = []string{
	FieldTagNumber,
	FieldSlug,
	FieldGame,
	FieldName,
	FieldMysteryPlayer,
	FieldFoundPlayer,
	FieldFoundLocation,
	FieldHint,
	FieldGPS,
	FieldMysteryImageURL,
	FieldFoundImageURL,
	FieldDiscussionURL,
}

// Slug builds the identifier a tag record is stored under: "<game>-tag-<n>",
// or "tag-<n>" when no game is given.
func Slug(number int, game string) string {
	game = strings.ToLower(strings.TrimSpace(game))
	if game == "" {
		return fmt.Sprintf("tag-%d", number)
	}
	return fmt.Sprintf("%s-tag-%d", game, number)
}

// Project returns a copy of t keeping only the named fields. An empty field
// list keeps everything.
func Project(t Tag, fields []string) Tag {
	if len(fields) == 0 {
		return t
	}
	keep := make(map[string]bool, len(fields))
	for _, f := range fields {
		keep[strings.TrimSpace(f)] = true
	}
	var out Tag
	if keep[FieldTagNumber] {
		out.TagNumber = t.TagNumber
	}
	if keep[FieldSlug] {
		out.Slug = t.Slug
	}
	if keep[FieldGame] {
		out.Game = t.Game
	}
	if keep[FieldName] {
		out.Name = t.Name
	}
	if keep[FieldMysteryPlayer] {
		out.MysteryPlayer = t.MysteryPlayer
	}
	if keep[FieldFoundPlayer] {
		out.FoundPlayer = t.FoundPlayer
	}
	if keep[FieldFoundLocation] {
		out.FoundLocation = t.FoundLocation
	}
	if keep[FieldHint] {
		out.Hint = t.Hint
	}
	if keep[FieldGPS] {
		out.GPS = t.GPS
	}
	if keep[FieldMysteryImageURL] {
		out.MysteryImageURL = t.MysteryImageURL
	}
	if keep[FieldFoundImageURL] {
		out.FoundImageURL = t.FoundImageURL
	}
	if keep[FieldDiscussionURL] {
		out.DiscussionURL = t.DiscussionURL
	}
	if keep[FieldImageHash] {
		out.ImageHash = t.ImageHash
	}
	if keep[FieldAlbumID] {
		out.AlbumID = t.AlbumID
	}
	return out
}
