package crawl

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"github.com/biketag/biketag-go/internal/biketag"
)

// Near keeps the tags whose GPS position lies within meters of center,
// ordered as given. Tags without a position are dropped.
func Near(tags []biketag.Tag, center biketag.GeoPoint, meters float64) []biketag.Tag {
	c := center.Point()
	out := make([]biketag.Tag, 0, len(tags))
	for _, t := range tags {
		if t.GPS == nil || t.GPS.IsZero() {
			continue
		}
		if geo.Distance(c, t.GPS.Point()) <= meters {
			out = append(out, t)
		}
	}
	return out
}

// Bound returns the bounding box of every tag with a position, and false when
// none has one.
func Bound(tags []biketag.Tag) (orb.Bound, bool) {
	var mp orb.MultiPoint
	for _, t := range tags {
		if t.GPS != nil && !t.GPS.IsZero() {
			mp = append(mp, t.GPS.Point())
		}
	}
	if len(mp) == 0 {
		return orb.Bound{}, false
	}
	return mp.Bound(), true
}

// FeatureCollection exports tags with a position as GeoJSON points.
func FeatureCollection(tags []biketag.Tag) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range tags {
		if t.GPS == nil || t.GPS.IsZero() {
			continue
		}
		f := geojson.NewFeature(t.GPS.Point())
		f.ID = t.TagNumber
		f.Properties[biketag.FieldTagNumber] = t.TagNumber
		setIf(f.Properties, biketag.FieldSlug, t.Slug)
		setIf(f.Properties, biketag.FieldMysteryPlayer, t.MysteryPlayer)
		setIf(f.Properties, biketag.FieldFoundPlayer, t.FoundPlayer)
		setIf(f.Properties, biketag.FieldFoundLocation, t.FoundLocation)
		setIf(f.Properties, biketag.FieldHint, t.Hint)
		setIf(f.Properties, biketag.FieldDiscussionURL, t.DiscussionURL)
		setIf(f.Properties, biketag.FieldMysteryImageURL, t.MysteryImageURL)
		fc.Append(f)
	}
	return fc
}

func setIf(p geojson.Properties, key, value string) {
	if value != "" {
		p[key] = value
	}
}
