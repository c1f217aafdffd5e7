package cache

// Namespace separates cache entries of different extractors that share one
// store. Each value ends with ':' so keys read as "<namespace>:<input>".
type Namespace string

const (
	SlugText         Namespace = "slug:"
	TagNumberText    Namespace = "tagnumbers:"
	CreditText       Namespace = "credit:"
	LocationText     Namespace = "location:"
	HintText         Namespace = "hint:"
	GPSLocationText  Namespace = "gps:"
	AlbumIDText      Namespace = "albumid:"
	MentionText      Namespace = "mentions:"
	ImagesText       Namespace = "images:"
	DiscussionText   Namespace = "discussion:"
	ImageHashText    Namespace = "imagehash:"
	CMSImageHashText Namespace = "cmsimagehash:"
	RoleText         Namespace = "roles:"
)

// Key builds the cache key for an extractor namespace and its exact input.
func Key(ns Namespace, input string) string {
	return string(ns) + input
}
