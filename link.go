package hxres

import "reflect"

// RelSelf is the relation of a resource's canonical link.
const RelSelf = "self"

// Link is a typed relation from a resource to a URI.
//
// URI may be a URI template (RFC 6570), in which case Templated is true.
// Name disambiguates links sharing a relation. Options carries extra fields
// a format may emit verbatim, such as HAL's "type" or "hreflang". A node
// keeps its own copy of the map.
type Link struct {
	Rel       string
	URI       string
	Title     string
	Templated bool
	Name      string
	Options   map[string]any
}

// Equal reports whether two links are structurally identical.
func (l Link) Equal(o Link) bool {
	if l.Rel != o.Rel || l.URI != o.URI || l.Title != o.Title ||
		l.Templated != o.Templated || l.Name != o.Name || len(l.Options) != len(o.Options) {
		return false
	}
	return len(l.Options) == 0 || reflect.DeepEqual(l.Options, o.Options)
}

// clone copies the options map.
func (l Link) clone() Link {
	if l.Options == nil {
		return l
	}
	opts := make(map[string]any, len(l.Options))
	for k, v := range l.Options {
		opts[k] = v
	}
	l.Options = opts
	return l
}
