package hxres

import (
	"github.com/pthm/hxres/lib/encoding"
)

// Serializer is an alias for encoding.Serializer for convenience.
type Serializer = encoding.Serializer

// SerializerKind is an alias for encoding.Kind.
type SerializerKind = encoding.Kind

// Serializer kinds declared by formats.
const (
	KindJSON = encoding.KindJSON
	KindHTML = encoding.KindHTML
)
