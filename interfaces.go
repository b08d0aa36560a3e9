package hxres

// ResourceMapper turns a domain value into a Node.
//
// *Mapper and *CollectionMapper are the implementations shipped with the
// package; a custom mapper only needs to honor two rules: a nil value maps
// to a NullResource, and sub-mapping passes ctx on with the mapper itself
// pushed onto ctx.MapperStack.
type ResourceMapper interface {
	Map(obj any, ctx Context) (Node, error)
	// Name returns the resource type the mapper produces.
	Name(p Policy) string
}

// Renderer turns a resource graph into a format-specific primitive tree.
//
// A renderer must render a NullResource as an empty representation and
// branch on IsCollection for collections. Renderers are created per runner
// by a Format's New factory and are not shared between requests.
//
// Example:
//
//	func (r *Renderer) Serialize(node hxres.Node) (any, error) {
//	    if node.IsNull() {
//	        return primitive.Map{}, nil
//	    }
//	    ...
//	}
type Renderer interface {
	Serialize(node Node) (any, error)
}

// Primitivizer is implemented by renderers whose output needs a custom
// reduction before serialization. Renderers without it get the default
// reduction for their serializer kind.
type Primitivizer interface {
	Primitivize(v any) (any, error)
}

// Spec is one declarative rule of a Mapper: an attribute, a link, an
// association or a form. Apply receives the node built so far and returns
// the updated node.
//
// Custom rules are added with Mapper.Use and run with the group named by
// Kind.
type Spec interface {
	Kind() SpecKind
	Apply(node Node, m *Mapping) (Node, error)
}

// SpecKind orders the rule groups of a mapper. Groups are applied in the
// order declared here.
type SpecKind int

const (
	AttributeSpecs SpecKind = iota
	LinkSpecs
	AssociationSpecs
	FormSpecs
)

func (k SpecKind) String() string {
	switch k {
	case AttributeSpecs:
		return "attribute"
	case LinkSpecs:
		return "link"
	case AssociationSpecs:
		return "association"
	case FormSpecs:
		return "form"
	}
	return "unknown"
}
