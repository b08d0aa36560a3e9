package hxres

const nullTarget = "NullResource"

// NullResource stands for "nothing to render", such as the result of mapping
// a nil value. It has no type, attributes, links, subresources or forms, and
// every update fails with an *UnsupportedOperationError.
type NullResource struct {
	collection bool
}

// NewNullResource returns a null single resource.
func NewNullResource() NullResource {
	return NullResource{}
}

// NewNullCollection returns a null resource that reports itself as a
// collection, used when an absent has-many association is mapped.
func NewNullCollection() NullResource {
	return NullResource{collection: true}
}

func (NullResource) Type() string                 { return "" }
func (NullResource) Attributes() Attributes       { return nil }
func (NullResource) Links() []Link                { return nil }
func (NullResource) Subresources() []Subresource  { return nil }
func (NullResource) Forms() []Form                { return nil }
func (NullResource) Rels() []string               { return nil }
func (NullResource) Get(string) (any, bool)       { return nil, false }
func (NullResource) SelfLink() (Link, bool)       { return Link{}, false }
func (NullResource) FindForm(string) (Form, bool) { return Form{}, false }
func (NullResource) Seq() []Node                  { return nil }
func (NullResource) IsNull() bool                 { return true }
func (n NullResource) IsCollection() bool         { return n.collection }

func (n NullResource) Members() ([]Node, error) {
	if n.collection {
		return nil, nil
	}
	return nil, unsupported("Members", nullTarget)
}

func (NullResource) MergeAttributes(Attributes) (Node, error) {
	return nil, unsupported("MergeAttributes", nullTarget)
}

func (NullResource) AddLink(Link) (Node, error) {
	return nil, unsupported("AddLink", nullTarget)
}

func (NullResource) AddSubresource(string, Node) (Node, error) {
	return nil, unsupported("AddSubresource", nullTarget)
}

func (NullResource) AddForm(Form) (Node, error) {
	return nil, unsupported("AddForm", nullTarget)
}

func (NullResource) AddRel(string) (Node, error) {
	return nil, unsupported("AddRel", nullTarget)
}

func (NullResource) WithCollection([]Node) (Node, error) {
	return nil, unsupported("WithCollection", nullTarget)
}

// withRel leaves a null node untouched: the relation is still recorded on
// the parent's Subresource entry.
func (n NullResource) withRel(string) Node { return n }
