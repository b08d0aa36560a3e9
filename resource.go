package hxres

// Node is a vertex of the hypermedia graph: a single Resource, a
// CollectionResource, or a NullResource.
//
// Nodes are immutable. The update methods are persistent: they return a new
// node with the change applied and leave the receiver untouched, so a graph
// can be shared between goroutines without locking. Updates on a
// NullResource fail with an *UnsupportedOperationError.
type Node interface {
	Type() string
	Attributes() Attributes
	Links() []Link
	Subresources() []Subresource
	Forms() []Form
	Rels() []string

	// Get returns the attribute stored under key.
	Get(key string) (any, bool)
	// SelfLink returns the last link with relation "self".
	SelfLink() (Link, bool)
	// FindForm returns the first form with the given name.
	FindForm(name string) (Form, bool)
	// Seq returns the node as a sequence: itself for a single resource, its
	// members for a collection, nothing for a null resource.
	Seq() []Node
	// Members returns the items of a collection.
	Members() ([]Node, error)

	IsCollection() bool
	IsNull() bool

	MergeAttributes(attrs Attributes) (Node, error)
	AddLink(link Link) (Node, error)
	AddSubresource(rel string, sub Node) (Node, error)
	AddForm(form Form) (Node, error)
	AddRel(rel string) (Node, error)
	WithCollection(members []Node) (Node, error)

	// withRel records an embedding relation without failing on null nodes.
	withRel(rel string) Node
}

// Subresource is a node embedded in a parent under a relation name.
type Subresource struct {
	Rel  string
	Node Node
}

// Resource is a single node of the hypermedia graph.
type Resource struct {
	typ          string
	attributes   Attributes
	links        []Link
	subresources []Subresource
	forms        []Form
	rels         []string
}

var (
	_ Node = Resource{}
	_ Node = CollectionResource{}
	_ Node = NullResource{}
)

// ResourceOption configures NewResource.
type ResourceOption func(*Resource)

// WithType sets the resource type.
func WithType(typ string) ResourceOption {
	return func(r *Resource) { r.typ = typ }
}

// WithAttributes sets the resource attributes.
func WithAttributes(attrs Attributes) ResourceOption {
	return func(r *Resource) { r.attributes = cloneSlice(attrs) }
}

// WithLinks sets the resource links.
func WithLinks(links ...Link) ResourceOption {
	return func(r *Resource) {
		r.links = nil
		for _, l := range links {
			r.links = append(r.links, l.clone())
		}
	}
}

// WithSubresources sets the embedded resources.
func WithSubresources(subs ...Subresource) ResourceOption {
	return func(r *Resource) { r.subresources = cloneSlice(subs) }
}

// WithForms sets the resource forms.
func WithForms(forms ...Form) ResourceOption {
	return func(r *Resource) {
		r.forms = nil
		for _, f := range forms {
			r.forms = append(r.forms, f.clone())
		}
	}
}

// WithRels sets the relations the resource is embedded under.
func WithRels(rels ...string) ResourceOption {
	return func(r *Resource) { r.rels = cloneSlice(rels) }
}

// NewResource creates a resource. With no options the resource is empty and
// untyped.
func NewResource(opts ...ResourceOption) Resource {
	var r Resource
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// The read accessors return copies; writing to them never reaches the node.

func (r Resource) Type() string                { return r.typ }
func (r Resource) Attributes() Attributes      { return cloneSlice(r.attributes) }
func (r Resource) Links() []Link               { return cloneLinks(r.links) }
func (r Resource) Subresources() []Subresource { return cloneSlice(r.subresources) }
func (r Resource) Forms() []Form               { return cloneForms(r.forms) }
func (r Resource) Rels() []string              { return cloneSlice(r.rels) }
func (r Resource) IsCollection() bool          { return false }
func (r Resource) IsNull() bool                { return false }

func (r Resource) Get(key string) (any, bool) {
	return r.attributes.Get(key)
}

func (r Resource) SelfLink() (Link, bool) {
	return selfLink(r.links)
}

func (r Resource) FindForm(name string) (Form, bool) {
	return findForm(r.forms, name)
}

// Seq returns the resource as a collection of one.
func (r Resource) Seq() []Node {
	return []Node{r}
}

func (r Resource) Members() ([]Node, error) {
	return nil, &UnsupportedOperationError{
		Op:     "Members",
		Target: "Resource",
		Detail: "only CollectionResource has members",
	}
}

func (r Resource) MergeAttributes(attrs Attributes) (Node, error) {
	return r.mergeAttributes(attrs), nil
}

func (r Resource) AddLink(link Link) (Node, error) {
	return r.addLink(link), nil
}

func (r Resource) AddSubresource(rel string, sub Node) (Node, error) {
	return r.addSubresource(rel, sub), nil
}

func (r Resource) AddForm(form Form) (Node, error) {
	return r.addForm(form), nil
}

func (r Resource) AddRel(rel string) (Node, error) {
	return r.addRel(rel), nil
}

// WithCollection is a no-op on a single resource; use NewCollectionResource
// to turn a resource into a collection.
func (r Resource) WithCollection([]Node) (Node, error) {
	return r, nil
}

func (r Resource) withRel(rel string) Node { return r.addRel(rel) }

// The unexported updaters work on the value copy held by the receiver and
// always allocate fresh slices, so the original's backing arrays are never
// shared with the result.

func (r Resource) mergeAttributes(attrs Attributes) Resource {
	r.attributes = r.attributes.Merge(attrs)
	return r
}

func (r Resource) addLink(link Link) Resource {
	r.links = appendCopy(r.links, link.clone())
	return r
}

func (r Resource) addSubresource(rel string, sub Node) Resource {
	if sub != nil {
		sub = sub.withRel(rel)
	}
	r.subresources = appendCopy(r.subresources, Subresource{Rel: rel, Node: sub})
	return r
}

func (r Resource) addForm(form Form) Resource {
	r.forms = appendCopy(r.forms, form.clone())
	return r
}

func (r Resource) addRel(rel string) Resource {
	r.rels = appendCopy(r.rels, rel)
	return r
}

func selfLink(links []Link) (Link, bool) {
	for i := len(links) - 1; i >= 0; i-- {
		if links[i].Rel == RelSelf {
			return links[i].clone(), true
		}
	}
	return Link{}, false
}

func findForm(forms []Form, name string) (Form, bool) {
	for _, f := range forms {
		if f.Name == name {
			return f.clone(), true
		}
	}
	return Form{}, false
}

func appendCopy[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

func cloneSlice[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneLinks(links []Link) []Link {
	if len(links) == 0 {
		return nil
	}
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = l.clone()
	}
	return out
}

func cloneForms(forms []Form) []Form {
	if len(forms) == 0 {
		return nil
	}
	out := make([]Form, len(forms))
	for i, f := range forms {
		out[i] = f.clone()
	}
	return out
}
