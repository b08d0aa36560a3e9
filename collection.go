package hxres

// CollectionResource is a resource holding an ordered list of member nodes.
// It carries the same fields as Resource; those describe the collection
// itself (its type, self link, forms).
type CollectionResource struct {
	Resource
	members []Node
}

// NewCollectionResource creates a collection from a base resource and its
// members.
func NewCollectionResource(base Resource, members ...Node) CollectionResource {
	return CollectionResource{Resource: base, members: cloneSlice(members)}
}

func (c CollectionResource) IsCollection() bool { return true }

// Seq returns the collection members.
func (c CollectionResource) Seq() []Node {
	return cloneSlice(c.members)
}

func (c CollectionResource) Members() ([]Node, error) {
	return cloneSlice(c.members), nil
}

func (c CollectionResource) MergeAttributes(attrs Attributes) (Node, error) {
	c.Resource = c.Resource.mergeAttributes(attrs)
	return c, nil
}

func (c CollectionResource) AddLink(link Link) (Node, error) {
	c.Resource = c.Resource.addLink(link)
	return c, nil
}

func (c CollectionResource) AddSubresource(rel string, sub Node) (Node, error) {
	c.Resource = c.Resource.addSubresource(rel, sub)
	return c, nil
}

func (c CollectionResource) AddForm(form Form) (Node, error) {
	c.Resource = c.Resource.addForm(form)
	return c, nil
}

func (c CollectionResource) AddRel(rel string) (Node, error) {
	c.Resource = c.Resource.addRel(rel)
	return c, nil
}

// WithCollection replaces the members.
func (c CollectionResource) WithCollection(members []Node) (Node, error) {
	c.members = cloneSlice(members)
	return c, nil
}

func (c CollectionResource) withRel(rel string) Node {
	c.Resource = c.Resource.addRel(rel)
	return c
}
