package surface

// Property is a named array attached to one kind of mesh element.
// It grows and shrinks with the mesh and is compacted by CollectGarbage.
type Property[H ~int, T any] struct {
	name string
	def  T
	data []T
}

func (p *Property[H, T]) Name() string { return p.name }

func (p *Property[H, T]) Get(h H) T { return p.data[h] }

func (p *Property[H, T]) Set(h H, v T) { p.data[h] = v }

// Ptr returns pointer to the element value. It is invalidated when the mesh grows.
func (p *Property[H, T]) Ptr(h H) *T { return &p.data[h] }

// Data returns the underlying array.
func (p *Property[H, T]) Data() []T { return p.data }

// Fill sets all elements to v.
func (p *Property[H, T]) Fill(v T) {
	for i := range p.data {
		p.data[i] = v
	}
}

func (p *Property[H, T]) propertyName() string { return p.name }

func (p *Property[H, T]) resize(n int) {
	if n <= len(p.data) {
		var zero T
		for i := n; i < len(p.data); i++ {
			p.data[i] = zero
		}
		p.data = p.data[:n]
		return
	}
	for len(p.data) < n {
		p.data = append(p.data, p.def)
	}
}

func (p *Property[H, T]) swap(i, j int) {
	p.data[i], p.data[j] = p.data[j], p.data[i]
}

type propertyArray interface {
	propertyName() string
	resize(n int)
	swap(i, j int)
}

type propertyContainer struct {
	props []propertyArray
	size  int
}

func (c *propertyContainer) find(name string) propertyArray {
	for _, p := range c.props {
		if p.propertyName() == name {
			return p
		}
	}
	return nil
}

func (c *propertyContainer) remove(name string) bool {
	for i, p := range c.props {
		if p.propertyName() == name {
			c.props = append(c.props[:i], c.props[i+1:]...)
			return true
		}
	}
	return false
}

func (c *propertyContainer) names() []string {
	var names []string
	for _, p := range c.props {
		names = append(names, p.propertyName())
	}
	return names
}

func (c *propertyContainer) resize(n int) {
	c.size = n
	for _, p := range c.props {
		p.resize(n)
	}
}

func (c *propertyContainer) pushBack() {
	c.resize(c.size + 1)
}

func (c *propertyContainer) swap(i, j int) {
	for _, p := range c.props {
		p.swap(i, j)
	}
}

func addProperty[H ~int, T any](c *propertyContainer, name string, def T) *Property[H, T] {
	if c.find(name) != nil {
		return nil
	}
	p := &Property[H, T]{name: name, def: def}
	p.resize(c.size)
	c.props = append(c.props, p)
	return p
}

func getProperty[H ~int, T any](c *propertyContainer, name string) *Property[H, T] {
	p, _ := c.find(name).(*Property[H, T])
	return p
}

func getOrAddProperty[H ~int, T any](c *propertyContainer, name string, def T) *Property[H, T] {
	if p := getProperty[H, T](c, name); p != nil {
		return p
	}
	return addProperty[H, T](c, name, def)
}

// AddVertexProperty adds a new vertex property. Returns nil if the name is already used.
func AddVertexProperty[T any](m *Mesh, name string, def T) *Property[Vertex, T] {
	return addProperty[Vertex, T](&m.vprops, name, def)
}

// GetVertexProperty returns nil if no vertex property of type T has the name.
func GetVertexProperty[T any](m *Mesh, name string) *Property[Vertex, T] {
	return getProperty[Vertex, T](&m.vprops, name)
}

// VertexProperty returns the named vertex property, adding it if it does not exist.
// Returns nil if the name is used by a property of another type.
func VertexProperty[T any](m *Mesh, name string, def T) *Property[Vertex, T] {
	return getOrAddProperty[Vertex, T](&m.vprops, name, def)
}

func AddHalfedgeProperty[T any](m *Mesh, name string, def T) *Property[Halfedge, T] {
	return addProperty[Halfedge, T](&m.hprops, name, def)
}

func GetHalfedgeProperty[T any](m *Mesh, name string) *Property[Halfedge, T] {
	return getProperty[Halfedge, T](&m.hprops, name)
}

func HalfedgeProperty[T any](m *Mesh, name string, def T) *Property[Halfedge, T] {
	return getOrAddProperty[Halfedge, T](&m.hprops, name, def)
}

func AddEdgeProperty[T any](m *Mesh, name string, def T) *Property[Edge, T] {
	return addProperty[Edge, T](&m.eprops, name, def)
}

func GetEdgeProperty[T any](m *Mesh, name string) *Property[Edge, T] {
	return getProperty[Edge, T](&m.eprops, name)
}

func EdgeProperty[T any](m *Mesh, name string, def T) *Property[Edge, T] {
	return getOrAddProperty[Edge, T](&m.eprops, name, def)
}

func AddFaceProperty[T any](m *Mesh, name string, def T) *Property[Face, T] {
	return addProperty[Face, T](&m.fprops, name, def)
}

func GetFaceProperty[T any](m *Mesh, name string) *Property[Face, T] {
	return getProperty[Face, T](&m.fprops, name)
}

func FaceProperty[T any](m *Mesh, name string, def T) *Property[Face, T] {
	return getOrAddProperty[Face, T](&m.fprops, name, def)
}

func (m *Mesh) RemoveVertexProperty(name string) bool   { return m.vprops.remove(name) }
func (m *Mesh) RemoveHalfedgeProperty(name string) bool { return m.hprops.remove(name) }
func (m *Mesh) RemoveEdgeProperty(name string) bool     { return m.eprops.remove(name) }
func (m *Mesh) RemoveFaceProperty(name string) bool     { return m.fprops.remove(name) }

func (m *Mesh) HasVertexProperty(name string) bool { return m.vprops.find(name) != nil }
func (m *Mesh) HasEdgeProperty(name string) bool   { return m.eprops.find(name) != nil }
func (m *Mesh) HasFaceProperty(name string) bool   { return m.fprops.find(name) != nil }

// VertexPropertyNames returns names of all vertex properties including the built-in ones.
func (m *Mesh) VertexPropertyNames() []string { return m.vprops.names() }
func (m *Mesh) EdgePropertyNames() []string   { return m.eprops.names() }
func (m *Mesh) FacePropertyNames() []string   { return m.fprops.names() }

type propertyKind int

const (
	vertexKind propertyKind = iota
	halfedgeKind
	edgeKind
	faceKind
)

// PropertyScope tracks properties created for a single operation and removes them on Release.
//
//	scope := surface.NewPropertyScope(mesh)
//	defer scope.Release()
//	prio := surface.ScopedVertexProperty(scope, "v:prio", 0.0)
type PropertyScope struct {
	mesh  *Mesh
	added []scopedProperty
}

type scopedProperty struct {
	kind propertyKind
	name string
}

func NewPropertyScope(m *Mesh) *PropertyScope {
	return &PropertyScope{mesh: m}
}

func (s *PropertyScope) track(kind propertyKind, name string) {
	s.added = append(s.added, scopedProperty{kind: kind, name: name})
}

// Release removes every property added through the scope. Safe to call more than once.
func (s *PropertyScope) Release() {
	for i := len(s.added) - 1; i >= 0; i-- {
		p := s.added[i]
		switch p.kind {
		case vertexKind:
			s.mesh.RemoveVertexProperty(p.name)
		case halfedgeKind:
			s.mesh.RemoveHalfedgeProperty(p.name)
		case edgeKind:
			s.mesh.RemoveEdgeProperty(p.name)
		case faceKind:
			s.mesh.RemoveFaceProperty(p.name)
		}
	}
	s.added = nil
}

// ScopedVertexProperty returns the existing vertex property of the name, or adds a new one
// which will be removed by s.Release().
func ScopedVertexProperty[T any](s *PropertyScope, name string, def T) *Property[Vertex, T] {
	if p := GetVertexProperty[T](s.mesh, name); p != nil {
		return p
	}
	p := AddVertexProperty(s.mesh, name, def)
	if p != nil {
		s.track(vertexKind, name)
	}
	return p
}

func ScopedHalfedgeProperty[T any](s *PropertyScope, name string, def T) *Property[Halfedge, T] {
	if p := GetHalfedgeProperty[T](s.mesh, name); p != nil {
		return p
	}
	p := AddHalfedgeProperty(s.mesh, name, def)
	if p != nil {
		s.track(halfedgeKind, name)
	}
	return p
}

func ScopedEdgeProperty[T any](s *PropertyScope, name string, def T) *Property[Edge, T] {
	if p := GetEdgeProperty[T](s.mesh, name); p != nil {
		return p
	}
	p := AddEdgeProperty(s.mesh, name, def)
	if p != nil {
		s.track(edgeKind, name)
	}
	return p
}

func ScopedFaceProperty[T any](s *PropertyScope, name string, def T) *Property[Face, T] {
	if p := GetFaceProperty[T](s.mesh, name); p != nil {
		return p
	}
	p := AddFaceProperty(s.mesh, name, def)
	if p != nil {
		s.track(faceKind, name)
	}
	return p
}
