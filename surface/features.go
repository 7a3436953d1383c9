package surface

import "math"

// Property names used to mark features. They are read by the simplifier.
const (
	VertexFeatureProperty = "v:feature"
	EdgeFeatureProperty   = "e:feature"
	SelectedProperty      = "v:selected"
)

func (m *Mesh) featureProperties() (*Property[Vertex, bool], *Property[Edge, bool]) {
	return VertexProperty(m, VertexFeatureProperty, false), EdgeProperty(m, EdgeFeatureProperty, false)
}

// ClearFeatures unmarks all feature vertices and edges.
func (m *Mesh) ClearFeatures() {
	vfeature, efeature := m.featureProperties()
	vfeature.Fill(false)
	efeature.Fill(false)
}

// DetectBoundaryFeatures marks border vertices and edges as features.
// Returns the number of feature edges found.
func (m *Mesh) DetectBoundaryFeatures() int {
	vfeature, efeature := m.featureProperties()
	for _, v := range m.Vertices() {
		if m.IsBorderVertex(v) {
			vfeature.data[v] = true
		}
	}
	n := 0
	for _, e := range m.Edges() {
		if m.IsBorderEdge(e) {
			efeature.data[e] = true
			n++
		}
	}
	return n
}

// DetectAngleFeatures marks edges whose dihedral angle exceeds angle (degrees) as features.
// Returns the number of feature edges found.
func (m *Mesh) DetectAngleFeatures(angle float64) int {
	vfeature, efeature := m.featureProperties()
	featureCosine := math.Cos(angle / 180.0 * math.Pi)
	n := 0
	for _, e := range m.Edges() {
		if m.IsBorderEdge(e) {
			continue
		}
		n0 := m.ComputeFaceNormal(m.EdgeFace(e, 0))
		n1 := m.ComputeFaceNormal(m.EdgeFace(e, 1))
		if n0.Dot(n1) < featureCosine {
			efeature.data[e] = true
			vfeature.data[m.EdgeVertex(e, 0)] = true
			vfeature.data[m.EdgeVertex(e, 1)] = true
			n++
		}
	}
	return n
}
