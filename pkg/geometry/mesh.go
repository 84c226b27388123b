package geometry

// Submesh is the triangle index list of one group.
type Submesh struct {
	Indices []uint32
}

// Mesh is an in-memory Surface holding the resolved data of one object.
type Mesh[M any] struct {
	Name      string
	Positions []Vec3
	TexCoords []Vec2 // nil when the buffer had no texture coordinates
	Normals   []Vec3 // nil when the buffer had no normals
	Submeshes []Submesh
	Materials []M
}

// SetName implements Surface.
func (m *Mesh[M]) SetName(name string) { m.Name = name }

// SetPositions implements Surface.
func (m *Mesh[M]) SetPositions(positions []Vec3) { m.Positions = positions }

// SetTexCoords implements Surface.
func (m *Mesh[M]) SetTexCoords(texCoords []Vec2) { m.TexCoords = texCoords }

// SetNormals implements Surface.
func (m *Mesh[M]) SetNormals(normals []Vec3) { m.Normals = normals }

// SetSubmeshCount implements Surface.
func (m *Mesh[M]) SetSubmeshCount(n int) { m.Submeshes = make([]Submesh, n) }

// SetTriangles implements Surface.
func (m *Mesh[M]) SetTriangles(submesh int, indices []uint32) {
	m.Submeshes[submesh].Indices = indices
}

// SetMaterials implements Surface.
func (m *Mesh[M]) SetMaterials(materials []M) { m.Materials = materials }

// TriangleCount returns the number of triangles over all submeshes.
func (m *Mesh[M]) TriangleCount() int {
	n := 0
	for _, s := range m.Submeshes {
		n += len(s.Indices)
	}
	return n / 3
}

// BuildMeshes resolves b into one new Mesh per object.
func BuildMeshes[M any](b *Buffer, materials map[string]M) ([]*Mesh[M], error) {
	meshes := make([]*Mesh[M], b.ObjectCount())
	outputs := make([]Surface[M], len(meshes))
	for i := range meshes {
		meshes[i] = &Mesh[M]{}
		outputs[i] = meshes[i]
	}
	if err := Resolve(b, outputs, materials); err != nil {
		return nil, err
	}
	return meshes, nil
}

// Vertex is an interleaved vertex record ready for GPU upload.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// IndexRange locates one submesh inside a shared index buffer.
type IndexRange struct {
	Submesh    int
	StartIndex int32
	IndexCount int32
}

// Interleave packs the mesh into one vertex array and one index buffer, with
// one IndexRange per submesh so a renderer can issue one draw per material.
// Missing texture coordinates and normals are left zero.
func (m *Mesh[M]) Interleave() ([]Vertex, []uint32, []IndexRange) {
	vertices := make([]Vertex, len(m.Positions))
	for i, p := range m.Positions {
		vertices[i].Position = p
		if i < len(m.Normals) {
			vertices[i].Normal = m.Normals[i]
		}
		if i < len(m.TexCoords) {
			vertices[i].TexCoord = m.TexCoords[i]
		}
	}

	var indices []uint32
	ranges := make([]IndexRange, len(m.Submeshes))
	for i, s := range m.Submeshes {
		ranges[i] = IndexRange{
			Submesh:    i,
			StartIndex: int32(len(indices)),
			IndexCount: int32(len(s.Indices)),
		}
		indices = append(indices, s.Indices...)
	}
	return vertices, indices, ranges
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min Vec3
	Max Vec3
}

// Size returns the box extent along each axis.
func (b Bounds) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Radius returns the radius of the sphere enclosing the box.
func (b Bounds) Radius() float32 {
	return b.Size().Len() / 2
}

// Bounds returns the bounding box of the mesh positions. An empty mesh has a
// zero box.
func (m *Mesh[M]) Bounds() Bounds {
	if len(m.Positions) == 0 {
		return Bounds{}
	}
	bounds := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		for axis := 0; axis < 3; axis++ {
			if p[axis] < bounds.Min[axis] {
				bounds.Min[axis] = p[axis]
			}
			if p[axis] > bounds.Max[axis] {
				bounds.Max[axis] = p[axis]
			}
		}
	}
	return bounds
}
