package geometry

import "fmt"

// Surface is a host-owned output container that receives the resolved data of
// one object. M is the host's material handle type.
type Surface[M any] interface {
	SetName(name string)
	SetPositions(positions []Vec3)
	SetTexCoords(texCoords []Vec2)
	SetNormals(normals []Vec3)
	SetSubmeshCount(n int)
	SetTriangles(submesh int, indices []uint32)
	SetMaterials(materials []M)
}

// Resolve writes every object of b into the surface at the same position in
// outputs, binding group materials through the materials map.
//
// The whole buffer is validated before the first write: a surface count that
// differs from ObjectCount, a face corner index outside its pool or a group
// material missing from materials aborts the call and leaves every surface
// untouched. Groups that never received a material look up "".
func Resolve[M any](b *Buffer, outputs []Surface[M], materials map[string]M) error {
	if len(outputs) != len(b.objects) {
		return fmt.Errorf("%w: %d surfaces for %d objects", ErrSurfaceCountMismatch, len(outputs), len(b.objects))
	}

	bound := make([][]M, len(b.objects))
	for i := range b.objects {
		obj := &b.objects[i]
		if err := b.checkIndices(obj); err != nil {
			return err
		}
		mats, err := bindMaterials(obj, materials)
		if err != nil {
			return err
		}
		bound[i] = mats
	}

	for i := range b.objects {
		resolveObject(b, &b.objects[i], outputs[i], bound[i])
	}
	return nil
}

// resolveObject flattens obj into out. Every face corner becomes its own
// vertex record, so allFaces[k] maps to vertex k.
func resolveObject[M any](b *Buffer, obj *object, out Surface[M], mats []M) {
	if !obj.implicit {
		out.SetName(obj.name)
	}

	hasUV := b.HasTexCoords()
	hasNormals := b.HasNormals()

	n := len(obj.allFaces)
	positions := make([]Vec3, n)
	var texCoords []Vec2
	var normals []Vec3
	if hasUV {
		texCoords = make([]Vec2, n)
	}
	if hasNormals {
		normals = make([]Vec3, n)
	}

	for k, f := range obj.allFaces {
		positions[k] = b.positions[f.Position]
		if hasUV {
			texCoords[k] = b.texCoords[f.TexCoord]
		}
		if hasNormals {
			normals[k] = b.normals[f.Normal]
		}
	}

	out.SetPositions(positions)
	if hasUV {
		out.SetTexCoords(texCoords)
	}
	if hasNormals {
		out.SetNormals(normals)
	}

	// allFaces is the concatenation of the group face lists in group order,
	// so group j owns the contiguous range starting at the running cursor.
	out.SetSubmeshCount(len(obj.groups))
	c := 0
	for j, g := range obj.groups {
		out.SetTriangles(j, indexRange(c, len(g.faces)))
		c += len(g.faces)
	}
	out.SetMaterials(mats)
}

func indexRange(start, count int) []uint32 {
	indices := make([]uint32, count)
	for i := range indices {
		indices[i] = uint32(start + i)
	}
	return indices
}

func (b *Buffer) checkIndices(obj *object) error {
	hasUV := b.HasTexCoords()
	hasNormals := b.HasNormals()

	for k, f := range obj.allFaces {
		if f.Position < 0 || f.Position >= len(b.positions) {
			return indexError(obj, k, "position", f.Position, len(b.positions))
		}
		if hasUV && (f.TexCoord < 0 || f.TexCoord >= len(b.texCoords)) {
			return indexError(obj, k, "texcoord", f.TexCoord, len(b.texCoords))
		}
		if hasNormals && (f.Normal < 0 || f.Normal >= len(b.normals)) {
			return indexError(obj, k, "normal", f.Normal, len(b.normals))
		}
	}
	return nil
}

func indexError(obj *object, corner int, attr string, index, size int) error {
	return fmt.Errorf("%w: object %q corner %d: %s index %d, pool size %d",
		ErrIndexOutOfRange, obj.name, corner, attr, index, size)
}

func bindMaterials[M any](obj *object, materials map[string]M) ([]M, error) {
	mats := make([]M, len(obj.groups))
	for j, g := range obj.groups {
		m, ok := materials[g.material]
		if !ok {
			return nil, fmt.Errorf("%w: %q (object %q, group %q)", ErrMissingMaterial, g.material, obj.name, g.name)
		}
		mats[j] = m
	}
	return mats, nil
}
