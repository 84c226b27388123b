package geometry

import (
	"errors"
	"reflect"
	"testing"
)

// recordingSurface counts every call it receives.
type recordingSurface struct {
	Mesh[string]
	calls int
}

func (r *recordingSurface) SetName(name string)            { r.calls++; r.Mesh.SetName(name) }
func (r *recordingSurface) SetPositions(p []Vec3)          { r.calls++; r.Mesh.SetPositions(p) }
func (r *recordingSurface) SetTexCoords(t []Vec2)          { r.calls++; r.Mesh.SetTexCoords(t) }
func (r *recordingSurface) SetNormals(n []Vec3)            { r.calls++; r.Mesh.SetNormals(n) }
func (r *recordingSurface) SetSubmeshCount(n int)          { r.calls++; r.Mesh.SetSubmeshCount(n) }
func (r *recordingSurface) SetTriangles(s int, i []uint32) { r.calls++; r.Mesh.SetTriangles(s, i) }
func (r *recordingSurface) SetMaterials(m []string)        { r.calls++; r.Mesh.SetMaterials(m) }

func newRecorders(n int) ([]*recordingSurface, []Surface[string]) {
	recs := make([]*recordingSurface, n)
	outs := make([]Surface[string], n)
	for i := range recs {
		recs[i] = &recordingSurface{}
		outs[i] = recs[i]
	}
	return recs, outs
}

var testMaterials = map[string]string{
	"":      "none",
	"red":   "mat:red",
	"green": "mat:green",
	"blue":  "mat:blue",
}

// buildScene returns a buffer with two objects: "box" with three material
// groups of 6, 3 and 9 corners and "plane" with one group of 6 corners.
func buildScene() *Buffer {
	b := NewBuffer()
	for i := 0; i < 8; i++ {
		f := float32(i)
		b.PushVertex(Vec3{f, f * 2, f * 3})
		b.PushUV(Vec2{f / 10, 1 - f/10})
	}
	b.PushNormal(Vec3{0, 1, 0})
	b.PushNormal(Vec3{0, -1, 0})

	corner := func(p, t, n int) FaceCorner { return FaceCorner{Position: p, TexCoord: t, Normal: n} }

	b.PushObject("box")
	b.PushMaterialName("red")
	for _, p := range []int{0, 1, 2, 2, 3, 0} {
		b.PushFace(corner(p, 7-p, 0))
	}
	b.PushMaterialName("green")
	for _, p := range []int{4, 5, 6} {
		b.PushFace(corner(p, p, 1))
	}
	b.PushMaterialName("blue")
	for _, p := range []int{0, 4, 7, 7, 3, 0, 1, 5, 6} {
		b.PushFace(corner(p, p, p%2))
	}

	b.PushObject("plane")
	b.PushMaterialName("red")
	for _, p := range []int{4, 5, 6, 6, 7, 4} {
		b.PushFace(corner(p, p, 0))
	}
	return b
}

func TestResolve_Flattening(t *testing.T) {
	b := buildScene()
	meshes, err := BuildMeshes(b, testMaterials)
	if err != nil {
		t.Fatalf("BuildMeshes failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}

	for i, obj := range b.objects {
		m := meshes[i]
		f := len(obj.allFaces)
		if len(m.Positions) != f || len(m.TexCoords) != f || len(m.Normals) != f {
			t.Fatalf("%s: got %d/%d/%d entries, want %d", obj.name, len(m.Positions), len(m.TexCoords), len(m.Normals), f)
		}
		for k, fc := range obj.allFaces {
			if m.Positions[k] != b.positions[fc.Position] {
				t.Errorf("%s: position[%d] = %v, want %v", obj.name, k, m.Positions[k], b.positions[fc.Position])
			}
			if m.TexCoords[k] != b.texCoords[fc.TexCoord] {
				t.Errorf("%s: texcoord[%d] = %v, want %v", obj.name, k, m.TexCoords[k], b.texCoords[fc.TexCoord])
			}
			if m.Normals[k] != b.normals[fc.Normal] {
				t.Errorf("%s: normal[%d] = %v, want %v", obj.name, k, m.Normals[k], b.normals[fc.Normal])
			}
		}
	}
}

func TestResolve_NoWelding(t *testing.T) {
	b := NewBuffer()
	b.PushVertex(Vec3{1, 1, 1})
	for i := 0; i < 6; i++ {
		b.PushFace(FaceCorner{})
	}

	meshes, err := BuildMeshes(b, testMaterials)
	if err != nil {
		t.Fatalf("BuildMeshes failed: %v", err)
	}
	if len(meshes[0].Positions) != 6 {
		t.Errorf("expected 6 vertex records for 6 identical corners, got %d", len(meshes[0].Positions))
	}
}

func TestResolve_SubmeshPartition(t *testing.T) {
	b := buildScene()
	meshes, err := BuildMeshes(b, testMaterials)
	if err != nil {
		t.Fatalf("BuildMeshes failed: %v", err)
	}

	box := meshes[0]
	if len(box.Submeshes) != 3 {
		t.Fatalf("expected 3 submeshes, got %d", len(box.Submeshes))
	}

	next := uint32(0)
	for j, s := range box.Submeshes {
		for _, idx := range s.Indices {
			if idx != next {
				t.Fatalf("submesh %d: index %d, want %d", j, idx, next)
			}
			next++
		}
	}
	if int(next) != len(box.Positions) {
		t.Errorf("submeshes cover [0,%d), want [0,%d)", next, len(box.Positions))
	}

	wantCounts := []int{6, 3, 9}
	for j, want := range wantCounts {
		if got := len(box.Submeshes[j].Indices); got != want {
			t.Errorf("submesh %d: %d indices, want %d", j, got, want)
		}
	}

	wantMats := []string{"mat:red", "mat:green", "mat:blue"}
	if !reflect.DeepEqual(box.Materials, wantMats) {
		t.Errorf("materials = %v, want %v", box.Materials, wantMats)
	}
}

func TestResolve_SingleGroupIdentity(t *testing.T) {
	b := buildScene()
	meshes, err := BuildMeshes(b, testMaterials)
	if err != nil {
		t.Fatalf("BuildMeshes failed: %v", err)
	}

	plane := meshes[1]
	if len(plane.Submeshes) != 1 {
		t.Fatalf("expected 1 submesh, got %d", len(plane.Submeshes))
	}
	want := []uint32{0, 1, 2, 3, 4, 5}
	if !reflect.DeepEqual(plane.Submeshes[0].Indices, want) {
		t.Errorf("indices = %v, want %v", plane.Submeshes[0].Indices, want)
	}
	if !reflect.DeepEqual(plane.Materials, []string{"mat:red"}) {
		t.Errorf("materials = %v, want [mat:red]", plane.Materials)
	}
}

func TestResolve_Names(t *testing.T) {
	b := NewBuffer()
	b.PushVertex(Vec3{})
	for i := 0; i < 3; i++ {
		b.PushFace(FaceCorner{})
	}
	b.PushObject(DefaultName)
	for i := 0; i < 3; i++ {
		b.PushFace(FaceCorner{})
	}

	recs, outs := newRecorders(2)
	recs[0].Name = "host"
	recs[1].Name = "host"
	if err := Resolve(b, outs, testMaterials); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if recs[0].Name != "host" {
		t.Errorf("implicit object renamed surface to %q", recs[0].Name)
	}
	if recs[1].Name != DefaultName {
		t.Errorf("explicit object name not applied, got %q", recs[1].Name)
	}
}

func TestResolve_OptionalAttributes(t *testing.T) {
	b := NewBuffer()
	b.PushVertex(Vec3{1, 0, 0})
	b.PushVertex(Vec3{0, 1, 0})
	b.PushVertex(Vec3{0, 0, 1})
	// Texcoord and normal indices are meaningless without pools.
	b.PushFace(FaceCorner{Position: 0, TexCoord: 42, Normal: -1})
	b.PushFace(FaceCorner{Position: 1, TexCoord: 42, Normal: -1})
	b.PushFace(FaceCorner{Position: 2, TexCoord: 42, Normal: -1})

	recs, outs := newRecorders(1)
	if err := Resolve(b, outs, testMaterials); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	m := recs[0].Mesh
	if len(m.Positions) != 3 {
		t.Errorf("expected 3 positions, got %d", len(m.Positions))
	}
	if m.TexCoords != nil || m.Normals != nil {
		t.Errorf("expected no texcoords/normals, got %v / %v", m.TexCoords, m.Normals)
	}
	if !reflect.DeepEqual(m.Materials, []string{"none"}) {
		t.Errorf("materials = %v, want [none]", m.Materials)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	b := buildScene()
	first, err := BuildMeshes(b, testMaterials)
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	second, err := BuildMeshes(b, testMaterials)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("resolving twice produced different meshes")
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name     string
		buffer   func() *Buffer
		surfaces int
		mats     map[string]string
		wantErr  error
	}{
		{
			name:     "too few surfaces",
			buffer:   buildScene,
			surfaces: 1,
			mats:     testMaterials,
			wantErr:  ErrSurfaceCountMismatch,
		},
		{
			name:     "too many surfaces",
			buffer:   buildScene,
			surfaces: 3,
			mats:     testMaterials,
			wantErr:  ErrSurfaceCountMismatch,
		},
		{
			name:     "missing material",
			buffer:   buildScene,
			surfaces: 2,
			mats:     map[string]string{"red": "r", "green": "g"},
			wantErr:  ErrMissingMaterial,
		},
		{
			name: "position out of range",
			buffer: func() *Buffer {
				b := buildScene()
				b.PushFace(FaceCorner{Position: 8})
				return b
			},
			surfaces: 2,
			mats:     testMaterials,
			wantErr:  ErrIndexOutOfRange,
		},
		{
			name: "negative normal",
			buffer: func() *Buffer {
				b := buildScene()
				b.PushFace(FaceCorner{Normal: -1})
				return b
			},
			surfaces: 2,
			mats:     testMaterials,
			wantErr:  ErrIndexOutOfRange,
		},
		{
			name: "texcoord out of range",
			buffer: func() *Buffer {
				b := buildScene()
				b.PushFace(FaceCorner{TexCoord: 100})
				return b
			},
			surfaces: 2,
			mats:     testMaterials,
			wantErr:  ErrIndexOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, outs := newRecorders(tt.surfaces)
			err := Resolve(tt.buffer(), outs, tt.mats)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			for i, r := range recs {
				if r.calls != 0 {
					t.Errorf("surface %d received %d writes after failed resolve", i, r.calls)
				}
			}
		})
	}
}
