package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/Faultbox/objtool/internal/config"
	"github.com/Faultbox/objtool/pkg/formats"
	"github.com/Faultbox/objtool/pkg/geometry"
)

const crateOBJ = `mtllib crate.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
o crate
usemtl wood
f 1 2 3
usemtl metal
f 1 3 4
o lid
usemtl wood
f 1 2 3 4
`

const crateMTL = `newmtl wood
Kd 0.6 0.4 0.2
map_Kd wood.png
`

func writeModel(t *testing.T, withMTL bool) string {
	t.Helper()
	dir := t.TempDir()
	objPath := filepath.Join(dir, "crate.obj")
	if err := os.WriteFile(objPath, []byte(crateOBJ), 0644); err != nil {
		t.Fatalf("failed to write obj: %v", err)
	}
	if withMTL {
		if err := os.WriteFile(filepath.Join(dir, "crate.mtl"), []byte(crateMTL), 0644); err != nil {
			t.Fatalf("failed to write mtl: %v", err)
		}
	}
	return objPath
}

func TestLoadFile(t *testing.T) {
	sc, buf, err := LoadFile(writeModel(t, true), config.ModelConfig{RegisterMissingMaterials: true})
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if len(sc.Nodes) != buf.ObjectCount() || len(sc.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(sc.Nodes))
	}

	crate := sc.Nodes[0]
	if crate.Name != "crate" || crate.Mesh.Name != "crate" {
		t.Errorf("node name = %q / %q, want crate", crate.Name, crate.Mesh.Name)
	}
	if len(crate.Mesh.Submeshes) != 2 {
		t.Fatalf("expected 2 submeshes, got %d", len(crate.Mesh.Submeshes))
	}
	wood := crate.Mesh.Materials[0]
	metal := crate.Mesh.Materials[1]
	if wood.Name != "wood" || wood.Placeholder || wood.Texture != "wood.png" {
		t.Errorf("wood = %+v", wood)
	}
	if metal.Name != "metal" || !metal.Placeholder {
		t.Errorf("metal = %+v", metal)
	}

	lid := sc.Nodes[1]
	if len(lid.Mesh.Positions) != 6 {
		t.Errorf("lid vertices = %d, want 6", len(lid.Mesh.Positions))
	}
	if lid.Mesh.Materials[0] != wood {
		t.Error("lid and crate should share the wood material")
	}

	if sc.Nodes[0].ID == sc.Nodes[1].ID || sc.Nodes[0].ID == uuid.Nil {
		t.Error("nodes need distinct IDs")
	}
}

func TestLoadFile_StrictMaterials(t *testing.T) {
	_, _, err := LoadFile(writeModel(t, true), config.ModelConfig{})
	if !errors.Is(err, geometry.ErrMissingMaterial) {
		t.Errorf("expected ErrMissingMaterial, got %v", err)
	}
}

func TestLoadFile_MissingLibrary(t *testing.T) {
	sc, _, err := LoadFile(writeModel(t, false), config.ModelConfig{RegisterMissingMaterials: true})
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	for _, m := range sc.Materials.Materials() {
		if !m.Placeholder {
			t.Errorf("material %q should be a placeholder", m.Name)
		}
	}
	if sc.Materials.Len() != 2 {
		t.Errorf("expected 2 materials, got %d", sc.Materials.Len())
	}
}

func TestBuild_DefaultObjectKeepsNodeName(t *testing.T) {
	buf := geometry.NewBuffer()
	buf.PushVertex(geometry.Vec3{})
	for i := 0; i < 3; i++ {
		buf.PushFace(geometry.FaceCorner{})
	}

	sc, err := Build(buf, NewLibrary(), true)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if sc.Nodes[0].Name != "node0" {
		t.Errorf("node name = %q, want node0", sc.Nodes[0].Name)
	}
	// The unnamed group resolves the empty material name.
	if sc.Nodes[0].Mesh.Materials[0].Name != "" {
		t.Errorf("material = %q, want empty name", sc.Nodes[0].Mesh.Materials[0].Name)
	}
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary()
	first := lib.Register(formats.Material{Name: "red", Alpha: 1})
	lib.Ensure("blue")
	second := lib.Register(formats.Material{Name: "red", Alpha: 0.5})

	if first.ID == second.ID {
		t.Error("re-registered material should get a new ID")
	}
	got, ok := lib.Get("red")
	if !ok || got.Alpha != 0.5 {
		t.Errorf("Get(red) = %+v, %v", got, ok)
	}
	if lib.Ensure("red") != got {
		t.Error("Ensure should return the registered material")
	}

	mats := lib.Materials()
	if len(mats) != 2 || mats[0].Name != "red" || mats[1].Name != "blue" {
		t.Errorf("Materials() = %+v", mats)
	}
}
