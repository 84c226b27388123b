// Package scene is the host side of model resolution: it owns the output
// containers and the material registry that a geometry.Buffer resolves into.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/objtool/internal/config"
	"github.com/Faultbox/objtool/internal/logger"
	"github.com/Faultbox/objtool/pkg/formats"
	"github.com/Faultbox/objtool/pkg/geometry"
)

// Material is a material resource bound to submeshes.
type Material struct {
	ID          uuid.UUID
	Name        string
	Diffuse     geometry.Vec3
	Alpha       float32
	Texture     string
	Placeholder bool // Created for a name no library defined
}

// Library maps material names to material resources.
type Library struct {
	materials map[string]*Material
	order     []string
}

// NewLibrary returns an empty Library.
func NewLibrary() *Library {
	return &Library{materials: make(map[string]*Material)}
}

// Register adds or replaces a material from a parsed material library.
func (l *Library) Register(m formats.Material) *Material {
	mat := &Material{
		ID:      uuid.New(),
		Name:    m.Name,
		Diffuse: m.Diffuse,
		Alpha:   m.Alpha,
		Texture: m.DiffuseMap,
	}
	if _, ok := l.materials[m.Name]; !ok {
		l.order = append(l.order, m.Name)
	}
	l.materials[m.Name] = mat
	return mat
}

// Ensure returns the material for name, creating a white placeholder if the
// name is unknown.
func (l *Library) Ensure(name string) *Material {
	if mat, ok := l.materials[name]; ok {
		return mat
	}
	mat := &Material{
		ID:          uuid.New(),
		Name:        name,
		Diffuse:     geometry.Vec3{1, 1, 1},
		Alpha:       1,
		Placeholder: true,
	}
	l.materials[name] = mat
	l.order = append(l.order, name)
	return mat
}

// Get returns the material registered under name.
func (l *Library) Get(name string) (*Material, bool) {
	mat, ok := l.materials[name]
	return mat, ok
}

// Len returns the number of registered materials.
func (l *Library) Len() int {
	return len(l.materials)
}

// Materials returns the registered materials in registration order.
func (l *Library) Materials() []*Material {
	out := make([]*Material, len(l.order))
	for i, name := range l.order {
		out[i] = l.materials[name]
	}
	return out
}

// Node is one output container, created per buffer object.
type Node struct {
	ID   uuid.UUID
	Name string
	Mesh *geometry.Mesh[*Material]
}

// Scene holds the resolved nodes of one model.
type Scene struct {
	Nodes     []*Node
	Materials *Library
}

// surface adapts a Node to geometry.Surface so the display name lands on the
// node while the mesh receives the geometry.
type surface struct {
	*geometry.Mesh[*Material]
	node *Node
}

func (s surface) SetName(name string) {
	s.node.Name = name
	s.Mesh.SetName(name)
}

// Build creates one node per object of buf, in object order, and resolves
// buf into them. With registerMissing every referenced material name that lib
// does not define gets a placeholder first.
func Build(buf *geometry.Buffer, lib *Library, registerMissing bool) (*Scene, error) {
	log := logger.Named("scene")

	if registerMissing {
		for _, name := range buf.MaterialNames() {
			if _, ok := lib.Get(name); !ok {
				lib.Ensure(name)
				log.Debug("registered placeholder material", zap.String("material", name))
			}
		}
	}

	sc := &Scene{
		Nodes:     make([]*Node, buf.ObjectCount()),
		Materials: lib,
	}
	outputs := make([]geometry.Surface[*Material], len(sc.Nodes))
	for i := range sc.Nodes {
		node := &Node{
			ID:   uuid.New(),
			Name: fmt.Sprintf("node%d", i),
			Mesh: &geometry.Mesh[*Material]{},
		}
		sc.Nodes[i] = node
		outputs[i] = surface{Mesh: node.Mesh, node: node}
	}

	materials := make(map[string]*Material, lib.Len())
	for name, mat := range lib.materials {
		materials[name] = mat
	}

	if err := geometry.Resolve(buf, outputs, materials); err != nil {
		return nil, fmt.Errorf("resolving model: %w", err)
	}

	for _, node := range sc.Nodes {
		log.Debug("resolved node",
			zap.String("node", node.Name),
			zap.Int("vertices", len(node.Mesh.Positions)),
			zap.Int("submeshes", len(node.Mesh.Submeshes)))
	}
	return sc, nil
}

// LoadFile reads an .obj file and the material libraries it references,
// then builds its scene. Material libraries that cannot be opened are
// logged and skipped; the placeholder policy in cfg decides what happens to
// the names they would have defined.
func LoadFile(path string, cfg config.ModelConfig) (*Scene, *geometry.Buffer, error) {
	log := logger.Named("scene")

	buf := geometry.NewBuffer()
	info, err := formats.LoadOBJ(path, buf, formats.OBJOptions{Encoding: cfg.Encoding})
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	log.Debug("read model",
		zap.String("path", path),
		zap.Int("lines", info.Lines),
		zap.Int("triangles", info.Triangles),
		zap.Int("skipped", info.Skipped))

	lib := NewLibrary()
	dir := filepath.Dir(path)
	for _, name := range info.MaterialLibraries {
		mtlPath := filepath.Join(dir, name)
		mtl, err := formats.LoadMTL(mtlPath, cfg.Encoding)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Warn("material library not found", zap.String("path", mtlPath))
				continue
			}
			return nil, nil, fmt.Errorf("reading %s: %w", mtlPath, err)
		}
		for _, m := range mtl.Materials {
			lib.Register(m)
		}
	}

	sc, err := Build(buf, lib, cfg.RegisterMissingMaterials)
	if err != nil {
		return nil, buf, err
	}
	return sc, buf, nil
}
