// Package geometry accumulates Wavefront OBJ geometry while a file is parsed
// and resolves it into per-object render meshes.
//
// A Buffer keeps three global attribute pools (positions, texture coordinates,
// normals) and an Object -> Group -> Face hierarchy. Faces reference each pool
// independently, so resolution flattens every face corner into its own vertex
// record and partitions the result into one index list per group.
package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultName is the name of the implicit initial object and of groups that
// have not been named yet.
const DefaultName = "default"

// Vec3 is a 3D attribute value (position or normal).
type Vec3 = mgl32.Vec3

// Vec2 is a 2D attribute value (texture coordinate).
type Vec2 = mgl32.Vec2

// FaceCorner is one vertex of one face, expressed as independent 0-based
// indices into the position, texture coordinate and normal pools.
// TexCoord and Normal are ignored when the corresponding pool is empty.
type FaceCorner struct {
	Position int
	TexCoord int
	Normal   int
}

type group struct {
	name        string
	named       bool // set once the name came from a directive or a material
	material    string
	hasMaterial bool
	faces       []FaceCorner
}

type object struct {
	name     string
	implicit bool // the initial object created by NewBuffer
	groups   []group
	allFaces []FaceCorner
}

func newObject(name string) object {
	return object{
		name:   name,
		groups: []group{{name: DefaultName}},
	}
}

// Buffer is the accumulation state for one OBJ file.
// It is not safe for concurrent use.
type Buffer struct {
	objects   []object
	positions []Vec3
	texCoords []Vec2
	normals   []Vec3

	// Cursors into objects and objects[curObject].groups.
	curObject int
	curGroup  int
}

// NewBuffer returns a Buffer holding one default object with one default group.
func NewBuffer() *Buffer {
	obj := newObject(DefaultName)
	obj.implicit = true
	return &Buffer{
		objects: []object{obj},
	}
}

func (b *Buffer) current() *object {
	return &b.objects[b.curObject]
}

func (b *Buffer) currentGroup() *group {
	obj := b.current()
	return &obj.groups[b.curGroup]
}

// PushObject starts a new object. The current object is dropped first if no
// face was ever pushed to it.
func (b *Buffer) PushObject(name string) {
	if len(b.current().allFaces) == 0 {
		b.objects = append(b.objects[:b.curObject], b.objects[b.curObject+1:]...)
	}

	b.objects = append(b.objects, newObject(name))
	b.curObject = len(b.objects) - 1
	b.curGroup = 0
}

// PushGroup starts a new, explicitly named group in the current object. The
// current group is dropped first if it has no faces.
func (b *Buffer) PushGroup(name string) {
	obj := b.current()
	if len(obj.groups[b.curGroup].faces) == 0 {
		obj.groups = append(obj.groups[:b.curGroup], obj.groups[b.curGroup+1:]...)
	}

	obj.groups = append(obj.groups, group{name: name, named: true})
	b.curGroup = len(obj.groups) - 1
}

// PushMaterialName assigns a material to the current group. A group that
// already has faces is closed and a new group named after the material is
// started. A group that has not been named yet takes the material's name.
func (b *Buffer) PushMaterialName(name string) {
	if len(b.currentGroup().faces) > 0 {
		b.PushGroup(name)
	}

	g := b.currentGroup()
	if !g.named {
		g.name = name
		g.named = true
	}
	g.material = name
	g.hasMaterial = true
}

// PushVertex appends a position to the position pool.
func (b *Buffer) PushVertex(v Vec3) {
	b.positions = append(b.positions, v)
}

// PushUV appends a texture coordinate to the texture coordinate pool.
func (b *Buffer) PushUV(v Vec2) {
	b.texCoords = append(b.texCoords, v)
}

// PushNormal appends a normal to the normal pool.
func (b *Buffer) PushNormal(v Vec3) {
	b.normals = append(b.normals, v)
}

// PushFace appends a face corner to the current group and the current object.
func (b *Buffer) PushFace(f FaceCorner) {
	g := b.currentGroup()
	g.faces = append(g.faces, f)

	obj := b.current()
	obj.allFaces = append(obj.allFaces, f)
}

// ObjectCount returns the number of objects.
func (b *Buffer) ObjectCount() int {
	return len(b.objects)
}

// IsEmpty reports whether no position was pushed.
func (b *Buffer) IsEmpty() bool {
	return len(b.positions) == 0
}

// HasTexCoords reports whether the texture coordinate pool is non-empty.
func (b *Buffer) HasTexCoords() bool {
	return len(b.texCoords) > 0
}

// HasNormals reports whether the normal pool is non-empty.
func (b *Buffer) HasNormals() bool {
	return len(b.normals) > 0
}

// VertexCount returns the size of the position pool.
func (b *Buffer) VertexCount() int {
	return len(b.positions)
}

// TexCoordCount returns the size of the texture coordinate pool.
func (b *Buffer) TexCoordCount() int {
	return len(b.texCoords)
}

// NormalCount returns the size of the normal pool.
func (b *Buffer) NormalCount() int {
	return len(b.normals)
}

// GroupInfo describes one group of an object.
type GroupInfo struct {
	Name        string
	Material    string
	HasMaterial bool
	FaceCount   int
}

// ObjectInfo describes one object and its groups.
type ObjectInfo struct {
	Name      string
	FaceCount int
	Groups    []GroupInfo
}

// Objects returns a snapshot of the hierarchy in object order.
func (b *Buffer) Objects() []ObjectInfo {
	infos := make([]ObjectInfo, len(b.objects))
	for i := range b.objects {
		obj := &b.objects[i]
		info := ObjectInfo{
			Name:      obj.name,
			FaceCount: len(obj.allFaces),
			Groups:    make([]GroupInfo, len(obj.groups)),
		}
		for j, g := range obj.groups {
			info.Groups[j] = GroupInfo{
				Name:        g.name,
				Material:    g.material,
				HasMaterial: g.hasMaterial,
				FaceCount:   len(g.faces),
			}
		}
		infos[i] = info
	}
	return infos
}

// MaterialNames returns every material name referenced by a group, in first
// use order and without duplicates. Groups without a material contribute "".
func (b *Buffer) MaterialNames() []string {
	seen := make(map[string]bool)
	var names []string
	for i := range b.objects {
		for _, g := range b.objects[i].groups {
			if seen[g.material] {
				continue
			}
			seen[g.material] = true
			names = append(names, g.material)
		}
	}
	return names
}
