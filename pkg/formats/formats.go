// Package formats provides readers for Wavefront OBJ and MTL files.
//
// The OBJ reader does not build meshes itself. It replays the file's
// statements on a geometry.Buffer in file order; the buffer owns the
// object/group hierarchy and the attribute pools.
package formats
