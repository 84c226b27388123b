package geometry

import (
	"fmt"
	"strings"
)

// Summary is a structural overview of a Buffer, used for diagnostics.
type Summary struct {
	Objects   []ObjectInfo
	Vertices  int
	TexCoords int
	Normals   int
}

// Summary returns the current counts of b. It does not modify b.
func (b *Buffer) Summary() Summary {
	return Summary{
		Objects:   b.Objects(),
		Vertices:  len(b.positions),
		TexCoords: len(b.texCoords),
		Normals:   len(b.normals),
	}
}

// Lines renders the summary one statement per line.
func (s Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("OBJ has %d object(s)", len(s.Objects)),
		fmt.Sprintf("OBJ has %d vertice(s)", s.Vertices),
		fmt.Sprintf("OBJ has %d uv(s)", s.TexCoords),
		fmt.Sprintf("OBJ has %d normal(s)", s.Normals),
	}
	for _, obj := range s.Objects {
		lines = append(lines, fmt.Sprintf("%s has %d group(s)", obj.Name, len(obj.Groups)))
		for _, g := range obj.Groups {
			lines = append(lines, fmt.Sprintf("%s/%s has %d face(s)", obj.Name, g.Name, g.FaceCount))
		}
	}
	return lines
}

// String implements fmt.Stringer.
func (s Summary) String() string {
	return strings.Join(s.Lines(), "\n")
}
