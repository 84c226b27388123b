// MTL (material library) reader.

package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/objtool/pkg/encoding"
	"github.com/Faultbox/objtool/pkg/geometry"
)

// MTL format errors.
var (
	ErrMalformedMTL      = errors.New("malformed MTL statement")
	ErrMaterialNotOpened = errors.New("material property before newmtl")
)

// Material is one newmtl block of a material library.
type Material struct {
	Name       string
	Ambient    geometry.Vec3 // Ka
	Diffuse    geometry.Vec3 // Kd
	Specular   geometry.Vec3 // Ks
	Shininess  float32       // Ns
	Alpha      float32       // d, or 1 - Tr
	DiffuseMap string        // map_Kd
}

// MTL is a parsed material library.
type MTL struct {
	Materials []Material // In file order
}

// Lookup returns the material with the given name.
// Later definitions win over earlier ones with the same name.
func (m *MTL) Lookup(name string) (*Material, bool) {
	for i := len(m.Materials) - 1; i >= 0; i-- {
		if m.Materials[i].Name == name {
			return &m.Materials[i], true
		}
	}
	return nil, false
}

// LoadMTL reads a material library from disk.
func LoadMTL(path string, enc string) (*MTL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ReadMTL(f, enc)
}

// ParseMTL parses material library data from a byte slice.
func ParseMTL(data []byte, enc string) (*MTL, error) {
	return ReadMTL(bytes.NewReader(data), enc)
}

// ReadMTL parses a material library. Statements other than newmtl, Ka, Kd,
// Ks, Ns, d, Tr and map_Kd are ignored.
func ReadMTL(r io.Reader, enc string) (*MTL, error) {
	mtl := &MTL{}
	var cur *Material

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		keyword, rest := splitKeyword(line)
		if keyword == "newmtl" {
			name, err := encoding.DecodeName(rest, enc)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			if name == "" {
				return nil, fmt.Errorf("line %d: %w: newmtl without name", lineNum, ErrMalformedMTL)
			}
			mtl.Materials = append(mtl.Materials, Material{
				Name:    name,
				Diffuse: geometry.Vec3{1, 1, 1},
				Alpha:   1,
			})
			cur = &mtl.Materials[len(mtl.Materials)-1]
			continue
		}

		if err := readMaterialProperty(cur, keyword, rest); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL: %w", err)
	}
	return mtl, nil
}

func readMaterialProperty(cur *Material, keyword, rest string) error {
	switch keyword {
	case "Ka", "Kd", "Ks", "Ns", "d", "Tr", "map_Kd":
		if cur == nil {
			return fmt.Errorf("%w: %s", ErrMaterialNotOpened, keyword)
		}
	default:
		return nil
	}

	switch keyword {
	case "Ka", "Kd", "Ks":
		c, err := parseColor(rest)
		if err != nil {
			return fmt.Errorf("%s: %w", keyword, err)
		}
		switch keyword {
		case "Ka":
			cur.Ambient = c
		case "Kd":
			cur.Diffuse = c
		default:
			cur.Specular = c
		}
	case "Ns":
		v, err := parseScalar(rest)
		if err != nil {
			return fmt.Errorf("Ns: %w", err)
		}
		cur.Shininess = v
	case "d":
		v, err := parseScalar(rest)
		if err != nil {
			return fmt.Errorf("d: %w", err)
		}
		cur.Alpha = v
	case "Tr":
		v, err := parseScalar(rest)
		if err != nil {
			return fmt.Errorf("Tr: %w", err)
		}
		cur.Alpha = 1 - v
	case "map_Kd":
		// Options such as -s or -o precede the file name, which comes last.
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return fmt.Errorf("%w: map_Kd without file", ErrMalformedMTL)
		}
		cur.DiffuseMap = fields[len(fields)-1]
	}
	return nil
}

// parseColor accepts "r g b" or a single gray value.
func parseColor(s string) (geometry.Vec3, error) {
	fields := strings.Fields(s)
	if len(fields) != 1 && len(fields) != 3 {
		return geometry.Vec3{}, fmt.Errorf("%w: expected 1 or 3 values, got %d", ErrMalformedMTL, len(fields))
	}
	var c geometry.Vec3
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return geometry.Vec3{}, fmt.Errorf("%w: %q", ErrMalformedMTL, f)
		}
		c[i] = float32(v)
	}
	if len(fields) == 1 {
		c[1], c[2] = c[0], c[0]
	}
	return c, nil
}

func parseScalar(s string) (float32, error) {
	fields := strings.Fields(s)
	if len(fields) != 1 {
		return 0, fmt.Errorf("%w: expected 1 value, got %d", ErrMalformedMTL, len(fields))
	}
	v, err := strconv.ParseFloat(fields[0], 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedMTL, fields[0])
	}
	return float32(v), nil
}
