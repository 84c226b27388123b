// OBJ (Wavefront object) reader that feeds a geometry.Buffer.

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

// OBJ format errors.
var (
	ErrMalformedOBJ = errors.New("malformed OBJ statement")
	ErrInvalidIndex = errors.New("invalid OBJ index")
)

// OBJOptions controls how an OBJ file is read.
type OBJOptions struct {
	// Encoding of object, group and material names. Empty means UTF-8.
	Encoding string
}

// OBJInfo describes what was read from an OBJ file.
type OBJInfo struct {
	MaterialLibraries []string // mtllib references in file order
	Lines             int      // Lines read
	Triangles         int      // Triangles pushed after fan triangulation
	Skipped           int      // Statements that carry no geometry for the buffer (s, l, p, ...)
}

// LoadOBJ reads an OBJ file from disk into b.
func LoadOBJ(path string, b *geometry.Buffer, opts OBJOptions) (*OBJInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ReadOBJ(f, b, opts)
}

// ParseOBJ reads OBJ data from a byte slice into b.
func ParseOBJ(data []byte, b *geometry.Buffer, opts OBJOptions) (*OBJInfo, error) {
	return ReadOBJ(bytes.NewReader(data), b, opts)
}

// ReadOBJ reads OBJ statements from r and replays them on b in file order.
// Polygons are fan triangulated; each triangle corner becomes one PushFace.
func ReadOBJ(r io.Reader, b *geometry.Buffer, opts OBJOptions) (*OBJInfo, error) {
	if _, err := encoding.Lookup(opts.Encoding); err != nil {
		return nil, err
	}

	info := &OBJInfo{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		info.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		keyword, rest := splitKeyword(line)
		if err := readStatement(b, info, opts, keyword, rest); err != nil {
			return nil, fmt.Errorf("line %d: %w", info.Lines, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}
	return info, nil
}

func readStatement(b *geometry.Buffer, info *OBJInfo, opts OBJOptions, keyword, rest string) error {
	switch keyword {
	case "v":
		v, err := parseFloats(rest, 3, 4)
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		b.PushVertex(geometry.Vec3{v[0], v[1], v[2]})

	case "vt":
		v, err := parseFloats(rest, 1, 3)
		if err != nil {
			return fmt.Errorf("texcoord: %w", err)
		}
		uv := geometry.Vec2{v[0], 0}
		if len(v) > 1 {
			uv[1] = v[1]
		}
		b.PushUV(uv)

	case "vn":
		v, err := parseFloats(rest, 3, 3)
		if err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		b.PushNormal(geometry.Vec3{v[0], v[1], v[2]})

	case "f":
		return readFace(b, info, rest)

	case "o":
		name, err := decodeName(rest, opts.Encoding)
		if err != nil {
			return err
		}
		b.PushObject(name)

	case "g":
		name, err := decodeName(rest, opts.Encoding)
		if err != nil {
			return err
		}
		b.PushGroup(name)

	case "usemtl":
		name, err := decodeName(rest, opts.Encoding)
		if err != nil {
			return err
		}
		b.PushMaterialName(name)

	case "mtllib":
		info.MaterialLibraries = append(info.MaterialLibraries, strings.Fields(rest)...)

	default:
		info.Skipped++
	}
	return nil
}

// readFace parses "f" corners and pushes a triangle fan.
func readFace(b *geometry.Buffer, info *OBJInfo, rest string) error {
	fields := strings.Fields(rest)
	if len(fields) < 3 {
		return fmt.Errorf("%w: face with %d corners", ErrMalformedOBJ, len(fields))
	}

	corners := make([]geometry.FaceCorner, len(fields))
	for i, field := range fields {
		c, err := parseCorner(b, field)
		if err != nil {
			return err
		}
		corners[i] = c
	}

	for i := 1; i+1 < len(corners); i++ {
		b.PushFace(corners[0])
		b.PushFace(corners[i])
		b.PushFace(corners[i+1])
		info.Triangles++
	}
	return nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". Absent parts map
// to index 0, which is ignored when the matching pool is empty.
func parseCorner(b *geometry.Buffer, field string) (geometry.FaceCorner, error) {
	parts := strings.Split(field, "/")
	if len(parts) > 3 || parts[0] == "" {
		return geometry.FaceCorner{}, fmt.Errorf("%w: corner %q", ErrMalformedOBJ, field)
	}

	var c geometry.FaceCorner
	var err error
	if c.Position, err = resolveIndex(parts[0], b.VertexCount()); err != nil {
		return c, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.TexCoord, err = resolveIndex(parts[1], b.TexCoordCount()); err != nil {
			return c, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.Normal, err = resolveIndex(parts[2], b.NormalCount()); err != nil {
			return c, err
		}
	}
	return c, nil
}

// resolveIndex converts a 1-based or negative (relative to the current pool
// size) OBJ index into a 0-based pool index. Range checks against the final
// pools happen at resolve time.
func resolveIndex(s string, poolSize int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, s)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		if poolSize+n < 0 {
			return 0, fmt.Errorf("%w: relative index %d with %d elements", ErrInvalidIndex, n, poolSize)
		}
		return poolSize + n, nil
	default:
		return 0, fmt.Errorf("%w: index 0", ErrInvalidIndex)
	}
}

func parseFloats(s string, lo, hi int) ([]float32, error) {
	fields := strings.Fields(s)
	if len(fields) < lo || len(fields) > hi {
		return nil, fmt.Errorf("%w: expected %d to %d values, got %d", ErrMalformedOBJ, lo, hi, len(fields))
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedOBJ, f)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func decodeName(rest, enc string) (string, error) {
	name := strings.TrimSpace(rest)
	if name == "" {
		return geometry.DefaultName, nil
	}
	return encoding.DecodeName(name, enc)
}

// splitKeyword splits a statement into its keyword and the remainder.
func splitKeyword(line string) (string, string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}
