package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
)

var (
	ErrPLYHeader = errors.New("invalid PLY header")
	ErrPLYFace   = errors.New("invalid PLY face")
)

// plyProperty is one property line of an element in the header
type plyProperty struct {
	Name      string
	Type      string // Scalar type, empty for lists
	IsList    bool
	CountType string // Type of the list length
	ItemType  string // Type of each list entry
}

type plyElement struct {
	Name  string
	Count int
	Props []plyProperty
}

type plyHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Elements []plyElement
}

// PLYMesh is an indexed triangle mesh read from a PLY file
type PLYMesh struct {
	Vertices  []core.Vec3
	TexCoords []core.Vec2 // Per vertex; empty when the file has none
	Faces     []int       // Three vertex indices per triangle
}

// TriangleCount returns the number of triangles after fan triangulation
func (m *PLYMesh) TriangleCount() int {
	return len(m.Faces) / 3
}

// Soup expands the indexed mesh into three vertices per triangle, the layout
// scene.SetGeometry takes
func (m *PLYMesh) Soup() []core.Vec3 {
	soup := make([]core.Vec3, 0, len(m.Faces))
	for _, idx := range m.Faces {
		soup = append(soup, m.Vertices[idx])
	}
	return soup
}

// Triangles builds one triangle per face, carrying texture coordinates
// when the file has them
func (m *PLYMesh) Triangles(material int) []geometry.Triangle {
	tris := make([]geometry.Triangle, 0, m.TriangleCount())
	hasUV := len(m.TexCoords) == len(m.Vertices)
	for f := 0; f+2 < len(m.Faces); f += 3 {
		a, b, c := m.Faces[f], m.Faces[f+1], m.Faces[f+2]
		if hasUV {
			tris = append(tris, geometry.NewTriangleWithUV(m.Vertices[a], m.Vertices[b], m.Vertices[c],
				m.TexCoords[a], m.TexCoords[b], m.TexCoords[c], material))
		} else {
			tris = append(tris, geometry.NewTriangle(m.Vertices[a], m.Vertices[b], m.Vertices[c], material))
		}
	}
	return tris
}

// LoadPLY reads a PLY mesh from disk
func LoadPLY(filename string, logger core.Logger) (*PLYMesh, error) {
	start := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	core.LoggerOrNop(logger).Infof("loaded %s: %d vertices, %d triangles in %v",
		filename, len(mesh.Vertices), mesh.TriangleCount(), time.Since(start))
	return mesh, nil
}

// ReadPLY parses ASCII and binary PLY data. Polygons with more than three
// vertices are fan triangulated; elements other than vertex and face are skipped.
func ReadPLY(r io.Reader) (*PLYMesh, error) {
	br := bufio.NewReaderSize(r, 1<<20)

	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, err
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		scanner := bufio.NewScanner(br)
		scanner.Split(bufio.ScanWords)
		values = &asciiValues{scanner: scanner}
	case "binary_little_endian":
		values = &binaryValues{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValues{r: br, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: format %q", ErrPLYHeader, header.Format)
	}

	mesh := &PLYMesh{}
	for _, element := range header.Elements {
		var err error
		switch element.Name {
		case "vertex":
			err = readPLYVertices(values, element, mesh)
		case "face":
			err = readPLYFaces(values, element, mesh)
		default:
			err = skipPLYElement(values, element)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s data: %w", element.Name, err)
		}
	}

	for _, idx := range mesh.Faces {
		if idx < 0 || idx >= len(mesh.Vertices) {
			return nil, fmt.Errorf("%w: vertex index %d out of range", ErrPLYFace, idx)
		}
	}
	return mesh, nil
}

// parsePLYHeader reads header lines up to and including end_header
func parsePLYHeader(r *bufio.Reader) (*plyHeader, error) {
	header := &plyHeader{}
	first := true

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: missing end_header", ErrPLYHeader)
		}
		parts := strings.Fields(line)

		if first {
			if len(parts) != 1 || parts[0] != "ply" {
				return nil, fmt.Errorf("%w: missing ply magic", ErrPLYHeader)
			}
			first = false
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, fmt.Errorf("%w: missing format", ErrPLYHeader)
			}
			return header, nil
		case "format":
			if len(parts) < 2 {
				return nil, fmt.Errorf("%w: %q", ErrPLYHeader, strings.TrimSpace(line))
			}
			header.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: %q", ErrPLYHeader, strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: invalid element count %q", ErrPLYHeader, parts[2])
			}
			header.Elements = append(header.Elements, plyElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("%w: property before element", ErrPLYHeader)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			last := &header.Elements[len(header.Elements)-1]
			last.Props = append(last.Props, prop)
		}
	}
}

// parsePLYProperty parses the fields after "property"
func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) < 4 {
			return plyProperty{}, fmt.Errorf("%w: invalid list property", ErrPLYHeader)
		}
		prop := plyProperty{IsList: true, CountType: parts[1], ItemType: parts[2], Name: parts[3]}
		if plyTypeSize(prop.CountType) == 0 || plyTypeSize(prop.ItemType) == 0 {
			return plyProperty{}, fmt.Errorf("%w: unknown type in list %s", ErrPLYHeader, prop.Name)
		}
		return prop, nil
	}
	if len(parts) < 2 {
		return plyProperty{}, fmt.Errorf("%w: invalid property", ErrPLYHeader)
	}
	if plyTypeSize(parts[0]) == 0 {
		return plyProperty{}, fmt.Errorf("%w: unknown type %q", ErrPLYHeader, parts[0])
	}
	return plyProperty{Type: parts[0], Name: parts[1]}, nil
}

func readPLYVertices(values plyValueReader, element plyElement, mesh *PLYMesh) error {
	hasUV := false
	for _, prop := range element.Props {
		switch prop.Name {
		case "u", "s", "texture_u":
			hasUV = true
		}
	}

	mesh.Vertices = make([]core.Vec3, 0, element.Count)
	if hasUV {
		mesh.TexCoords = make([]core.Vec2, 0, element.Count)
	}

	for i := 0; i < element.Count; i++ {
		var p [3]float64
		var uv [2]float64
		for _, prop := range element.Props {
			if prop.IsList {
				if err := skipPLYList(values, prop); err != nil {
					return err
				}
				continue
			}
			v, err := values.scalar(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", i, err)
			}
			switch prop.Name {
			case "x":
				p[0] = v
			case "y":
				p[1] = v
			case "z":
				p[2] = v
			case "u", "s", "texture_u":
				uv[0] = v
			case "v", "t", "texture_v":
				uv[1] = v
			}
		}
		mesh.Vertices = append(mesh.Vertices, core.NewVec3(p[0], p[1], p[2]))
		if hasUV {
			mesh.TexCoords = append(mesh.TexCoords, core.NewVec2(uv[0], uv[1]))
		}
	}
	return nil
}

func readPLYFaces(values plyValueReader, element plyElement, mesh *PLYMesh) error {
	indices := make([]int, 0, 4)
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Props {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipPLYProperty(values, prop); err != nil {
					return err
				}
				continue
			}

			n, err := values.scalar(prop.CountType)
			if err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			if n < 3 {
				return fmt.Errorf("%w: face %d has %v vertices", ErrPLYFace, i, n)
			}
			indices = indices[:0]
			for j := 0; j < int(n); j++ {
				v, err := values.scalar(prop.ItemType)
				if err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				indices = append(indices, int(v))
			}
			// Fan triangulation around the first vertex
			for j := 1; j+1 < len(indices); j++ {
				mesh.Faces = append(mesh.Faces, indices[0], indices[j], indices[j+1])
			}
		}
	}
	return nil
}

func skipPLYElement(values plyValueReader, element plyElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Props {
			if err := skipPLYProperty(values, prop); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipPLYProperty(values plyValueReader, prop plyProperty) error {
	if prop.IsList {
		return skipPLYList(values, prop)
	}
	_, err := values.scalar(prop.Type)
	return err
}

func skipPLYList(values plyValueReader, prop plyProperty) error {
	n, err := values.scalar(prop.CountType)
	if err != nil {
		return err
	}
	for j := 0; j < int(n); j++ {
		if _, err := values.scalar(prop.ItemType); err != nil {
			return err
		}
	}
	return nil
}

// plyTypeSize returns the size in bytes of a PLY scalar type, or 0 if unknown
func plyTypeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

// plyValueReader yields the next scalar of the body as a float64
type plyValueReader interface {
	scalar(dataType string) (float64, error)
}

type asciiValues struct {
	scanner *bufio.Scanner
}

func (a *asciiValues) scalar(string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(a.scanner.Text(), 64)
}

type binaryValues struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValues) scalar(dataType string) (float64, error) {
	size := plyTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	data := b.buf[:size]
	if _, err := io.ReadFull(b.r, data); err != nil {
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default:
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}
