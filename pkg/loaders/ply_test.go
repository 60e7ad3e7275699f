package loaders

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// squareVertices is a unit square in the XY plane
var squareVertices = []core.Vec3{
	core.NewVec3(0, 0, 0),
	core.NewVec3(1, 0, 0),
	core.NewVec3(1, 1, 0),
	core.NewVec3(0, 1, 0),
}

// createBinaryPLY writes the unit square as two triangles, optionally with
// per-vertex normals and colors that the loader must skip
func createBinaryPLY(t *testing.T, order binary.ByteOrder, includeNormals, includeColors bool) []byte {
	t.Helper()
	var buf bytes.Buffer

	format := "binary_little_endian"
	if order == binary.BigEndian {
		format = "binary_big_endian"
	}
	buf.WriteString("ply\n")
	buf.WriteString("format " + format + " 1.0\n")
	buf.WriteString("comment generated for tests\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\nproperty float y\nproperty float z\n")
	if includeNormals {
		buf.WriteString("property float nx\nproperty float ny\nproperty float nz\n")
	}
	if includeColors {
		buf.WriteString("property uchar red\nproperty uchar green\nproperty uchar blue\n")
	}
	buf.WriteString("element face 2\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("end_header\n")

	write := func(v any) {
		if err := binary.Write(&buf, order, v); err != nil {
			t.Fatalf("binary.Write failed: %v", err)
		}
	}
	for _, v := range squareVertices {
		write([3]float32{float32(v.X), float32(v.Y), float32(v.Z)})
		if includeNormals {
			write([3]float32{0, 0, 1})
		}
		if includeColors {
			write([3]uint8{255, 128, 0})
		}
	}
	for _, face := range [][3]int32{{0, 1, 2}, {0, 2, 3}} {
		write(uint8(3))
		write(face)
	}
	return buf.Bytes()
}

func TestReadPLY_Binary(t *testing.T) {
	tests := []struct {
		name           string
		order          binary.ByteOrder
		includeNormals bool
		includeColors  bool
	}{
		{"Little endian positions only", binary.LittleEndian, false, false},
		{"Little endian with normals and colors", binary.LittleEndian, true, true},
		{"Big endian with colors", binary.BigEndian, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := createBinaryPLY(t, tt.order, tt.includeNormals, tt.includeColors)
			mesh, err := ReadPLY(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("ReadPLY failed: %v", err)
			}

			if len(mesh.Vertices) != len(squareVertices) {
				t.Fatalf("Expected %d vertices, got %d", len(squareVertices), len(mesh.Vertices))
			}
			for i, expected := range squareVertices {
				if !mesh.Vertices[i].Equals(expected, 1e-6) {
					t.Errorf("Vertex %d: expected %v, got %v", i, expected, mesh.Vertices[i])
				}
			}

			expectedFaces := []int{0, 1, 2, 0, 2, 3}
			if len(mesh.Faces) != len(expectedFaces) {
				t.Fatalf("Expected %d indices, got %d", len(expectedFaces), len(mesh.Faces))
			}
			for i, idx := range expectedFaces {
				if mesh.Faces[i] != idx {
					t.Errorf("Index %d: expected %d, got %d", i, idx, mesh.Faces[i])
				}
			}
			if len(mesh.TexCoords) != 0 {
				t.Errorf("Expected no texture coordinates, got %d", len(mesh.TexCoords))
			}
		})
	}
}

func TestReadPLY_ASCIIQuadWithUVs(t *testing.T) {
	data := `ply
format ascii 1.0
element vertex 4
property double x
property double y
property double z
property float u
property float v
element material 1
property uchar id
element face 1
property list uchar uint vertex_indices
end_header
0 0 0 0 0
1 0 0 1 0
1 1 0 1 1
0 1 0 0 1
7
4 0 1 2 3
`
	mesh, err := ReadPLY(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadPLY failed: %v", err)
	}

	// A quad is fanned into two triangles around its first vertex
	if mesh.TriangleCount() != 2 {
		t.Fatalf("Expected 2 triangles, got %d", mesh.TriangleCount())
	}
	if len(mesh.TexCoords) != 4 || mesh.TexCoords[2] != core.NewVec2(1, 1) {
		t.Errorf("Unexpected texture coordinates %v", mesh.TexCoords)
	}

	tris := mesh.Triangles(5)
	if len(tris) != 2 {
		t.Fatalf("Expected 2 triangles, got %d", len(tris))
	}
	for i, tri := range tris {
		if tri.Material != 5 {
			t.Errorf("Triangle %d: expected material 5, got %d", i, tri.Material)
		}
	}
	if tris[1].V2 != squareVertices[3] || tris[1].UV[2] != core.NewVec2(0, 1) {
		t.Errorf("Unexpected second triangle %+v", tris[1])
	}

	soup := mesh.Soup()
	if len(soup) != 6 || soup[5] != squareVertices[3] {
		t.Errorf("Unexpected soup %v", soup)
	}
}

func TestReadPLY_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected error
	}{
		{
			name:     "Missing magic",
			data:     "format ascii 1.0\nend_header\n",
			expected: ErrPLYHeader,
		},
		{
			name:     "Missing end_header",
			data:     "ply\nformat ascii 1.0\nelement vertex 0\n",
			expected: ErrPLYHeader,
		},
		{
			name:     "Unknown format",
			data:     "ply\nformat binary_middle_endian 1.0\nend_header\n",
			expected: ErrPLYHeader,
		},
		{
			name:     "Unknown property type",
			data:     "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n",
			expected: ErrPLYHeader,
		},
		{
			name:     "Property before element",
			data:     "ply\nformat ascii 1.0\nproperty float x\nend_header\n",
			expected: ErrPLYHeader,
		},
		{
			name: "Degenerate face",
			data: "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\n" +
				"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n2 0 1\n",
			expected: ErrPLYFace,
		},
		{
			name: "Index out of range",
			data: "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
				"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 9\n",
			expected: ErrPLYFace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPLY(strings.NewReader(tt.data))
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestReadPLY_TruncatedBody(t *testing.T) {
	data := createBinaryPLY(t, binary.LittleEndian, false, false)
	if _, err := ReadPLY(bytes.NewReader(data[:len(data)-5])); err == nil {
		t.Error("Expected an error for a truncated body")
	}
}

func TestLoadPLY(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "square.ply")
	if err := os.WriteFile(path, createBinaryPLY(t, binary.LittleEndian, true, false), 0644); err != nil {
		t.Fatalf("Failed to write PLY: %v", err)
	}

	mesh, err := LoadPLY(path, nil)
	if err != nil {
		t.Fatalf("LoadPLY failed: %v", err)
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles, got %d", mesh.TriangleCount())
	}

	if _, err := LoadPLY(filepath.Join(dir, "missing.ply"), nil); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
