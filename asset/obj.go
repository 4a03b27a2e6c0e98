// Package asset loads the model and texture files the viewer displays.
package asset

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/Mehdi-Antoine/vulkanitos/mesh"
)

// objDecoder accumulates the attribute arrays of a Wavefront OBJ file and
// emits one mesh.Ref per triangle corner.
type objDecoder struct {
	positions []mgl32.Vec3
	texCoords []mgl32.Vec2
	refs      []mesh.Ref
	line      int
}

func (dec *objDecoder) formatError(format string, args ...interface{}) error {
	return errors.Errorf("obj line %d: "+format, append([]interface{}{dec.line}, args...)...)
}

func (dec *objDecoder) parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, dec.formatError("expected %d values, got %d", n, len(fields))
	}
	ret := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, dec.formatError("%v", err)
		}
		ret[i] = float32(v)
	}
	return ret, nil
}

// resolve turns a 1 based or negative (relative) OBJ index into a slice index.
func (dec *objDecoder) resolve(field string, count int) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, dec.formatError("%v", err)
	}
	switch {
	case v > 0:
		v--
	case v < 0:
		v += count
	default:
		return 0, dec.formatError("index 0 is not valid")
	}
	if v < 0 || v >= count {
		return 0, dec.formatError("index %s out of range", field)
	}
	return v, nil
}

// corner builds the ref for one "v", "v/vt", "v//vn" or "v/vt/vn" field.
// Models are authored z-up, so y and z are swapped; v is flipped for
// Vulkan's top-left texture origin.
func (dec *objDecoder) corner(field string) (mesh.Ref, error) {
	parts := strings.Split(field, "/")
	pi, err := dec.resolve(parts[0], len(dec.positions))
	if err != nil {
		return mesh.Ref{}, err
	}
	p := dec.positions[pi]
	ref := mesh.Ref{
		Pos:   mgl32.Vec3{p.X(), p.Z(), p.Y()},
		Color: mgl32.Vec3{1, 1, 1},
	}
	if len(parts) > 1 && parts[1] != "" {
		ti, err := dec.resolve(parts[1], len(dec.texCoords))
		if err != nil {
			return mesh.Ref{}, err
		}
		uv := dec.texCoords[ti]
		ref.TexCoord = mgl32.Vec2{uv.X(), 1 - uv.Y()}
	}
	return ref, nil
}

// parseFace triangulates polygons as a fan around the first corner.
func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return dec.formatError("face with %d corners", len(fields))
	}
	corners := make([]mesh.Ref, len(fields))
	for i, f := range fields {
		c, err := dec.corner(f)
		if err != nil {
			return err
		}
		corners[i] = c
	}
	for i := 1; i+1 < len(corners); i++ {
		dec.refs = append(dec.refs, corners[0], corners[i], corners[i+1])
	}
	return nil
}

func (dec *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "v":
		v, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := dec.parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		dec.texCoords = append(dec.texCoords, mgl32.Vec2{v[0], v[1]})
	case "f":
		return dec.parseFace(fields[1:])
	}
	// normals, groups, materials and smoothing do not affect the mesh
	return nil
}

// DecodeOBJ reads an OBJ stream and returns its triangle corners.
func DecodeOBJ(r io.Reader) ([]mesh.Ref, error) {
	dec := &objDecoder{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read obj")
	}
	if len(dec.refs) == 0 {
		return nil, errors.New("obj contains no faces")
	}
	return dec.refs, nil
}

// LoadOBJ reads the OBJ file at path.
func LoadOBJ(path string) ([]mesh.Ref, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open model")
	}
	defer f.Close()

	refs, err := DecodeOBJ(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return refs, nil
}
