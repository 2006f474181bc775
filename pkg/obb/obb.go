// Package obb fits oriented bounding boxes to triangle meshes, turning
// arbitrary geometry into catalog items.
//
// The fit uses principal component analysis: box axes are the
// eigenvectors of the vertex covariance matrix, extents are the vertex
// projection ranges along them. PCA boxes are not minimal for every
// mesh, but they are deterministic and close enough for packing
// estimates.
package obb

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/cratestack/pkg/catalog"
	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
)

// degenerateExtent is the smallest principal extent considered a real
// dimension. Meshes flat along an axis cannot become boxes.
const degenerateExtent = 1e-9

// OBB is an oriented bounding box fitted to mesh vertices.
type OBB struct {
	// Dims are the extents along the principal axes, sorted
	// descending, ready to use as item dimensions.
	Dims geom.Vec3

	// Center is the vertex centroid in mesh coordinates.
	Center geom.Vec3
}

// Extract fits an oriented bounding box to the given vertices.
// At least 4 non-coplanar vertices are required.
func Extract(points []geom.Vec3) (OBB, error) {
	if len(points) < 4 {
		return OBB{}, errors.New(errors.ErrCodeInvalidMesh,
			"need at least 4 vertices, got %d", len(points))
	}

	var mean geom.Vec3
	for _, p := range points {
		mean.X += p.X
		mean.Y += p.Y
		mean.Z += p.Z
	}
	n := float64(len(points))
	mean.X /= n
	mean.Y /= n
	mean.Z /= n

	data := make([]float64, 0, len(points)*3)
	for _, p := range points {
		data = append(data, p.X-mean.X, p.Y-mean.Y, p.Z-mean.Z)
	}
	centered := mat.NewDense(len(points), 3, data)

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, centered, nil)

	var es mat.EigenSym
	if !es.Factorize(&cov, true) {
		return OBB{}, errors.New(errors.ErrCodeInvalidMesh, "eigendecomposition failed")
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	var proj mat.Dense
	proj.Mul(centered, &vecs)

	rows, _ := proj.Dims()
	ext := make([]float64, 3)
	for j := 0; j < 3; j++ {
		lo, hi := proj.At(0, j), proj.At(0, j)
		for i := 1; i < rows; i++ {
			v := proj.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		ext[j] = hi - lo
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(ext)))
	if ext[2] <= degenerateExtent {
		return OBB{}, errors.New(errors.ErrCodeInvalidMesh,
			"mesh is degenerate (flat along a principal axis)")
	}

	return OBB{
		Dims:   geom.Vec3{X: ext[0], Y: ext[1], Z: ext[2]},
		Center: mean,
	}, nil
}

// ParseOBJ reads vertex positions from Wavefront OBJ data. Only "v"
// records are used; faces, normals, and texture coordinates are
// skipped. A vertex's optional w coordinate is ignored.
func ParseOBJ(r io.Reader) ([]geom.Vec3, error) {
	var pts []geom.Vec3

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "v ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, errors.New(errors.ErrCodeInvalidMesh,
				"line %d: vertex needs 3 coordinates", lineNo)
		}

		var c [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidMesh, err, "line %d", lineNo)
			}
			c[i] = v
		}
		pts = append(pts, geom.Vec3{X: c[0], Y: c[1], Z: c[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailed, err, "read mesh")
	}

	return pts, nil
}

// LoadOBJ reads the vertices of an OBJ file.
func LoadOBJ(path string) ([]geom.Vec3, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailed, err, "open mesh %s", path)
	}
	defer f.Close()

	pts, err := ParseOBJ(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "mesh %s", path)
	}
	return pts, nil
}

// FromFiles builds a catalog by fitting an oriented bounding box to
// each mesh file. Item IDs are the file basenames without extension.
func FromFiles(paths []string) (*catalog.Catalog, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "no mesh files given")
	}

	cat := &catalog.Catalog{}
	for _, path := range paths {
		pts, err := LoadOBJ(path)
		if err != nil {
			return nil, err
		}
		box, err := Extract(pts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMesh, err, "mesh %s", path)
		}

		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cat.Items = append(cat.Items, catalog.Item{ID: id, Dims: box.Dims, Quantity: 1})
	}
	return cat, nil
}
