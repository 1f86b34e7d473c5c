package field

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/meshflow/mesh"
)

// BufferField holds one prescribed vector per face, typically a velocity
// field exported from another tool. Sampling is a slice lookup; faces the
// export left out keep a zero vector.
type BufferField struct {
	vectors []r3.Vec
}

// faceVectorRecord is one row of an exported per-face field CSV.
type faceVectorRecord struct {
	Face int32   `csv:"face"`
	VX   float64 `csv:"vx"`
	VY   float64 `csv:"vy"`
	VZ   float64 `csv:"vz"`
}

// NewBufferField wraps an existing per-face vector slice. The slice must
// have one entry per mesh face.
func NewBufferField(vectors []r3.Vec) *BufferField {
	return &BufferField{vectors: vectors}
}

// LoadBufferCSV reads a face,vx,vy,vz CSV into a BufferField for a mesh
// with numFaces faces. A row referencing a face outside the mesh is a
// load error, not something to skip silently.
func LoadBufferCSV(path string, numFaces int) (*BufferField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening field buffer: %w", err)
	}
	defer f.Close()

	var records []faceVectorRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("parsing field buffer %s: %w", path, err)
	}

	vectors := make([]r3.Vec, numFaces)
	for i, rec := range records {
		if rec.Face < 0 || int(rec.Face) >= numFaces {
			return nil, fmt.Errorf("field buffer %s row %d: face %d out of range (mesh has %d faces)",
				path, i, rec.Face, numFaces)
		}
		vectors[rec.Face] = r3.Vec{X: rec.VX, Y: rec.VY, Z: rec.VZ}
	}
	return &BufferField{vectors: vectors}, nil
}

// Sample returns the stored vector for the face.
func (f *BufferField) Sample(face mesh.FaceID, _ r3.Vec, _ float64) r3.Vec {
	return f.vectors[face]
}
