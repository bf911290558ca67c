// Package localbuild provides BruteForce, a reference
// orchestrator.LocalBuildStrategy implementation used whenever a job
// never became remote-eligible or a remote phase failed and the
// orchestrator fell back. The ANN build algorithm itself is
// explicitly out of scope (spec.md's Non-goals name it as a thing
// this module only consumes through an interface); BruteForce exists
// so FALLBACK is exercisable end to end, not as a competitive index
// builder. Its distance math is adapted from the teacher's
// pkg/math (cosine/Euclidean helpers originally used to score chunk
// similarity for deduplication), repurposed here to score vector
// similarity for neighbor selection.
package localbuild

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	vecmath "github.com/lattice-search/vecbuild/pkg/math"
	"github.com/lattice-search/vecbuild/pkg/types"
	"github.com/lattice-search/vecbuild/pkg/vectorcursor"
)

// BruteForce builds a flat k-nearest-neighbor graph by exhaustively
// scoring every pair of vectors. It is O(n^2) and is only intended for
// the segment sizes a fallback realistically sees in a healthy
// deployment (the remote path is what's supposed to carry the bulk of
// the volume).
type BruteForce struct {
	// NeighborsPerNode is k, the number of neighbors recorded per
	// node. Defaults to 32 if <= 0.
	NeighborsPerNode int
}

// Build reads every (docID, vector) pair from vectorSupplier, scores
// all pairs with the distance function named by job.MethodParams.SpaceType,
// and writes a flat neighbor-list artifact to job.Sink. docIDSupplier
// is never called: BruteForce recovers doc ids directly from the
// vector cursor, which yields them alongside each vector.
func (b BruteForce) Build(ctx context.Context, job *types.SegmentBuildJob, vectorSupplier, docIDSupplier vectorcursor.Supplier) error {
	k := b.NeighborsPerNode
	if k <= 0 {
		k = 32
	}

	cur, err := vectorSupplier()
	if err != nil {
		return fmt.Errorf("localbuild: vector cursor: %w", err)
	}

	docIDs := make([]uint32, 0, cur.TotalLiveDocs())
	vectors := make([][]float32, 0, cur.TotalLiveDocs())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		docID, err := cur.Next()
		if err == vectorcursor.ErrExhausted {
			break
		}
		if err != nil {
			return fmt.Errorf("localbuild: reading cursor: %w", err)
		}
		docIDs = append(docIDs, docID)
		vectors = append(vectors, decodeVector(cur.CurrentVector(), job.DataType, cur.Dimension()))
	}

	distance := distanceFunc(job.MethodParams.SpaceType)

	neighbors := make([][]uint32, len(vectors))
	for i := range vectors {
		type scored struct {
			idx  int
			dist float64
		}
		scores := make([]scored, 0, len(vectors)-1)
		for j := range vectors {
			if i == j {
				continue
			}
			scores = append(scores, scored{idx: j, dist: distance(vectors[i], vectors[j])})
		}
		sort.Slice(scores, func(a, b int) bool { return scores[a].dist < scores[b].dist })

		limit := k
		if limit > len(scores) {
			limit = len(scores)
		}
		list := make([]uint32, limit)
		for n := 0; n < limit; n++ {
			list[n] = docIDs[scores[n].idx]
		}
		neighbors[i] = list
	}

	return writeArtifact(job, docIDs, neighbors)
}

// decodeVector turns the cursor's raw byte view into a float32 slice
// so a single distance function family can score any DataType.
// Float32 vectors are read directly; byte and binary vectors are
// widened to float32 so the same cosine/Euclidean math applies,
// mirroring how the remote build service treats them as opaque
// numeric vectors regardless of on-disk width.
func decodeVector(raw []byte, dt types.DataType, dim int) []float32 {
	out := make([]float32, dim)
	switch dt {
	case types.DataTypeFloat32:
		for i := 0; i < dim && (i+1)*4 <= len(raw); i++ {
			bits := binary.LittleEndian.Uint32(raw[i*4:])
			out[i] = math.Float32frombits(bits)
		}
	default: // byte, binary: one byte per dimension
		for i := 0; i < dim && i < len(raw); i++ {
			out[i] = float32(raw[i])
		}
	}
	return out
}

func distanceFunc(spaceType string) func(a, b []float32) float64 {
	switch spaceType {
	case "l2", "euclidean":
		return vecmath.EuclideanDistance
	default: // "cosine" and anything unrecognized: cosine is the safest default
		return vecmath.CosineDistance
	}
}

// writeArtifact serializes a flat neighbor-list index: a 4-byte doc
// count, then per doc a 4-byte doc id, a 4-byte neighbor count, and
// that many 4-byte neighbor doc ids, all little-endian. This is a
// deliberately simple on-disk shape, since the ANN artifact format
// itself is out of scope; it exists to give the fallback path
// something concrete to write into job.Sink.
func writeArtifact(job *types.SegmentBuildJob, docIDs []uint32, neighbors [][]uint32) error {
	header := make([]byte, 4)
	binary.LittleEndian.PutUint32(header, uint32(len(docIDs)))
	if _, err := job.Sink.Write(header); err != nil {
		return fmt.Errorf("localbuild: write header: %w", err)
	}

	buf := make([]byte, 8)
	for i, docID := range docIDs {
		binary.LittleEndian.PutUint32(buf[0:4], docID)
		binary.LittleEndian.PutUint32(buf[4:8], uint32(len(neighbors[i])))
		if _, err := job.Sink.Write(buf); err != nil {
			return fmt.Errorf("localbuild: write entry header for doc %d: %w", docID, err)
		}
		nbuf := make([]byte, len(neighbors[i])*4)
		for n, id := range neighbors[i] {
			binary.LittleEndian.PutUint32(nbuf[n*4:], id)
		}
		if _, err := job.Sink.Write(nbuf); err != nil {
			return fmt.Errorf("localbuild: write neighbors for doc %d: %w", docID, err)
		}
	}
	return nil
}
