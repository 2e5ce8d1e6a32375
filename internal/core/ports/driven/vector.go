package driven

// VectorIndex is an exact nearest-neighbour structure over a fixed, ordered
// set of vectors. Positions are assigned in insertion order starting at 0, so
// position i always corresponds to the i-th vector added.
type VectorIndex interface {
	// Add appends vectors to the index. Every vector must have Dimensions() entries.
	Add(vectors [][]float32) error

	// Search returns up to k hits ordered by increasing distance.
	Search(query []float32, k int) ([]VectorHit, error)

	// Len returns the number of vectors held.
	Len() int

	// Dimensions returns the vector size.
	Dimensions() int

	// MarshalBinary serialises the index.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary replaces the index contents with a serialised index.
	UnmarshalBinary(data []byte) error
}

// VectorIndexFactory creates empty indexes. Used both for the global index and
// for transient per-query subset indexes.
type VectorIndexFactory interface {
	NewIndex(dimensions int) VectorIndex
}

// VectorHit represents a nearest-neighbour search result.
type VectorHit struct {
	// Position is the index position of the matched vector.
	Position int

	// Distance is the Euclidean distance to the query.
	Distance float32
}
