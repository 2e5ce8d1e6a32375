package domain

import (
	"strconv"
	"time"
)

// CorpusStats summarises what the Document Store holds.
type CorpusStats struct {
	RawDocuments int            `json:"raw_documents"`
	Questions    int            `json:"questions"`
	BySubject    map[string]int `json:"by_subject"`
	ByYear       map[string]int `json:"by_year"`
}

// IndexStatus describes the currently loaded question index generation.
type IndexStatus struct {
	// Loaded is false when no index is available for retrieval.
	Loaded bool `json:"loaded"`

	// Generation is the id of the loaded generation.
	Generation string `json:"generation,omitempty"`

	// Entries is the number of vectors in the index.
	Entries int `json:"entries"`

	// Dimensions is the vector size.
	Dimensions int `json:"dimensions"`

	// Model is the embedding model that produced the vectors.
	Model string `json:"model,omitempty"`

	// BuiltAt is when the generation was written.
	BuiltAt time.Time `json:"built_at,omitempty"`
}

// IngestResult reports the outcome of ingesting one raw document.
type IngestResult struct {
	// Source is the ingested document's source key.
	Source string `json:"source"`

	// Status is what happened to the raw document record.
	Status UpsertStatus `json:"status"`

	// Found is the number of questions extracted.
	Found int `json:"found"`

	// Stored is the number of questions upserted successfully.
	Stored int `json:"stored"`

	// Failed is the number of questions whose upsert failed.
	Failed int `json:"failed"`
}

// Answer is a generated response grounded in retrieved questions.
type Answer struct {
	Text    string            `json:"text"`
	Context []RetrievalResult `json:"context"`
	Model   string            `json:"model"`
}

// YearKey is the CorpusStats.ByYear key for a year, "unknown" when unset.
func YearKey(year *int) string {
	if year == nil {
		return "unknown"
	}
	return strconv.Itoa(*year)
}
