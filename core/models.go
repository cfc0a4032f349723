package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for document chunks.
// It is generated by content-based hashing so identical chunk text
// always maps to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Domain is a named document category (e.g. "policy", "legal", "technical").
// Each domain owns its own index and embedding model; vectors from different
// domains are never compared against each other.
type Domain string

// DomainUnknown is the sentinel the router may return when no registered
// domain fits the query. The pipeline maps it to the configured default.
const DomainUnknown Domain = "unknown"

// Chunk is a passage of a source document, produced by an external chunker.
// Chunks are immutable once inserted into an index.
type Chunk struct {
	Id        ID
	Text      string
	Domain    Domain
	SourceURI string
	Position  int               // Position of the chunk within its source document
	Sequence  uint64            // Per-domain insertion sequence, assigned by the store
	Metadata  map[string]string // Filterable metadata (e.g. "source", "language")
	Vector    []float32         // Embedding vector, produced by the domain's embedder
}

// ScoredChunk is a chunk together with its similarity score for one query.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}

// RetrievalResult is an ordered list of scored chunks for one query, best
// first. Ties are broken by insertion sequence so ordering is stable.
type RetrievalResult struct {
	Domain Domain
	Chunks []ScoredChunk
}

// Empty reports whether the retrieval produced no chunks.
func (r *RetrievalResult) Empty() bool {
	return len(r.Chunks) == 0
}

// ChunkIDs returns the IDs of all retrieved chunks in result order.
func (r *RetrievalResult) ChunkIDs() []ID {
	ids := make([]ID, len(r.Chunks))
	for i, sc := range r.Chunks {
		ids[i] = sc.Chunk.Id
	}
	return ids
}

// Contains reports whether the result includes a chunk with the given ID.
func (r *RetrievalResult) Contains(id ID) bool {
	for _, sc := range r.Chunks {
		if sc.Chunk.Id == id {
			return true
		}
	}
	return false
}

// RoutingDecision is the router's choice of target domain for one query.
// It lives only for the duration of the query.
type RoutingDecision struct {
	Domain     Domain
	Confidence float64 // Calibrated confidence in [0, 1]
	Rationale  string
	Fallback   bool // True when the pipeline substituted the default domain
}

// RefusalText is the fixed answer text used when the evidence is insufficient.
const RefusalText = "The information is not available in the provided documents."

// Answer is a generated response constrained to retrieved chunks.
// Refused answers carry RefusalText and no citations.
type Answer struct {
	Text          string
	CitedChunkIDs []ID
	Refused       bool
}

// Refusal returns the canonical insufficient-evidence answer.
func Refusal() Answer {
	return Answer{Text: RefusalText, Refused: true}
}

// Evaluation is the judge's scoring of one answer against its context.
// All axes are on a 1-5 scale; for Hallucination, 1 means none detected and
// 5 means severe fabrication.
type Evaluation struct {
	Faithfulness   float64
	Completeness   float64
	Hallucination  float64
	Overall        float64
	Reasoning      string
	Unscored       bool // True when the judge failed or scoring was not applicable
	UnscoredReason string
}

// Unscorable builds the sentinel evaluation used when no score was produced.
// Unscored evaluations must never be treated as passing scores.
func Unscorable(reason string) *Evaluation {
	return &Evaluation{Unscored: true, UnscoredReason: reason}
}

// QueryResult is the complete output of one pipeline run.
type QueryResult struct {
	Answer     Answer
	Evaluation *Evaluation // Nil when evaluation was not requested
	Routing    RoutingDecision
	Retrieved  RetrievalResult
}

// Checkpoint records rebuild progress for a domain so an interrupted
// rebuild can resume where it left off. LastSequence is the insertion
// sequence of the last chunk whose re-embedding was committed.
type Checkpoint struct {
	Domain       Domain
	LastSequence uint64
	Processed    uint64
}
