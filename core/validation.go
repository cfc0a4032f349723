// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Domain must be valid (non-empty, not the unknown sentinel)
//
// NOT validated (populated later):
//   - Vector (empty until the domain's embedder runs)
//   - Id (0 is valid; the ingestion pipeline assigns content-based IDs)
//   - Sequence (assigned by the index store at insert time)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if err := ValidateDomain(chunk.Domain); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	return nil
}

// ValidateDomain validates that a Domain is usable as an index name.
// The ':' character is the index key delimiter; a domain containing it
// would share another domain's key prefix.
func ValidateDomain(domain Domain) error {
	if domain == "" {
		return ErrEmptyDomain
	}
	if domain == DomainUnknown {
		return ErrReservedDomain
	}
	if strings.ContainsRune(string(domain), ':') {
		return ErrInvalidDomainName
	}
	return nil
}

// ValidateConfidence validates that a routing confidence is within [0, 1].
func ValidateConfidence(confidence float64) error {
	if confidence < 0 || confidence > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidConfidence, confidence)
	}
	return nil
}

// ValidateScore validates that an evaluation axis score is within the 1-5 scale.
func ValidateScore(score float64) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("%w: got %v", ErrInvalidScore, score)
	}
	return nil
}

// ClampScore forces an evaluation axis score into the 1-5 scale.
// Model-reported scores outside the scale are clamped rather than rejected.
func ClampScore(score float64) float64 {
	if score < 1 {
		return 1
	}
	if score > 5 {
		return 5
	}
	return score
}
