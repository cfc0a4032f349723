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

import "errors"

// Domain validation errors
var (
	// ErrUnknownDomain indicates a domain with no registered index or embedder.
	ErrUnknownDomain = errors.New("unknown domain")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyText indicates the chunk Text field is empty.
	ErrEmptyText = errors.New("chunk text cannot be empty")

	// ErrEmptyDomain indicates a Domain value is empty.
	ErrEmptyDomain = errors.New("domain cannot be empty")

	// ErrReservedDomain indicates a Domain value that collides with the
	// router's unknown sentinel.
	ErrReservedDomain = errors.New("domain name is reserved")

	// ErrInvalidDomainName indicates a Domain value containing characters
	// that cannot be used in index names.
	ErrInvalidDomainName = errors.New("domain name must not contain ':'")

	// ErrInvalidConfidence indicates a confidence value outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")

	// ErrInvalidScore indicates an evaluation score outside the 1-5 scale.
	ErrInvalidScore = errors.New("score must be between 1 and 5")
)
