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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested chunk was not found.
	ErrNotFound = errors.New("chunk not found")

	// ErrDimensionMismatch indicates a vector whose dimension disagrees
	// with the dimension recorded for the domain's index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrBackendUnavailable indicates that the storage backend is closed
	// or unreachable. Fatal to the current query.
	ErrBackendUnavailable = errors.New("index backend unavailable")

	// ErrInvalidQuery indicates invalid search parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrVectorCountMismatch indicates a bulk insert where chunks and
	// vectors differ in length.
	ErrVectorCountMismatch = errors.New("chunks and vectors length mismatch")
)
