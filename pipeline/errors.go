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


package pipeline

import "errors"

var (
	// ErrRouterRequired is returned when a router is not provided.
	ErrRouterRequired = errors.New("router required")

	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrJudgeRequired is returned when a judge is not provided.
	ErrJudgeRequired = errors.New("judge required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidDefaultDomain is returned when the configured default domain
	// is not a registered domain.
	ErrInvalidDefaultDomain = errors.New("default domain not registered")

	// ErrEmptyQuery is returned when Run is called with an empty query.
	ErrEmptyQuery = errors.New("empty query")
)
