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


package ai

import (
	"fmt"
	"slices"

	"github.com/poiesic/quaerit/core"
)

// Registry maps each domain to the embedder that produced its index vectors.
// A query vector for domain D may only come from Resolve(D); this is the
// system-wide coordinate alignment invariant, so the registry is the single
// code path to a domain's embedder.
//
// The registry is immutable after construction and safe for concurrent use.
type Registry struct {
	embedders map[core.Domain]Embedder
}

// NewRegistry builds a registry from a domain-to-embedder map.
// Every domain must be valid and carry a non-nil embedder.
func NewRegistry(embedders map[core.Domain]Embedder) (*Registry, error) {
	if len(embedders) == 0 {
		return nil, ErrNoEmbedders
	}

	m := make(map[core.Domain]Embedder, len(embedders))
	for domain, embedder := range embedders {
		if err := core.ValidateDomain(domain); err != nil {
			return nil, err
		}
		if embedder == nil {
			return nil, fmt.Errorf("%w: domain %q", ErrNilEmbedder, domain)
		}
		m[domain] = embedder
	}

	return &Registry{embedders: m}, nil
}

// Resolve returns the embedder registered for the domain.
// Fails with core.ErrUnknownDomain when the domain is not registered.
func (r *Registry) Resolve(domain core.Domain) (Embedder, error) {
	embedder, ok := r.embedders[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownDomain, domain)
	}
	return embedder, nil
}

// Domains returns all registered domains in sorted order.
func (r *Registry) Domains() []core.Domain {
	domains := make([]core.Domain, 0, len(r.embedders))
	for domain := range r.embedders {
		domains = append(domains, domain)
	}
	slices.Sort(domains)
	return domains
}

// Has reports whether the domain is registered.
func (r *Registry) Has(domain core.Domain) bool {
	_, ok := r.embedders[domain]
	return ok
}
