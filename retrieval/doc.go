// Package retrieval embeds queries and searches domain indexes.
//
// Each domain has its own embedding model; the retriever resolves the right
// one from the registry and embeds the query exactly once per call. Results
// come back best first, with score ties broken by insertion order, so the
// same store state and query always produce the same ranking.
package retrieval
