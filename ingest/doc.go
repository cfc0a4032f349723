// Package ingest writes externally chunked documents into domain indexes.
//
// Chunking itself happens outside this module; the pipeline receives ready
// chunks, assigns content-derived IDs, embeds each batch with the owning
// domain's model on a worker pool, and inserts batches atomically. Unlike
// query-time work, ingestion is synchronous: once Ingest returns, the
// chunks are searchable.
package ingest
