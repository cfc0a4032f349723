// Package rebuild re-embeds stored chunks with a domain's current embedding
// model, typically after the model for that domain has changed.
//
// This package supports batch processing of chunks, progress tracking, retry
// logic with exponential backoff, and vector normalization so dot-product
// scoring stays equivalent to cosine similarity. Progress is checkpointed per
// batch; an interrupted rebuild resumes where it stopped.
package rebuild
