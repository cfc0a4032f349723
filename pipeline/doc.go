// Package pipeline orchestrates a query through routing, retrieval,
// generation, and evaluation.
//
// The pipeline is a state machine: ROUTING, RETRIEVING, GENERATING,
// EVALUATING, DONE, with ERROR reachable from any stage. Its central policy
// is the separation of recoverable conditions from fatal ones. A query that
// cannot be routed still runs against the default domain, an empty index
// still produces a (refused) answer, and a judge outage still returns the
// answer unscored. Only a broken stage (store failure, generation call
// failure, timeout of a required stage) aborts the query, and then only
// that query.
package pipeline
