// Package generation turns retrieved chunks into grounded answers.
//
// The generator's contract is that every answer is attributable to the
// retrieval set: the model only ever sees the retrieved chunk texts, its
// citations are checked against the set, and anything unverifiable degrades
// to the canonical refusal instead of an unsupported answer.
package generation
