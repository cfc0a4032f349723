package generation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/quaerit/core"
)

const answerResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "answer": {
      "type": "string"
    },
    "cited_chunk_ids": {
      "type": "array",
      "items": {
        "type": "integer"
      }
    },
    "insufficient_evidence": {
      "type": "boolean"
    }
  },
  "required": ["answer", "cited_chunk_ids", "insufficient_evidence"],
  "additionalProperties": false
}`

const answerSystemPrompt = `You are a retrieval-augmented assistant. Your role is to answer questions based ONLY on the provided context.

CRITICAL RULES:
1. Answer ONLY using information from the provided context chunks.
2. If the answer is not in the context, set insufficient_evidence to true instead of guessing.
3. Do NOT make up information, even if you think you know the answer.
4. Do NOT use information from your training data that is not in the context.
5. Every claim in your answer must be attributable to at least one cited chunk.
6. Cite chunks by the exact numeric IDs shown in the context.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble,
explanation, greeting, or acknowledgment. Start your response directly with the opening brace {
and end with the closing brace }. Your output must exactly follow this schema:

` + answerResponseSchema + `

Rules:
- cited_chunk_ids lists the IDs of every chunk your answer draws on.
- When insufficient_evidence is true, leave answer empty and cited_chunk_ids empty.
- Refusing is always preferred over fabricating an answer.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

const strictRetryInstruction = `

Your previous response was not valid. Respond with EXACTLY one JSON object and nothing else,
following the schema above.`

// buildUserPrompt lays out the retrieved chunks, each tagged with its ID,
// followed by the question.
func buildUserPrompt(query string, retrieved core.RetrievalResult) string {
	var b strings.Builder
	b.WriteString("Context:\n\n")
	for _, sc := range retrieved.Chunks {
		b.WriteString("Chunk ")
		b.WriteString(strconv.FormatUint(uint64(sc.Chunk.Id), 10))
		b.WriteString(":\n")
		b.WriteString(sc.Chunk.Text)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Question: %s\n\nReturn JSON with answer, cited_chunk_ids, and insufficient_evidence.", query)
	return b.String()
}
