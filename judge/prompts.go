package judge

import (
	"fmt"
	"strings"

	"github.com/poiesic/quaerit/core"
)

const evaluationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "faithfulness": {
      "type": "number",
      "minimum": 1,
      "maximum": 5
    },
    "completeness": {
      "type": "number",
      "minimum": 1,
      "maximum": 5
    },
    "hallucination": {
      "type": "number",
      "minimum": 1,
      "maximum": 5
    },
    "reasoning": {
      "type": "string"
    }
  },
  "required": ["faithfulness", "completeness", "hallucination", "reasoning"],
  "additionalProperties": false
}`

const evaluationSystemPrompt = `You are an expert evaluator of retrieval-augmented answers. Be strict and objective.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble,
explanation, greeting, or acknowledgment. Start your response directly with the opening brace {
and end with the closing brace }. Your output must exactly follow this schema:

` + evaluationResponseSchema + `

Rules:
- All scores are numbers from 1 to 5.
- The reasoning is a brief explanation of the scores.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

const evaluationPromptTemplate = `Evaluate the following answer against the retrieved context.

1. FAITHFULNESS (1-5): Is the answer faithful to the provided context?
   - 5: Completely faithful, every statement backed by the context
   - 3: Mostly faithful, minor unsupported additions
   - 1: Largely detached from the context

2. COMPLETENESS (1-5): Does the answer fully address the query?
   - 5: Fully addresses all aspects of the query
   - 3: Addresses main points but misses some details
   - 1: Does not address the query adequately

3. HALLUCINATION (1-5): How much fabricated information does the answer contain?
   - 1: No fabrication detected
   - 3: Minor unsupported claims
   - 5: Clear fabrication of information not in the context

Query: %s

Context:
%s

Answer: %s

Return JSON with faithfulness, completeness, hallucination, and reasoning.`

// buildUserPrompt formats the evaluation request. The context is presented
// the same way the generator saw it, chunk texts only.
func buildUserPrompt(query string, answer core.Answer, retrieved core.RetrievalResult) string {
	var contexts []string
	for _, sc := range retrieved.Chunks {
		contexts = append(contexts, sc.Chunk.Text)
	}
	contextBlock := strings.Join(contexts, "\n\n")
	if contextBlock == "" {
		contextBlock = "(no context retrieved)"
	}
	return fmt.Sprintf(evaluationPromptTemplate, query, contextBlock, answer.Text)
}
