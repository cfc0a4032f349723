package router

import (
	"fmt"
	"strings"

	"github.com/poiesic/quaerit/core"
)

const routingResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "domain": {
      "type": "string"
    },
    "confidence": {
      "type": "number",
      "minimum": 0,
      "maximum": 1
    },
    "rationale": {
      "type": "string"
    }
  },
  "required": ["domain", "confidence", "rationale"],
  "additionalProperties": false
}`

const routingPromptTemplate = `You are a query router for an enterprise document retrieval system.

Your job is to analyze a user query and decide which document domain should answer it.
You do NOT answer the query yourself.

Available domains:
%s

If no listed domain fits the query, use "unknown".

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble,
explanation, greeting, or acknowledgment. Start your response directly with the opening brace {
and end with the closing brace }. Your output must exactly follow this schema:

%s

Rules:
- The domain field must be exactly one of: %s.
- Confidence is a number from 0 (pure guess) to 1 (certain).
- The rationale is one brief sentence explaining the choice.
- Be decisive and choose the single most appropriate domain.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

const strictRetryInstruction = `

Your previous response was not valid. Respond with EXACTLY one JSON object and nothing else.
The domain field MUST be one of the listed values, copied verbatim.`

// DefaultDescriptions documents the three standard enterprise domains.
// Callers with other domains supply their own via WithDescription.
var DefaultDescriptions = map[core.Domain]string{
	"policy":    "Employee policies, HR guidelines, company rules, workplace procedures",
	"legal":     "Contracts, legal documents, compliance, regulatory requirements, obligations",
	"technical": "API documentation, technical specifications, code documentation, engineering docs",
}

// buildSystemPrompt creates the routing system prompt with the candidate
// domains and their descriptions embedded.
func buildSystemPrompt(domains []core.Domain, descriptions map[core.Domain]string, strict bool) string {
	var lines []string
	allowed := make([]string, 0, len(domains)+1)
	for _, domain := range domains {
		desc := descriptions[domain]
		if desc == "" {
			desc = "Documents of the " + string(domain) + " category"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", domain, desc))
		allowed = append(allowed, `"`+string(domain)+`"`)
	}
	allowed = append(allowed, `"`+string(core.DomainUnknown)+`"`)

	prompt := fmt.Sprintf(routingPromptTemplate,
		strings.Join(lines, "\n"),
		routingResponseSchema,
		strings.Join(allowed, ", "))
	if strict {
		prompt += strictRetryInstruction
	}
	return prompt
}

func buildUserPrompt(query string) string {
	return fmt.Sprintf("Route this query to a domain:\n\nQuery: %q\n\nReturn JSON with domain, confidence, and rationale.", query)
}
