package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/quaerit"
	"github.com/poiesic/quaerit/core"
)

type seedChunk struct {
	domain    core.Domain
	sourceURI string
	position  int
	text      string
}

var seeds = []seedChunk{
	{"policy", "handbook/benefits.md", 0, "Employees receive 25 vacation days per year."},
	{"policy", "handbook/benefits.md", 1, "Unused vacation days may be carried over into the first quarter of the following year, up to a maximum of five days."},
	{"policy", "handbook/benefits.md", 2, "Parental leave is sixteen weeks at full pay for primary caregivers and six weeks for secondary caregivers."},
	{"policy", "handbook/remote-work.md", 0, "Remote work is permitted up to three days per week with manager approval."},
	{"policy", "handbook/remote-work.md", 1, "Employees working remotely must be reachable during core hours, 10:00 to 16:00 local time."},
	{"policy", "handbook/expenses.md", 0, "Expense reports must be submitted within thirty days of the purchase date."},
	{"policy", "handbook/expenses.md", 1, "Meals during business travel are reimbursed up to 60 euros per day; receipts are required for any single expense over 25 euros."},
	{"policy", "handbook/conduct.md", 0, "Gifts from vendors exceeding 50 euros in value must be declared to the compliance team."},

	{"legal", "contracts/msa-template.md", 0, "Either party may terminate the agreement with thirty days written notice."},
	{"legal", "contracts/msa-template.md", 1, "Liability under this agreement is capped at the total fees paid in the twelve months preceding the claim."},
	{"legal", "contracts/msa-template.md", 2, "Confidentiality obligations survive termination of the agreement for a period of five years."},
	{"legal", "contracts/dpa-template.md", 0, "Personal data is processed only on documented instructions from the controller."},
	{"legal", "contracts/dpa-template.md", 1, "Sub-processors may be engaged only with prior written authorization from the controller."},
	{"legal", "compliance/retention.md", 0, "Financial records are retained for ten years as required by statutory bookkeeping obligations."},
	{"legal", "compliance/retention.md", 1, "Customer support correspondence is deleted two years after the end of the customer relationship."},

	{"technical", "docs/api/auth.md", 0, "API requests are authenticated with a bearer token passed in the Authorization header."},
	{"technical", "docs/api/auth.md", 1, "API keys rotate every ninety days; expired keys return HTTP 401 with error code key_expired."},
	{"technical", "docs/api/rate-limits.md", 0, "The default rate limit is 600 requests per minute per API key."},
	{"technical", "docs/api/rate-limits.md", 1, "Rate limited requests receive HTTP 429 and a Retry-After header in seconds."},
	{"technical", "docs/deploy/backups.md", 0, "Database backups run nightly at 02:00 UTC and are retained for thirty-five days."},
	{"technical", "docs/deploy/backups.md", 1, "Point-in-time recovery is available for the most recent seven days."},
	{"technical", "docs/deploy/scaling.md", 0, "The worker pool autoscales between two and twenty instances based on queue depth."},
}

var dbPath = flag.String("db", "./quaerit_db", "path to the index directory")

func init() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	engine, err := quaerit.NewEngine(*dbPath)
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	chunks := make([]*core.Chunk, len(seeds))
	for i, seed := range seeds {
		chunks[i] = &core.Chunk{
			Text:      seed.text,
			Domain:    seed.domain,
			SourceURI: seed.sourceURI,
			Position:  seed.position,
			Metadata:  map[string]string{"source": seed.sourceURI},
		}
	}

	written, err := engine.Ingest(context.Background(), chunks)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Seeded %d chunks across policy, legal, and technical domains\n", written)
}
