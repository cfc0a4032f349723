package main

import (
	"fmt"
	"io"

	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/pipeline"
)

// stageMonitor prints each pipeline stage's intermediate result as it
// completes. Used by the query command's --verbose flag.
type stageMonitor struct {
	out io.Writer
}

var _ pipeline.Monitor = (*stageMonitor)(nil)

func (m *stageMonitor) Start(query string) {
	fmt.Fprintf(m.out, "query: %s\n", query)
}

func (m *stageMonitor) StateChange(from, to pipeline.State) {
	fmt.Fprintf(m.out, "stage: %s -> %s\n", from, to)
}

func (m *stageMonitor) AfterRouting(decision core.RoutingDecision) {
	fmt.Fprintf(m.out, "routed to %q (confidence %.2f", decision.Domain, decision.Confidence)
	if decision.Fallback {
		fmt.Fprint(m.out, ", fallback")
	}
	fmt.Fprintln(m.out, ")")
}

func (m *stageMonitor) AfterRetrieval(result core.RetrievalResult) {
	fmt.Fprintf(m.out, "retrieved %d chunks from %q\n", len(result.Chunks), result.Domain)
	for i, sc := range result.Chunks {
		fmt.Fprintf(m.out, "  %d: [%d](%.3f) %s\n", i, sc.Chunk.Id, sc.Score, sc.Chunk.SourceURI)
	}
}

func (m *stageMonitor) AfterGeneration(answer core.Answer) {
	if answer.Refused {
		fmt.Fprintln(m.out, "generation refused: insufficient evidence")
		return
	}
	fmt.Fprintf(m.out, "generated answer citing %d chunks\n", len(answer.CitedChunkIDs))
}

func (m *stageMonitor) AfterEvaluation(evaluation *core.Evaluation) {
	if evaluation.Unscored {
		fmt.Fprintf(m.out, "evaluation unscored: %s\n", evaluation.UnscoredReason)
		return
	}
	fmt.Fprintf(m.out, "evaluation overall %.1f\n", evaluation.Overall)
}

func (m *stageMonitor) Finish(_ *core.QueryResult) {}
