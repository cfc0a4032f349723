package pipeline

import "github.com/poiesic/quaerit/core"

// Monitor provides hooks to observe a query's passage through the pipeline.
// Implement this interface to track intermediate results during a query.
type Monitor interface {
	Start(query string)
	StateChange(from, to State)
	AfterRouting(decision core.RoutingDecision)
	AfterRetrieval(result core.RetrievalResult)
	AfterGeneration(answer core.Answer)
	AfterEvaluation(evaluation *core.Evaluation)
	Finish(result *core.QueryResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) StateChange(_, _ State)                   {}
func (n *noopMonitor) AfterRouting(_ core.RoutingDecision)      {}
func (n *noopMonitor) AfterRetrieval(_ core.RetrievalResult)    {}
func (n *noopMonitor) AfterGeneration(_ core.Answer)            {}
func (n *noopMonitor) AfterEvaluation(_ *core.Evaluation)       {}
func (n *noopMonitor) Finish(_ *core.QueryResult)               {}
