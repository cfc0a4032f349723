package pipeline

import "fmt"

// State identifies a stage of the query pipeline. A query moves through
// StateRouting, StateRetrieving, StateGenerating, StateEvaluating and ends
// in StateDone, or in StateError if a stage fails fatally.
type State string

const (
	StateRouting    State = "ROUTING"
	StateRetrieving State = "RETRIEVING"
	StateGenerating State = "GENERATING"
	StateEvaluating State = "EVALUATING"
	StateDone       State = "DONE"
	StateError      State = "ERROR"
)

// StageError reports which stage a query died in. Recoverable conditions
// (routing fallback, empty index, refusals, unscored evaluations) never
// become StageErrors; they are encoded in the query result instead.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
