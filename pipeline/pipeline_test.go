package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/quaerit/ai/mock"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/generation"
	"github.com/poiesic/quaerit/judge"
	"github.com/poiesic/quaerit/retrieval"
	"github.com/poiesic/quaerit/router"
	"github.com/poiesic/quaerit/storage"
	"github.com/poiesic/quaerit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDomains = []core.Domain{"policy", "legal", "technical"}

type testEnv struct {
	pipeline *Pipeline
	chat     *mock.MockChatModel
	provider *mock.MockProvider
	store    storage.IndexStore
}

// newTestEnv wires a full pipeline over in-memory storage and mock models.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(); backend.Close() })

	chat := mock.NewMockChatModel()
	embedders := make(map[core.Domain]*mock.MockEmbedder, len(testDomains))
	for _, domain := range testDomains {
		embedders[domain] = mock.NewMockEmbedder()
	}
	provider := mock.NewMockProviderWithServices(embedders, chat)

	queryRouter, err := router.NewRouter(provider)
	require.NoError(t, err)
	retriever, err := retrieval.NewRetriever(store, provider)
	require.NoError(t, err)
	generator, err := generation.NewGenerator(provider)
	require.NoError(t, err)
	answerJudge, err := judge.NewJudge(provider)
	require.NoError(t, err)

	p, err := NewPipeline(queryRouter, retriever, generator, answerJudge, provider, "policy")
	require.NoError(t, err)

	return &testEnv{
		pipeline: p,
		chat:     chat,
		provider: provider.(*mock.MockProvider),
		store:    store,
	}
}

// seed inserts passages embedded with the domain's own mock embedder and
// returns their chunks.
func (e *testEnv) seed(t *testing.T, domain core.Domain, texts ...string) []*core.Chunk {
	t.Helper()
	ctx := context.Background()
	embedder := e.provider.GetMockEmbedder(domain)

	var chunks []*core.Chunk
	for _, text := range texts {
		vector, err := embedder.EmbedText(ctx, text)
		require.NoError(t, err)
		chunk := &core.Chunk{Id: core.IDFromContent(text), Text: text, Domain: domain}
		require.NoError(t, e.store.Insert(ctx, chunk, vector))
		chunks = append(chunks, chunk)
	}
	embedder.Reset()
	return chunks
}

func routeJSON(domain string, confidence float64) string {
	return fmt.Sprintf(`{"domain": %q, "confidence": %v, "rationale": "test routing"}`, domain, confidence)
}

func answerJSON(text string, ids ...core.ID) string {
	idList := ""
	for i, id := range ids {
		if i > 0 {
			idList += ", "
		}
		idList += fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf(`{"answer": %q, "cited_chunk_ids": [%s], "insufficient_evidence": false}`, text, idList)
}

const scoresJSON = `{"faithfulness": 5, "completeness": 5, "hallucination": 1, "reasoning": "grounded"}`

// recordingMonitor captures the order of pipeline callbacks.
type recordingMonitor struct {
	events []string
	states []State
}

func (m *recordingMonitor) Start(_ string)                        { m.events = append(m.events, "start") }
func (m *recordingMonitor) StateChange(_, to State)               { m.states = append(m.states, to) }
func (m *recordingMonitor) AfterRouting(_ core.RoutingDecision)   { m.events = append(m.events, "routing") }
func (m *recordingMonitor) AfterRetrieval(_ core.RetrievalResult) { m.events = append(m.events, "retrieval") }
func (m *recordingMonitor) AfterGeneration(_ core.Answer)         { m.events = append(m.events, "generation") }
func (m *recordingMonitor) AfterEvaluation(_ *core.Evaluation)    { m.events = append(m.events, "evaluation") }
func (m *recordingMonitor) Finish(_ *core.QueryResult)            { m.events = append(m.events, "finish") }

func TestNewPipeline_Validation(t *testing.T) {
	env := newTestEnv(t)

	t.Run("default domain must be registered", func(t *testing.T) {
		provider := mock.NewMockProvider(testDomains...)
		queryRouter, err := router.NewRouter(provider)
		require.NoError(t, err)
		retriever, err := retrieval.NewRetriever(env.store, provider)
		require.NoError(t, err)
		generator, err := generation.NewGenerator(provider)
		require.NoError(t, err)
		answerJudge, err := judge.NewJudge(provider)
		require.NoError(t, err)

		_, err = NewPipeline(queryRouter, retriever, generator, answerJudge, provider, "finance")
		assert.Equal(t, ErrInvalidDefaultDomain, err)
	})

	t.Run("invalid confidence option", func(t *testing.T) {
		provider := mock.NewMockProvider(testDomains...)
		queryRouter, err := router.NewRouter(provider)
		require.NoError(t, err)
		retriever, err := retrieval.NewRetriever(env.store, provider)
		require.NoError(t, err)
		generator, err := generation.NewGenerator(provider)
		require.NoError(t, err)
		answerJudge, err := judge.NewJudge(provider)
		require.NoError(t, err)

		_, err = NewPipeline(queryRouter, retriever, generator, answerJudge, provider, "policy",
			WithMinRouteConfidence(1.5))
		assert.True(t, errors.Is(err, core.ErrInvalidConfidence))
	})
}

func TestRun_VacationDaysScenario(t *testing.T) {
	env := newTestEnv(t)
	chunks := env.seed(t, "policy",
		"Employees receive 25 vacation days per year.",
		"Remote work requires manager approval.")
	vacationChunk := chunks[0]

	env.chat.
		QueueResponse(routeJSON("policy", 0.95)).
		QueueResponse(answerJSON("Employees get 25 vacation days per year.", vacationChunk.Id)).
		QueueResponse(scoresJSON)

	monitor := &recordingMonitor{}
	result, err := env.pipeline.RunWithMonitor(context.Background(), "How many vacation days do I get?", Options{}, monitor)
	require.NoError(t, err)

	assert.Equal(t, core.Domain("policy"), result.Routing.Domain)
	assert.False(t, result.Routing.Fallback)

	assert.False(t, result.Answer.Refused)
	assert.Contains(t, result.Answer.Text, "25 vacation days")
	assert.Equal(t, []core.ID{vacationChunk.Id}, result.Answer.CitedChunkIDs)
	assert.True(t, result.Retrieved.Contains(vacationChunk.Id))

	require.NotNil(t, result.Evaluation)
	assert.False(t, result.Evaluation.Unscored)
	assert.InDelta(t, 5.0, result.Evaluation.Overall, 1e-9)

	assert.Equal(t, []string{"start", "routing", "retrieval", "generation", "evaluation", "finish"}, monitor.events)
	assert.Equal(t, []State{StateRouting, StateRetrieving, StateGenerating, StateEvaluating, StateDone}, monitor.states)
}

func TestRun_EmptyDomainRefuses(t *testing.T) {
	env := newTestEnv(t)
	// The legal domain exists in the registry but holds no chunks

	env.chat.QueueResponse(routeJSON("legal", 0.9))

	result, err := env.pipeline.Run(context.Background(), "What are the termination clauses?", Options{})
	require.NoError(t, err)

	assert.Equal(t, core.Domain("legal"), result.Routing.Domain)
	assert.True(t, result.Answer.Refused)
	assert.Equal(t, core.RefusalText, result.Answer.Text)
	assert.Empty(t, result.Answer.CitedChunkIDs)
	assert.True(t, result.Retrieved.Empty())

	// Refusal with no context is unscorable, and neither the generator nor
	// the judge burned a model call on it
	require.NotNil(t, result.Evaluation)
	assert.True(t, result.Evaluation.Unscored)
	assert.Equal(t, 1, env.chat.CallCount())
}

func TestRun_RoutingFailureFallsBack(t *testing.T) {
	env := newTestEnv(t)
	chunks := env.seed(t, "policy", "The default domain still answers.")

	env.chat.
		QueueResponse("garbage").
		QueueResponse("more garbage").
		QueueResponse(answerJSON("An answer from the default domain.", chunks[0].Id)).
		QueueResponse(scoresJSON)

	result, err := env.pipeline.Run(context.Background(), "ambiguous question", Options{})
	require.NoError(t, err)

	assert.Equal(t, core.Domain("policy"), result.Routing.Domain)
	assert.Equal(t, 0.0, result.Routing.Confidence)
	assert.True(t, result.Routing.Fallback)
	assert.False(t, result.Answer.Refused)
}

func TestRun_UnknownDomainFallsBack(t *testing.T) {
	env := newTestEnv(t)
	chunks := env.seed(t, "policy", "Some policy content.")

	env.chat.
		QueueResponse(`{"domain": "unknown", "confidence": 0.4, "rationale": "Query fits no domain."}`).
		QueueResponse(answerJSON("Best-effort answer.", chunks[0].Id)).
		QueueResponse(scoresJSON)

	result, err := env.pipeline.Run(context.Background(), "something about cooking", Options{})
	require.NoError(t, err)

	assert.Equal(t, core.Domain("policy"), result.Routing.Domain)
	assert.True(t, result.Routing.Fallback)
	// The router's own assessment is preserved through the fallback
	assert.InDelta(t, 0.4, result.Routing.Confidence, 1e-9)
	assert.Equal(t, "Query fits no domain.", result.Routing.Rationale)
}

func TestRun_LowConfidenceFallsBack(t *testing.T) {
	env := newTestEnv(t)
	chunks := env.seed(t, "policy", "Fallback domain content.")

	env.chat.
		QueueResponse(routeJSON("technical", 0.05)).
		QueueResponse(answerJSON("Answered from the default domain.", chunks[0].Id)).
		QueueResponse(scoresJSON)

	result, err := env.pipeline.Run(context.Background(), "vague question", Options{})
	require.NoError(t, err)

	assert.Equal(t, core.Domain("policy"), result.Routing.Domain)
	assert.True(t, result.Routing.Fallback)
	assert.InDelta(t, 0.05, result.Routing.Confidence, 1e-9)
}

func TestRun_GenerationFailureIsFatal(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "policy", "Some content.")

	env.chat.
		QueueResponse(routeJSON("policy", 0.9)).
		QueueError(errors.New("model crashed"))

	_, err := env.pipeline.Run(context.Background(), "anything", Options{})
	require.Error(t, err)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StateGenerating, stageErr.Stage)
	assert.True(t, errors.Is(err, generation.ErrGenerationFailed))
}

func TestRun_JudgeFailureDoesNotFailQuery(t *testing.T) {
	env := newTestEnv(t)
	chunks := env.seed(t, "policy", "Some content.")

	env.chat.
		QueueResponse(routeJSON("policy", 0.9)).
		QueueResponse(answerJSON("A fine answer.", chunks[0].Id)).
		QueueError(errors.New("judge down"))

	result, err := env.pipeline.Run(context.Background(), "anything", Options{})
	require.NoError(t, err)

	assert.False(t, result.Answer.Refused)
	require.NotNil(t, result.Evaluation)
	assert.True(t, result.Evaluation.Unscored)
}

func TestRun_SkipEvaluation(t *testing.T) {
	env := newTestEnv(t)
	chunks := env.seed(t, "policy", "Some content.")

	env.chat.
		QueueResponse(routeJSON("policy", 0.9)).
		QueueResponse(answerJSON("A fine answer.", chunks[0].Id))

	result, err := env.pipeline.Run(context.Background(), "anything", Options{SkipEvaluation: true})
	require.NoError(t, err)

	assert.Nil(t, result.Evaluation)
	// Routing and generation only
	assert.Equal(t, 2, env.chat.CallCount())
}

func TestRun_KLimitsRetrieval(t *testing.T) {
	env := newTestEnv(t)
	var texts []string
	for i := 0; i < 8; i++ {
		texts = append(texts, fmt.Sprintf("Policy passage number %d.", i))
	}
	chunks := env.seed(t, "policy", texts...)

	env.chat.
		QueueResponse(routeJSON("policy", 0.9)).
		QueueResponse(answerJSON("An answer.", chunks[0].Id)).
		QueueResponse(scoresJSON)

	result, err := env.pipeline.Run(context.Background(), "policies?", Options{K: 2})
	require.NoError(t, err)
	assert.Len(t, result.Retrieved.Chunks, 2)
}

func TestRun_EmptyQuery(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.pipeline.Run(context.Background(), "", Options{})
	require.Error(t, err)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.True(t, errors.Is(err, ErrEmptyQuery))
}

func TestRun_CanceledContext(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "policy", "Some content.")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.pipeline.Run(ctx, "anything", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_ConcurrentQueries(t *testing.T) {
	env := newTestEnv(t)
	chunks := env.seed(t, "policy", "Shared policy content.")

	const n = 4
	for i := 0; i < n; i++ {
		env.chat.
			QueueResponse(routeJSON("policy", 0.9)).
			QueueResponse(answerJSON("An answer.", chunks[0].Id))
	}

	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := env.pipeline.Run(context.Background(), "anything", Options{SkipEvaluation: true})
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		assert.NoError(t, <-errs)
	}
}
