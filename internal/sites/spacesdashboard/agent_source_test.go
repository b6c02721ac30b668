package spacesdashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"spaceboard/internal/agent"
	"spaceboard/internal/leaderboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway scripts act responses per instruction round and records
// what was asked.
type fakeGateway struct {
	t            *testing.T
	extractQueue []agent.ActResult
	instructions []string
	schemas      []json.RawMessage
	scrolls      int
	ended        bool
}

func (g *fakeGateway) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"session_id": "sess-x"})
	})
	mux.HandleFunc("POST /v1/sessions/sess-x/act", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Instruction string          `json:"instruction"`
			Schema      json.RawMessage `json:"schema"`
		}
		require.NoError(g.t, json.NewDecoder(r.Body).Decode(&body))
		g.instructions = append(g.instructions, body.Instruction)
		g.schemas = append(g.schemas, body.Schema)

		if body.Instruction == scrollPrompt {
			g.scrolls++
			writeJSON(w, agent.ActResult{Raw: "scrolled"})
			return
		}

		require.NotEmpty(g.t, g.extractQueue, "more extract rounds than scripted")
		res := g.extractQueue[0]
		g.extractQueue = g.extractQueue[1:]
		writeJSON(w, res)
	})
	mux.HandleFunc("DELETE /v1/sessions/sess-x", func(w http.ResponseWriter, r *http.Request) {
		g.ended = true
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newAgentSource(t *testing.T, gateway *fakeGateway) *agentSource {
	t.Helper()
	srv := httptest.NewServer(gateway.handler())
	t.Cleanup(srv.Close)

	client, err := agent.New(agent.Config{BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)

	return &agentSource{client: client, startURL: DefaultURL, headless: true}
}

func entriesResult(urls ...string) agent.ActResult {
	type entry struct {
		DirectSpaceURL string `json:"directSpaceUrl"`
	}
	entries := make([]entry, 0, len(urls))
	for _, u := range urls {
		entries = append(entries, entry{DirectSpaceURL: u})
	}
	parsed, _ := json.Marshal(map[string]any{"entries": entries})
	return agent.ActResult{Parsed: parsed, MatchesSchema: true}
}

func TestAgentSourceExtract(t *testing.T) {
	gateway := &fakeGateway{t: t, extractQueue: []agent.ActResult{
		entriesResult("https://x.com/i/spaces/1", "https://x.com/i/spaces/2"),
	}}
	source := newAgentSource(t, gateway)
	ctx := context.Background()

	require.NoError(t, source.Load(ctx))
	candidates, err := source.Extract(ctx, 0)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "https://x.com/i/spaces/1", candidates[0].Key())

	// The canned prompt and schema went over the wire as-is.
	require.Len(t, gateway.instructions, 1)
	assert.Equal(t, extractionPrompt, gateway.instructions[0])
	assert.JSONEq(t, string(leaderboardSchema), string(gateway.schemas[0]))
}

func TestAgentSourceExtractAgentError(t *testing.T) {
	gateway := &fakeGateway{t: t, extractQueue: []agent.ActResult{
		{Error: "could not find the leaderboard"},
	}}
	source := newAgentSource(t, gateway)
	ctx := context.Background()

	require.NoError(t, source.Load(ctx))
	candidates, err := source.Extract(ctx, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find the leaderboard")
	assert.Empty(t, candidates)
}

func TestAgentSourceExtractOffSchemaFallsBackToRaw(t *testing.T) {
	gateway := &fakeGateway{t: t, extractQueue: []agent.ActResult{
		{
			MatchesSchema: false,
			Raw:           `The page lists "Morning Show" - https://x.com/i/spaces/raw1 among others.`,
		},
	}}
	source := newAgentSource(t, gateway)
	ctx := context.Background()

	require.NoError(t, source.Load(ctx))
	candidates, err := source.Extract(ctx, 0)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	guess, ok := candidates[0].(leaderboard.LinkGuess)
	require.True(t, ok)
	assert.Equal(t, "Morning Show", guess.SpaceTitle)
	assert.Equal(t, "https://x.com/i/spaces/raw1", guess.DirectLinkGuess)
}

func TestAgentSourceAdvanceScrolls(t *testing.T) {
	gateway := &fakeGateway{t: t}
	source := newAgentSource(t, gateway)
	ctx := context.Background()

	require.NoError(t, source.Load(ctx))
	require.NoError(t, source.Advance(ctx))

	assert.Equal(t, 1, gateway.scrolls)
	// Scroll instructions carry no schema.
	require.Len(t, gateway.schemas, 1)
	assert.Empty(t, gateway.schemas[0])
}

func TestAgentSourceFullRun(t *testing.T) {
	// Two extraction rounds with overlap, driven by the shared loop:
	// round one misses the target, the agent scrolls, round two tops
	// it up. The session is closed afterwards either way.
	gateway := &fakeGateway{t: t, extractQueue: []agent.ActResult{
		entriesResult("https://x.com/i/spaces/1", "https://x.com/i/spaces/2"),
		entriesResult("https://x.com/i/spaces/2", "https://x.com/i/spaces/3"),
	}}
	source := newAgentSource(t, gateway)
	ctx := context.Background()

	acc := leaderboard.NewAccumulator()
	d := leaderboard.NewDriver(source, acc, leaderboard.Config{Target: 3, MaxScrolls: 5})

	require.NoError(t, d.Run(ctx))
	source.Close(ctx)

	assert.Equal(t, 3, acc.Size())
	assert.Equal(t, 1, gateway.scrolls)
	assert.Equal(t, 1, acc.Duplicates())
	assert.True(t, gateway.ended)
}
