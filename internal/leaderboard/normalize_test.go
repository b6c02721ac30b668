package leaderboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlainList(t *testing.T) {
	payload := json.RawMessage(`[
		{"spaceTitle": "AI Night", "directSpaceUrl": "https://x.com/i/spaces/1"},
		{"spaceTitle": "Crypto Hour", "hostProfileUrl": "https://x.com/host"}
	]`)

	got := Normalize(payload, "")

	require.Len(t, got, 2)
	assert.Equal(t, Entry{SpaceTitle: "AI Night", DirectSpaceURL: "https://x.com/i/spaces/1"}, got[0])
	assert.Equal(t, Entry{SpaceTitle: "Crypto Hour", HostProfileURL: "https://x.com/host"}, got[1])
}

func TestNormalizeEntriesField(t *testing.T) {
	payload := json.RawMessage(`{"entries": [{"spaceTitle": "AI Night", "directSpaceUrl": "https://x.com/i/spaces/1"}]}`)

	got := Normalize(payload, "")

	require.Len(t, got, 1)
	assert.Equal(t, "https://x.com/i/spaces/1", got[0].Key())
}

func TestNormalizeFirstListValuedField(t *testing.T) {
	// No entries field: the first list-typed value in document order
	// wins, not an arbitrary map-iteration pick.
	payload := json.RawMessage(`{
		"note": "scraped ok",
		"results": [{"spaceTitle": "First"}],
		"extra": [{"spaceTitle": "Second"}]
	}`)

	got := Normalize(payload, "")

	require.Len(t, got, 1)
	assert.Equal(t, Entry{SpaceTitle: "First"}, got[0])
}

func TestNormalizeEntriesFieldIsAuthoritative(t *testing.T) {
	// A non-list entries value yields nothing rather than falling
	// through to some other list in the same object.
	payload := json.RawMessage(`{"entries": "oops", "results": [{"spaceTitle": "Hidden"}]}`)

	got := Normalize(payload, "")

	assert.Empty(t, got)
}

func TestNormalizeRawTextFallback(t *testing.T) {
	raw := `Here is what I found:
1. "Morning Show" - https://example.com/spaces/a
2. "Market Recap" - https://example.com/spaces/b`

	got := Normalize(nil, raw)

	require.Len(t, got, 2)
	assert.Equal(t, LinkGuess{SpaceTitle: "Morning Show", DirectLinkGuess: "https://example.com/spaces/a"}, got[0])
	assert.Equal(t, LinkGuess{SpaceTitle: "Market Recap", DirectLinkGuess: "https://example.com/spaces/b"}, got[1])
}

func TestNormalizeFallbackOnlyWhenStructuredIsEmpty(t *testing.T) {
	payload := json.RawMessage(`{"entries": [{"directSpaceUrl": "https://x.com/i/spaces/1"}]}`)
	raw := `"Decoy" - https://example.com/decoy`

	got := Normalize(payload, raw)

	require.Len(t, got, 1)
	assert.IsType(t, Entry{}, got[0])
}

func TestNormalizeEmptyStructuredUsesRaw(t *testing.T) {
	payload := json.RawMessage(`{"entries": []}`)
	raw := `"Rescued" - https://example.com/r`

	got := Normalize(payload, raw)

	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/r", got[0].Key())
}

func TestNormalizeJunkPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload json.RawMessage
	}{
		{"nil payload", nil},
		{"null literal", json.RawMessage(`null`)},
		{"number", json.RawMessage(`42`)},
		{"string", json.RawMessage(`"no list here"`)},
		{"object without lists", json.RawMessage(`{"count": 3, "ok": true}`)},
		{"malformed", json.RawMessage(`{"entries": [`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Normalize(tt.payload, ""))
		})
	}
}

func TestNormalizeSkipsNonObjectItems(t *testing.T) {
	payload := json.RawMessage(`[
		"stray string",
		{"spaceTitle": "Kept", "directSpaceUrl": "https://x.com/i/spaces/1"},
		7
	]`)

	got := Normalize(payload, "")

	require.Len(t, got, 1)
	assert.Equal(t, "https://x.com/i/spaces/1", got[0].Key())
}

func TestNormalizeFallbackCandidatesDedup(t *testing.T) {
	raw := `"Same" - https://example.com/x and again "Same" - https://example.com/x`

	acc := NewAccumulator()
	added := acc.Merge(Normalize(nil, raw))

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, acc.Duplicates())
}
