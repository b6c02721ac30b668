package spacesdashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"spaceboard/internal/agent"
	"spaceboard/internal/leaderboard"
)

// extractionPrompt tells the agent what to pull off the page. The field
// names in the prompt and in the schema line up with the Entry shape.
const extractionPrompt = "Examine the list of Twitter Spaces on the leaderboard. " +
	"For each distinct entry, extract the following: " +
	"1. The main title or topic of the space (map to 'spaceTitle'). " +
	"2. The URL link to the host's profile (map to 'hostProfileUrl'). " +
	"3. The URL associated with the 'Play' button or icon for that specific space entry (map to 'directSpaceUrl'). " +
	"Return the results as a list of objects matching the provided schema."

const scrollPrompt = "Scroll down the page once."

// leaderboardSchema shapes the agent's answer. All fields are optional
// so partially rendered entries still come through.
var leaderboardSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"entries": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"spaceTitle":     {"type": "string"},
					"hostProfileUrl": {"type": "string"},
					"directSpaceUrl": {"type": "string"}
				}
			}
		}
	},
	"required": ["entries"]
}`)

// agentSource feeds the round driver from a remote agent session.
type agentSource struct {
	client   *agent.Client
	startURL string
	headless bool
}

// Load opens the agent's browser session on the leaderboard.
func (s *agentSource) Load(ctx context.Context) error {
	return s.client.Start(ctx, s.startURL, s.headless)
}

// Extract asks the agent for the visible entries and normalizes
// whatever shape comes back.
func (s *agentSource) Extract(ctx context.Context, round int) ([]leaderboard.Candidate, error) {
	res, err := s.client.Act(ctx, extractionPrompt, leaderboardSchema)
	if err != nil {
		return nil, err
	}
	if res.Error != "" {
		return nil, fmt.Errorf("agent reported: %s", res.Error)
	}
	if !res.MatchesSchema {
		slog.Debug("agent payload off schema, sniffing shape", "round", round)
	}
	return leaderboard.Normalize(res.Parsed, res.Raw), nil
}

// Advance asks the agent to scroll.
func (s *agentSource) Advance(ctx context.Context) error {
	res, err := s.client.Act(ctx, scrollPrompt, nil)
	if err != nil {
		return err
	}
	if res.Error != "" {
		return fmt.Errorf("agent reported: %s", res.Error)
	}
	return nil
}

// Close ends the agent session; safe to call regardless of how far the
// run got.
func (s *agentSource) Close(ctx context.Context) {
	if err := s.client.End(ctx); err != nil {
		slog.Warn("failed to end agent session", "error", err)
	}
}
