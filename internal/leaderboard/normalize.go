package leaderboard

import (
	"bytes"
	"encoding/json"
	"regexp"
)

// guessPattern matches `"Some Title" - https://...` enumerations, the
// shape agents tend to produce when asked for a list but left without a
// schema to fill.
var guessPattern = regexp.MustCompile(`"([^"]+)"\s*-\s*(https?://[^\s"'<>]+)`)

// Normalize turns an agent act response into candidates. The structured
// payload is tried first in a fixed order: a plain list, then a
// mapping's "entries" field, then the mapping's first list-valued field
// in document order. Only when nothing structured survives does the raw
// text fallback run.
func Normalize(payload json.RawMessage, raw string) []Candidate {
	candidates := entriesFromJSON(payload)
	if len(candidates) == 0 && raw != "" {
		return entriesFromText(raw)
	}
	return candidates
}

func entriesFromJSON(payload json.RawMessage) []Candidate {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case '[':
		return entryList(trimmed)
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil
		}
		if entries, ok := fields["entries"]; ok {
			// An explicit entries field is authoritative even when it
			// turns out not to hold a list.
			return entryList(entries)
		}
		if list := firstListField(trimmed); list != nil {
			return entryList(list)
		}
	}
	return nil
}

// firstListField walks the object's fields in document order and returns
// the first list-typed value. Re-decoding the raw bytes keeps the order
// a parsed map would lose.
func firstListField(obj []byte) json.RawMessage {
	dec := json.NewDecoder(bytes.NewReader(obj))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil
		}
		if v := bytes.TrimSpace(value); len(v) > 0 && v[0] == '[' {
			return v
		}
	}
	return nil
}

// entryList decodes a JSON list into entries, dropping items that are
// not objects. Decodable but empty objects are kept so the merge step
// counts them as skipped rather than silently vanishing.
func entryList(data json.RawMessage) []Candidate {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		var entry Entry
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		candidates = append(candidates, entry)
	}
	return candidates
}

// entriesFromText recovers degraded title/link pairs from raw agent
// prose.
func entriesFromText(raw string) []Candidate {
	matches := guessPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	candidates := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, LinkGuess{
			SpaceTitle:      m[1],
			DirectLinkGuess: m[2],
		})
	}
	return candidates
}
