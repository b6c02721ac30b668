package spacesdashboard

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"spaceboard/internal/leaderboard"
)

var (
	// thousandsRe matches shorthand like "2.3k" or "12 K".
	thousandsRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[kK]\b`)
	// digitRunRe grabs the first run of digits once separators are
	// stripped.
	digitRunRe = regexp.MustCompile(`\d+`)
)

// parseCount pulls an integer out of display text like "1,234
// listeners" or "2.3k followers". It returns nil when the text holds no
// digits, keeping "no number shown" distinct from zero.
func parseCount(text string) *int {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	text = strings.ReplaceAll(text, ",", "")
	text = thousandsRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := thousandsRe.FindStringSubmatch(m)
		f, err := strconv.ParseFloat(sub[1], 64)
		if err != nil {
			return m
		}
		return strconv.Itoa(int(math.Round(f * 1000)))
	})

	digits := digitRunRe.FindString(text)
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &n
}

// cleanText collapses whitespace-only strings to empty.
func cleanText(s string) string {
	return strings.TrimSpace(s)
}

var monthTokens = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

func containsMonth(s string) bool {
	for _, m := range monthTokens {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// applyDetails classifies the detail-cell fragments onto the record.
// Labels are matched by prefix and the first fragment to claim a field
// keeps it; unlabelled fragments that look like a date fill the ended
// time as a heuristic.
func applyDetails(rec *leaderboard.SpaceRecord, fragments []string) {
	for _, fragment := range fragments {
		fragment = cleanText(fragment)
		if fragment == "" {
			continue
		}

		switch {
		case strings.HasPrefix(fragment, "Ended:"):
			if rec.EndedTime == "" {
				rec.EndedTime = cleanText(strings.TrimPrefix(fragment, "Ended:"))
			}
		case strings.HasPrefix(fragment, "Speaker followers:"):
			if rec.SpeakerFollowers == nil {
				rec.SpeakerFollowers = parseCount(fragment)
			}
		case strings.HasPrefix(fragment, "Speakers:"):
			if rec.SpeakersCount == nil {
				rec.SpeakersCount = parseCount(fragment)
			}
		case strings.HasPrefix(fragment, "Duration:"):
			if rec.Duration == "" {
				rec.Duration = cleanText(strings.TrimPrefix(fragment, "Duration:"))
			}
		default:
			if rec.EndedTime == "" && containsMonth(fragment) {
				rec.EndedTime = fragment
			}
		}
	}
}
