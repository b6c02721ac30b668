package spacesdashboard

import (
	"fmt"
	"log/slog"
	"time"

	"spaceboard/internal/dom"
	"spaceboard/internal/leaderboard"
)

// rowFailure describes a row that could not be extracted. Key is always
// synthetic so failures never collide with real records, and Hint
// carries whatever identity could still be salvaged for the logs.
type rowFailure struct {
	Key  string
	Hint string
	Err  error
}

func syntheticRowID() string {
	return fmt.Sprintf("error_row_%d", time.Now().UnixNano())
}

// rowReader reads fields off one row, remembering the first hard
// failure. Lookups that merely run out their budget count as absent
// fields, not failures.
type rowReader struct {
	row dom.Handle
	err error
}

// note files an error from a lookup. Budget misses are expected on
// optional fields and only logged.
func (r *rowReader) note(sel string, err error) {
	if dom.IsTimeout(err) {
		slog.Debug("field not present", "selector", sel)
		return
	}
	if r.err == nil {
		r.err = err
	}
}

// text returns the trimmed text behind sel, or "" when absent.
func (r *rowReader) text(sel string, timeout time.Duration) string {
	el, err := r.row.Element(sel, timeout)
	if err != nil {
		r.note(sel, err)
		return ""
	}
	text, err := el.Text(timeout)
	if err != nil {
		r.note(sel, err)
		return ""
	}
	return cleanText(text)
}

// attr returns the named attribute behind sel, or "" when absent.
func (r *rowReader) attr(sel, name string, timeout time.Duration) string {
	el, err := r.row.Element(sel, timeout)
	if err != nil {
		r.note(sel, err)
		return ""
	}
	val, err := el.Attribute(name, timeout)
	if err != nil {
		r.note(sel, err)
		return ""
	}
	return cleanText(val)
}

// linkParts reads an anchor's text and href in one lookup.
func (r *rowReader) linkParts(sel string, timeout time.Duration) (string, string) {
	el, err := r.row.Element(sel, timeout)
	if err != nil {
		r.note(sel, err)
		return "", ""
	}
	text, err := el.Text(timeout)
	if err != nil {
		r.note(sel, err)
	}
	href, err := el.Attribute("href", timeout)
	if err != nil {
		r.note(sel, err)
	}
	return cleanText(text), cleanText(href)
}

// texts returns the trimmed texts of every element behind sel, skipping
// blanks.
func (r *rowReader) texts(sel string, timeout time.Duration) []string {
	els, err := r.row.Elements(sel)
	if err != nil {
		r.note(sel, err)
		return nil
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text(timeout)
		if err != nil {
			r.note(sel, err)
			continue
		}
		if text = cleanText(text); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// attrs returns the named attribute of every element behind sel,
// skipping blanks.
func (r *rowReader) attrs(sel, name string, timeout time.Duration) []string {
	els, err := r.row.Elements(sel)
	if err != nil {
		r.note(sel, err)
		return nil
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		val, err := el.Attribute(name, timeout)
		if err != nil {
			r.note(sel, err)
			continue
		}
		if val = cleanText(val); val != "" {
			out = append(out, val)
		}
	}
	return out
}

// extractRow pulls a full record out of one leaderboard row. Any hard
// failure, including a panic from the DOM layer, is converted into a
// rowFailure so one broken row never takes down the round.
func extractRow(row dom.Handle, profile *Profile) (rec *leaderboard.SpaceRecord, fail *rowFailure) {
	sel := profile.Selectors
	t := profile.Timeouts

	defer func() {
		if p := recover(); p != nil {
			rec = nil
			fail = &rowFailure{
				Key:  syntheticRowID(),
				Hint: salvageHint(row, profile),
				Err:  fmt.Errorf("row extraction panicked: %v", p),
			}
		}
	}()

	r := &rowReader{row: row}
	record := &leaderboard.SpaceRecord{}

	// Host cell. These fields come and go with the page's A/B variants,
	// so each gets only a slice of the full budget.
	record.HostName = r.text(sel.HostName, t.Field())
	record.HostHandle, record.HostProfileURL = r.linkParts(sel.HostHandle, t.Field())
	record.HostImageURL = r.attr(sel.HostImage, "src", t.Field())
	record.HostFollowerCount = parseCount(r.text(sel.HostFollowers, t.Field()))

	// Title cell. The title link anchors the record's identity, so it
	// gets the full budget.
	record.SpaceTitle, record.SpaceDetailsURL = r.linkParts(sel.TitleLink, t.Locator())

	applyDetails(record, r.texts(sel.DetailSpans, t.Field()))
	record.LanguageFlagURL = r.attr(sel.LanguageFlag, "src", t.Probe())

	record.ListenerCount = parseCount(r.text(sel.Listener, t.Half()))
	record.DirectPlayURL = r.attr(sel.PlayLink, "href", t.Probe())

	record.Topics = r.texts(sel.Topics, t.Field())
	record.SpeakerAvatarURLs = r.attrs(sel.Avatars, "src", t.Field())

	if r.err != nil {
		return nil, &rowFailure{
			Key:  syntheticRowID(),
			Hint: salvageHint(row, profile),
			Err:  r.err,
		}
	}
	return record, nil
}

// salvageHint makes one cheap attempt to identify a broken row for the
// logs.
func salvageHint(row dom.Handle, profile *Profile) string {
	el, err := row.Element(profile.Selectors.TitleLink, profile.Timeouts.Fallback())
	if err != nil {
		return ""
	}
	href, err := el.Attribute("href", profile.Timeouts.Fallback())
	if err != nil {
		return ""
	}
	return href
}
