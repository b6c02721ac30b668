package spacesdashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spaceboard/internal/dom"
)

// fakeHandle is a static dom.Handle. Selectors resolve through the
// children map; anything unlisted behaves like a lookup that ran out
// its budget.
type fakeHandle struct {
	text     string
	attrs    map[string]string
	html     string
	children map[string][]*fakeHandle
	elemErrs map[string]error
	textErr  error
	panicOn  bool
}

func (h *fakeHandle) Element(sel string, timeout time.Duration) (dom.Handle, error) {
	if err := h.elemErrs[sel]; err != nil {
		return nil, err
	}
	if kids := h.children[sel]; len(kids) > 0 {
		return kids[0], nil
	}
	return nil, fmt.Errorf("element %q: %w", sel, context.DeadlineExceeded)
}

func (h *fakeHandle) Elements(sel string) ([]dom.Handle, error) {
	if err := h.elemErrs[sel]; err != nil {
		return nil, err
	}
	kids := h.children[sel]
	out := make([]dom.Handle, 0, len(kids))
	for _, k := range kids {
		out = append(out, k)
	}
	return out, nil
}

func (h *fakeHandle) Text(timeout time.Duration) (string, error) {
	if h.panicOn {
		panic("node detached during read")
	}
	if h.textErr != nil {
		return "", h.textErr
	}
	return h.text, nil
}

func (h *fakeHandle) Attribute(name string, timeout time.Duration) (string, error) {
	return h.attrs[name], nil
}

func (h *fakeHandle) HTML() (string, error) {
	return h.html, nil
}

// fakePage is a static dom.Page built from fake rows.
type fakePage struct {
	fakeHandle
	evalResult json.RawMessage
	evalErr    error
	bodyHTML   string
	shot       []byte
	scrolls    int
	scrollErr  error
}

func (p *fakePage) Eval(js string) (json.RawMessage, error) {
	if p.evalErr != nil {
		return nil, p.evalErr
	}
	return p.evalResult, nil
}

func (p *fakePage) ScrollToBottom() error {
	if p.scrollErr != nil {
		return p.scrollErr
	}
	p.scrolls++
	return nil
}

func (p *fakePage) Screenshot() ([]byte, error) {
	return p.shot, nil
}

func (p *fakePage) BodyHTML() (string, error) {
	return p.bodyHTML, nil
}

// fakeRow builds a fully populated leaderboard row under the default
// profile's selectors.
func fakeRow() *fakeHandle {
	sel := DefaultProfile().Selectors
	return &fakeHandle{
		html: "<tr><td>fake row</td></tr>",
		children: map[string][]*fakeHandle{
			sel.HostName:      {{text: "Space Host"}},
			sel.HostHandle:    {{text: "@host", attrs: map[string]string{"href": "https://x.com/host"}}},
			sel.HostImage:     {{attrs: map[string]string{"src": "https://pbs.twimg.com/host.jpg"}}},
			sel.HostFollowers: {{text: "2.3k followers"}},
			sel.TitleLink:     {{text: "AI Weekly", attrs: map[string]string{"href": "https://spacesdashboard.com/space/abc"}}},
			sel.DetailSpans: {
				{text: "Ended: Aug 20, 2026"},
				{text: "Speakers: 12"},
				{text: "Speaker followers: 45.2k"},
				{text: "Duration: 1h 30m"},
			},
			sel.LanguageFlag: {{attrs: map[string]string{"src": "https://spacesdashboard.com/flags/en.png"}}},
			sel.Listener:     {{text: "1,234"}},
			sel.PlayLink:     {{attrs: map[string]string{"href": "https://x.com/i/spaces/abc"}}},
			sel.Topics:       {{text: "AI"}, {text: "Tech"}},
			sel.Avatars: {
				{attrs: map[string]string{"src": "https://pbs.twimg.com/a1.jpg"}},
				{attrs: map[string]string{"src": "https://pbs.twimg.com/a2.jpg"}},
			},
		},
	}
}
