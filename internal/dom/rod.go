package dom

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// RodPage adapts a rod page to the Page interface.
type RodPage struct {
	page *rod.Page
}

// NewRodPage wraps an already-navigated rod page.
func NewRodPage(page *rod.Page) *RodPage {
	return &RodPage{page: page}
}

func (p *RodPage) Element(sel string, timeout time.Duration) (Handle, error) {
	el, err := p.page.Timeout(timeout).Element(sel)
	if err != nil {
		return nil, fmt.Errorf("element %q: %w", sel, err)
	}
	return &RodHandle{el: el.CancelTimeout()}, nil
}

func (p *RodPage) Elements(sel string) ([]Handle, error) {
	els, err := p.page.Elements(sel)
	if err != nil {
		return nil, fmt.Errorf("elements %q: %w", sel, err)
	}
	handles := make([]Handle, 0, len(els))
	for _, el := range els {
		handles = append(handles, &RodHandle{el: el})
	}
	return handles, nil
}

func (p *RodPage) Eval(js string) (json.RawMessage, error) {
	val, err := p.page.Eval(js)
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}
	raw, err := val.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal eval result: %w", err)
	}
	return raw, nil
}

func (p *RodPage) ScrollToBottom() error {
	_, err := p.page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	if err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

func (p *RodPage) Screenshot() ([]byte, error) {
	return p.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (p *RodPage) BodyHTML() (string, error) {
	raw, err := p.Eval(`() => document.body ? document.body.outerHTML : ""`)
	if err != nil {
		return "", err
	}
	var html string
	if err := json.Unmarshal(raw, &html); err != nil {
		return "", fmt.Errorf("unexpected body payload: %w", err)
	}
	return html, nil
}

// RodHandle adapts a rod element to the Handle interface.
type RodHandle struct {
	el *rod.Element
}

func (h *RodHandle) Element(sel string, timeout time.Duration) (Handle, error) {
	el, err := h.el.Timeout(timeout).Element(sel)
	if err != nil {
		return nil, fmt.Errorf("element %q: %w", sel, err)
	}
	return &RodHandle{el: el.CancelTimeout()}, nil
}

func (h *RodHandle) Elements(sel string) ([]Handle, error) {
	els, err := h.el.Elements(sel)
	if err != nil {
		return nil, fmt.Errorf("elements %q: %w", sel, err)
	}
	handles := make([]Handle, 0, len(els))
	for _, el := range els {
		handles = append(handles, &RodHandle{el: el})
	}
	return handles, nil
}

func (h *RodHandle) Text(timeout time.Duration) (string, error) {
	text, err := h.el.Timeout(timeout).Text()
	if err != nil {
		return "", fmt.Errorf("text read: %w", err)
	}
	return text, nil
}

func (h *RodHandle) Attribute(name string, timeout time.Duration) (string, error) {
	val, err := h.el.Timeout(timeout).Attribute(name)
	if err != nil {
		return "", fmt.Errorf("attribute %q: %w", name, err)
	}
	if val == nil {
		return "", nil
	}
	return *val, nil
}

func (h *RodHandle) HTML() (string, error) {
	return h.el.HTML()
}
