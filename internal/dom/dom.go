// Package dom narrows a browser page down to the handful of operations
// row extraction needs: scoped element lookup with an explicit budget,
// text and attribute reads, and a few page-level escape hatches. Keeping
// the surface this small lets extraction logic run against fakes.
package dom

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Handle is one element in the page. Lookups are scoped to the element,
// so selectors compose the way nested locators do.
type Handle interface {
	// Element waits up to timeout for the first descendant matching sel.
	Element(sel string, timeout time.Duration) (Handle, error)
	// Elements returns all current descendants matching sel, without
	// waiting for any to appear.
	Elements(sel string) ([]Handle, error)
	// Text returns the element's visible text.
	Text(timeout time.Duration) (string, error)
	// Attribute returns the named attribute, or "" when the attribute
	// is not set on the element.
	Attribute(name string, timeout time.Duration) (string, error)
	// HTML returns the element's outer HTML.
	HTML() (string, error)
}

// Page is the document-level view handed to a site client.
type Page interface {
	Element(sel string, timeout time.Duration) (Handle, error)
	Elements(sel string) ([]Handle, error)
	// Eval runs a JS function in the page and returns its result as
	// raw JSON.
	Eval(js string) (json.RawMessage, error)
	// ScrollToBottom jumps the viewport to the end of the document.
	ScrollToBottom() error
	// Screenshot captures the full page as PNG bytes.
	Screenshot() ([]byte, error)
	// BodyHTML returns the document body's outer HTML.
	BodyHTML() (string, error)
}

// IsTimeout reports whether err is a lookup that ran out its budget,
// which extraction treats as "field absent" rather than a broken row.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
