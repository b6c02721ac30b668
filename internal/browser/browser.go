// Package browser manages the lifecycle of a local Chromium instance.
package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config controls how the browser is launched.
type Config struct {
	// ProxyURL routes all browser traffic through a proxy when set,
	// e.g. http://127.0.0.1:7890.
	ProxyURL string
	// Headless hides the browser UI. Turn it off to watch a scrape.
	Headless bool
}

// Browser wraps a launched rod browser together with its launcher so
// both are torn down as one.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// New launches a Chromium instance and connects to it.
func New(cfg Config) (*Browser, error) {
	l := launcher.New().Headless(cfg.Headless)
	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Browser{browser: b, launcher: l}, nil
}

// NewPage creates a blank page.
func (b *Browser) NewPage() (*rod.Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Close disconnects from the browser and kills the launched process.
func (b *Browser) Close() error {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	return nil
}
