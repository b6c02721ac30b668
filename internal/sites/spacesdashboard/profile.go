package spacesdashboard

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Selectors locates every piece of a leaderboard row. The values are
// CSS and match the page as deployed; when the site restyles, a profile
// file can override individual fields without a rebuild.
type Selectors struct {
	// RowStrategies are tried in order until one matches anything. The
	// first is precise, the later ones increasingly permissive.
	RowStrategies []string `yaml:"row_strategies"`

	HostName      string `yaml:"host_name"`
	HostHandle    string `yaml:"host_handle"`
	HostImage     string `yaml:"host_image"`
	HostFollowers string `yaml:"host_followers"`
	TitleLink     string `yaml:"title_link"`
	DetailSpans   string `yaml:"detail_spans"`
	LanguageFlag  string `yaml:"language_flag"`
	Listener      string `yaml:"listener"`
	PlayLink      string `yaml:"play_link"`
	Topics        string `yaml:"topics"`
	Avatars       string `yaml:"avatars"`
}

// Timeouts holds the wait budgets in milliseconds. Field-level budgets
// derive from the locator budget so one override rescales them all.
type Timeouts struct {
	// LocatorMS is the full budget for fields that must exist.
	LocatorMS int `yaml:"locator_ms"`
	// InitialWaitMS is the settle pause right after navigation.
	InitialWaitMS int `yaml:"initial_wait_ms"`
	// SettleMS is the pause between a scroll and the next extraction.
	SettleMS int `yaml:"settle_ms"`
	// ProbeMS is the short budget for optional decorations.
	ProbeMS int `yaml:"probe_ms"`
	// FallbackMS bounds the identity salvage attempt on a broken row.
	FallbackMS int `yaml:"fallback_ms"`
}

// Locator is the full budget for required fields.
func (t Timeouts) Locator() time.Duration { return ms(t.LocatorMS) }

// Field is the per-field budget, a fifth of the locator budget.
func (t Timeouts) Field() time.Duration { return ms(t.LocatorMS) / 5 }

// Half is the mid budget used for cells that are usually present.
func (t Timeouts) Half() time.Duration { return ms(t.LocatorMS) / 2 }

// InitialWait is the post-navigation settle pause.
func (t Timeouts) InitialWait() time.Duration { return ms(t.InitialWaitMS) }

// Settle is the post-scroll pause.
func (t Timeouts) Settle() time.Duration { return ms(t.SettleMS) }

// Probe is the short existence check for optional decorations.
func (t Timeouts) Probe() time.Duration { return ms(t.ProbeMS) }

// Fallback bounds the identity salvage attempt.
func (t Timeouts) Fallback() time.Duration { return ms(t.FallbackMS) }

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Profile bundles everything site-specific about the leaderboard page.
type Profile struct {
	Selectors Selectors `yaml:"selectors"`
	Timeouts  Timeouts  `yaml:"timeouts"`
}

// DefaultProfile returns the built-in profile for spacesdashboard.com.
func DefaultProfile() *Profile {
	return &Profile{
		Selectors: Selectors{
			RowStrategies: []string{
				`tbody.bg-white.divide-y.divide-gray-20 tr.hidden.md\:table-row`,
				`tbody tr`,
				`table tr`,
			},
			HostName:      `td:nth-child(1) div.ml-4 div.text-sm.font-medium a`,
			HostHandle:    `td:nth-child(1) div.ml-4 div.text-sm.text-gray-500 a`,
			HostImage:     `td:nth-child(1) a img`,
			HostFollowers: `td:nth-child(1) div.ml-4 div.text-sm.text-gray-500 span.bg-blue-100`,
			TitleLink:     `td:nth-child(2) div.text-md a`,
			DetailSpans:   `td:nth-child(2) div.text-sm.text-gray-400 span`,
			LanguageFlag:  `td:nth-child(2) div.text-sm.text-gray-400 span:nth-child(1) img`,
			Listener:      `td:nth-child(3) span`,
			PlayLink:      `td:nth-child(5) div a[href*="x.com/i/spaces/"]`,
			Topics:        `td:nth-child(2) div.flex.items-center.flex-wrap a`,
			Avatars:       `td:nth-child(2) div.hidden.lg\:block div.flex a img`,
		},
		Timeouts: Timeouts{
			LocatorMS:     20000,
			InitialWaitMS: 5000,
			SettleMS:      5000,
			ProbeMS:       100,
			FallbackMS:    500,
		},
	}
}

// LoadProfile returns the default profile, overlaid with the YAML file
// at path when one is given. Fields absent from the file keep their
// defaults.
func LoadProfile(path string) (*Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	// Row discovery indexes the strategy list, so a file may narrow it
	// but never clear it.
	if len(profile.Selectors.RowStrategies) == 0 {
		return nil, fmt.Errorf("profile %s: row_strategies must list at least one selector", path)
	}
	return profile, nil
}
