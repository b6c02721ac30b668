package leaderboard

// Candidate is one raw extraction result prior to dedup. Implementations
// derive their own identity key; an empty key means the candidate holds
// nothing usable and is dropped at merge time.
type Candidate interface {
	// Key returns the dedup identity, or "" when none can be derived.
	Key() string
}

// Entry is the schema-validated shape returned by the agent backend.
// Every field is optional; extraction upstream is best-effort.
type Entry struct {
	SpaceTitle     string `json:"spaceTitle,omitempty"`
	HostProfileURL string `json:"hostProfileUrl,omitempty"`
	DirectSpaceURL string `json:"directSpaceUrl,omitempty"`
}

// Key prefers the direct space URL. The (title, host) composite applies
// only when both parts are present.
func (e Entry) Key() string {
	if e.DirectSpaceURL != "" {
		return e.DirectSpaceURL
	}
	if e.SpaceTitle != "" && e.HostProfileURL != "" {
		return e.SpaceTitle + "|" + e.HostProfileURL
	}
	return ""
}

// LinkGuess is the degraded shape recovered from raw agent text when no
// structured payload survived. The field name keeps the guess explicit
// for downstream consumers.
type LinkGuess struct {
	SpaceTitle      string `json:"spaceTitle,omitempty"`
	DirectLinkGuess string `json:"direct_link_guess,omitempty"`
}

// Key uses the guessed URL; without it the guess carries no identity.
func (g LinkGuess) Key() string {
	return g.DirectLinkGuess
}

// SpaceRecord is the full row shape produced by the DOM backend. Numeric
// fields stay nil when the page showed no digits, which is distinct from
// a real zero.
type SpaceRecord struct {
	HostName          string   `json:"host_name,omitempty"`
	HostHandle        string   `json:"host_handle,omitempty"`
	HostProfileURL    string   `json:"host_profile_url,omitempty"`
	HostImageURL      string   `json:"host_image_url,omitempty"`
	HostFollowerCount *int     `json:"host_follower_count,omitempty"`
	SpaceTitle        string   `json:"space_title,omitempty"`
	SpaceDetailsURL   string   `json:"space_details_url,omitempty"`
	LanguageFlagURL   string   `json:"space_language_flag_url,omitempty"`
	EndedTime         string   `json:"space_ended_time,omitempty"`
	SpeakersCount     *int     `json:"space_speakers_count,omitempty"`
	SpeakerFollowers  *int     `json:"space_speaker_followers,omitempty"`
	Duration          string   `json:"space_duration,omitempty"`
	ListenerCount     *int     `json:"listener_count,omitempty"`
	DirectPlayURL     string   `json:"direct_play_url,omitempty"`
	Topics            []string `json:"topics,omitempty"`
	SpeakerAvatarURLs []string `json:"speaker_avatar_urls,omitempty"`
}

// Key walks the fallback chain: detail URL, then play URL, then the
// handle-title composite when both parts are present.
func (r *SpaceRecord) Key() string {
	if r.SpaceDetailsURL != "" {
		return r.SpaceDetailsURL
	}
	if r.DirectPlayURL != "" {
		return r.DirectPlayURL
	}
	if r.HostHandle != "" && r.SpaceTitle != "" {
		return r.HostHandle + "-" + r.SpaceTitle
	}
	return ""
}
