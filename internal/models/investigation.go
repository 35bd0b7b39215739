package models

import "time"

// TargetType discriminates the kind of identifier under investigation.
type TargetType string

const (
	TargetEmail TargetType = "email"
	TargetPhone TargetType = "phone"
)

// Target is the raw, user-supplied identifier. It is immutable once created.
type Target struct {
	Type  TargetType `json:"type"`
	Value string     `json:"value"`
}

// EmailTarget wraps a raw email address.
func EmailTarget(value string) Target {
	return Target{Type: TargetEmail, Value: value}
}

// PhoneTarget wraps a raw phone number.
func PhoneTarget(value string) Target {
	return Target{Type: TargetPhone, Value: value}
}

// LineType categorizes a phone number's numbering-plan assignment.
type LineType string

const (
	LineTypeMobile     LineType = "mobile"
	LineTypeLandline   LineType = "landline"
	LineTypeVOIP       LineType = "voip"
	LineTypeTollFree   LineType = "toll_free"
	LineTypePremium    LineType = "premium"
	LineTypeSharedCost LineType = "shared_cost"
	LineTypePersonal   LineType = "personal"
	LineTypePager      LineType = "pager"
	LineTypeUAN        LineType = "uan"
	LineTypeUnknown    LineType = "unknown"
)

// NormalizedPhone is the parsed, country-aware form of a phone target.
type NormalizedPhone struct {
	E164           string   `json:"e164"`
	International  string   `json:"international"`
	CountryCode    string   `json:"country_code"` // "+62" form
	NationalNumber string   `json:"national_number"`
	Valid          bool     `json:"valid"`    // matches a real assigned numbering plan
	Possible       bool     `json:"possible"` // plausible length/prefix only
	LineType       LineType `json:"line_type"`
	CountryName    string   `json:"country_name"`
	Region         string   `json:"region"`
	Timezone       string   `json:"timezone"`
	Carrier        string   `json:"carrier"`
}

// PresenceResult is one discovered account on a third-party platform.
// The profile URL is the identity key for deduplication (exact,
// case-sensitive match). Never mutated after creation.
type PresenceResult struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Exists   bool   `json:"exists"`
	Category string `json:"category"`
	Username string `json:"username,omitempty"`
}

// BreachInfo describes one known data breach an email appeared in.
type BreachInfo struct {
	Name      string   `json:"name"`
	Domain    string   `json:"domain"`
	Date      string   `json:"date"`
	DataTypes []string `json:"data_types"`
}

// GravatarProfile carries the Gravatar data recovered from scanner hits.
type GravatarProfile struct {
	URL         string `json:"url"`
	Hash        string `json:"hash"`
	DisplayName string `json:"display_name,omitempty"`
	ProfileURL  string `json:"profile_url,omitempty"`
}

// EmailReport is the aggregate result of one email investigation. It is
// owned by the coordinator while checks run and is immutable once
// returned.
type EmailReport struct {
	ID    string `json:"id"`
	Email string `json:"email"`

	Valid        bool `json:"valid"`
	FormatValid  bool `json:"format_valid"`
	MXValid      bool `json:"mx_valid"`
	Disposable   bool `json:"disposable"`
	FreeProvider bool `json:"free_provider"`
	Deliverable  bool `json:"deliverable"`

	// Breach fields are reserved for a future breach-index integration
	// and always carry defaults today.
	Breached    bool         `json:"breached"`
	BreachCount int          `json:"breach_count"`
	Breaches    []BreachInfo `json:"breaches"`

	Gravatar    *GravatarProfile `json:"gravatar,omitempty"`
	GravatarURL string           `json:"gravatar_url,omitempty"`

	SocialProfiles []PresenceResult `json:"social_profiles"`
	SocialCount    int              `json:"social_count"`

	CompletedAt time.Time `json:"completed_at"`
}

// PhoneReport is the aggregate result of one phone investigation.
type PhoneReport struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`

	Formatted      string   `json:"formatted"` // E.164
	International  string   `json:"international_format"`
	NationalNumber string   `json:"national_number"`
	CountryCode    string   `json:"country_code"`
	CountryName    string   `json:"country_name"`
	Region         string   `json:"region"`
	Timezone       string   `json:"timezone"`
	Carrier        string   `json:"carrier"`
	LineType       LineType `json:"line_type"`

	Valid    bool `json:"valid"`
	Possible bool `json:"possible"`

	Name         string `json:"name,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`

	WhatsApp bool `json:"whatsapp"`
	Telegram bool `json:"telegram"`
	// Signal and Viber expose no unauthenticated presence probe, so
	// these stay false until one exists.
	Signal bool `json:"signal"`
	Viber  bool `json:"viber"`

	CompletedAt time.Time `json:"completed_at"`
}
