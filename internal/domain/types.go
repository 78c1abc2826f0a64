package domain

import (
	"strings"
	"time"
)

// EndpointID names a group of interchangeable relay servers, e.g. "alz2h".
type EndpointID string

// String returns the string form of the endpoint identifier.
func (id EndpointID) String() string { return string(id) }

// KeyPair is what the relay hands out from GET /keys.
type KeyPair struct {
	Private string `json:"private"`
	Public  string `json:"public"`
}

// KeyRecord is a key pair remembered locally under an alias.
type KeyRecord struct {
	Alias     string     `json:"alias" yaml:"alias"`
	Private   string     `json:"private" yaml:"private"`
	Public    string     `json:"public,omitempty" yaml:"public,omitempty"`
	Endpoint  EndpointID `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
}

// Encoding selects how a publish payload is serialised.
type Encoding int

const (
	EncodingText Encoding = iota
	EncodingJSON
	EncodingForm
)

// ContentType returns the MIME type sent for e.
func (e Encoding) ContentType() string {
	switch e {
	case EncodingJSON:
		return "application/json"
	case EncodingForm:
		return "application/x-www-form-urlencoded"
	default:
		return "text/plain"
	}
}

func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingForm:
		return "form"
	default:
		return "text"
	}
}

// ParseEncoding maps "json", "form" or "text" to an Encoding.
func ParseEncoding(s string) (Encoding, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return EncodingJSON, true
	case "form", "formdata":
		return EncodingForm, true
	case "text", "":
		return EncodingText, true
	}
	return EncodingText, false
}

// CallOptions carries per-call knobs shared by every relay operation.
// A zero Timeout means no deadline beyond the caller's context.
type CallOptions struct {
	Timeout time.Duration
}

// SyncOptions configures a private sync.
type SyncOptions struct {
	Webhook string
	Timeout time.Duration
}

// PublishOptions configures a publish.
type PublishOptions struct {
	Field    string // optional sub-path under the key
	Password string // protects the published data when set
	Timeout  time.Duration
}

// SecretOptions configures unpublish and renew. Secret targets the
// password-protected copy instead of the public one.
type SecretOptions struct {
	Secret  bool
	Timeout time.Duration
}
