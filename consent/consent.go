// Package consent implements the gate that suppresses all analytics
// capture until the visitor has explicitly opted in.
package consent

import "net/http"

// CookieName matches the consent cookie set by the website's banner.
const CookieName = "creperie-cookie-consent"

// State is the persisted tri-state consent choice.
type State string

const (
	Unset    State = ""
	Accepted State = "accepted"
	Rejected State = "rejected"
)

// Parse maps a raw persisted value onto the tri-state. Anything that is
// not an explicit accept or reject is treated as unset.
func Parse(raw string) State {
	switch State(raw) {
	case Accepted:
		return Accepted
	case Rejected:
		return Rejected
	default:
		return Unset
	}
}

// FromRequest reads the visitor's current consent choice. It is called
// on every capture attempt rather than cached, since the visitor may
// revoke consent between calls.
func FromRequest(r *http.Request) State {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Unset
	}
	return Parse(c.Value)
}

// Given reports whether capture is allowed. Only an explicit accept
// opens the gate.
func (s State) Given() bool {
	return s == Accepted
}
