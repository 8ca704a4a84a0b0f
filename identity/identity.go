// Package identity derives the two per-visitor identifiers used to
// deduplicate analytics records: a persisted random anonymous id and a
// hashed device signature built from non-invasive environment hints.
// Browsers do not expose anything like a MAC address, so the signature
// combines several weak signals (UA, platform, languages, screen,
// timezone, IP) into a best-effort stable fingerprint, not a
// cryptographic identity.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"creperie/api/models"
)

// AnonCookieName holds the visitor's persisted anonymous id.
const AnonCookieName = "creperie-anon-id"

const anonCookieMaxAge = 400 * 24 * 60 * 60 // browser cap on cookie lifetime

// signatureVersion prefixes the hashed concatenation so the input
// layout can change without colliding with older fingerprints.
const signatureVersion = "v1"

// HashFunc hashes a signature payload to its hex form. Implementations
// may panic or return ""; the resolver then falls back to a weaker
// deterministic hash so a capture never fails on fingerprinting.
type HashFunc func([]byte) string

// SHA256Hex is the default signature hasher.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Resolver computes anonymous ids and device signatures.
type Resolver struct {
	hash  HashFunc
	newID func() string
}

func NewResolver() *Resolver {
	return &Resolver{hash: SHA256Hex, newID: uuid.NewString}
}

// WithHash overrides the signature hasher. Used by tests to exercise
// the fallback path.
func (r *Resolver) WithHash(h HashFunc) *Resolver {
	r.hash = h
	return r
}

// AnonID returns the visitor's persisted anonymous id, generating and
// persisting a fresh one on first sight. The id is stable for the
// lifetime of the cookie.
func (r *Resolver) AnonID(req *http.Request, w http.ResponseWriter) string {
	if c, err := req.Cookie(AnonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := r.newID()
	http.SetCookie(w, &http.Cookie{
		Name:     AnonCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   anonCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Signature hashes the versioned concatenation of the device
// attributes, user agent and IP. Two captures with identical inputs
// hash identically; changing any single input changes the hash. It
// never fails: if the configured hasher panics or yields nothing, a
// DJB2 rolling hash stands in.
func (r *Resolver) Signature(userAgent string, attrs models.DeviceAttributes, ip string) string {
	parts := []string{
		signatureVersion,
		userAgent,
		attrs.Platform,
		strings.Join(attrs.Languages, ","),
		itoaOrEmpty(attrs.CPUCount),
		ftoaOrEmpty(attrs.DeviceMemory),
		itoaOrEmpty(attrs.ScreenWidth),
		itoaOrEmpty(attrs.ScreenHeight),
		itoaOrEmpty(attrs.ColorDepth),
		attrs.Timezone,
		ip,
	}
	raw := []byte(strings.Join(parts, "|"))
	if out := r.hashSafe(raw); out != "" {
		return out
	}
	return djb2Hex(raw)
}

func (r *Resolver) hashSafe(b []byte) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	if r.hash == nil {
		return ""
	}
	return r.hash(b)
}

// djb2Hex is the degraded deterministic hash used when the primary
// hasher is unavailable.
func djb2Hex(b []byte) string {
	var h uint32 = 5381
	for _, c := range b {
		h = h<<5 + h + uint32(c)
	}
	return strconv.FormatUint(uint64(h), 16)
}

func itoaOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func ftoaOrEmpty(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
