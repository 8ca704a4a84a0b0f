package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"creperie/api/models"
)

var testAttrs = models.DeviceAttributes{
	Platform:     "MacIntel",
	Languages:    []string{"fr-FR", "fr", "en"},
	CPUCount:     8,
	DeviceMemory: 8,
	ScreenWidth:  1920,
	ScreenHeight: 1080,
	ColorDepth:   24,
	Timezone:     "Europe/Paris",
}

const testUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"

func TestSignatureStability(t *testing.T) {
	r := NewResolver()
	a := r.Signature(testUA, testAttrs, "203.0.113.5")
	b := r.Signature(testUA, testAttrs, "203.0.113.5")
	if a == "" {
		t.Fatal("signature should not be empty")
	}
	if a != b {
		t.Errorf("identical inputs produced different signatures: %q vs %q", a, b)
	}
}

func TestSignatureSensitivity(t *testing.T) {
	r := NewResolver()
	base := r.Signature(testUA, testAttrs, "203.0.113.5")

	mutations := map[string]string{
		"user agent": r.Signature(testUA+" X", testAttrs, "203.0.113.5"),
		"ip":         r.Signature(testUA, testAttrs, "203.0.113.6"),
	}
	attrs := testAttrs
	attrs.Timezone = "Europe/Berlin"
	mutations["timezone"] = r.Signature(testUA, attrs, "203.0.113.5")
	attrs = testAttrs
	attrs.ScreenWidth = 1280
	mutations["screen width"] = r.Signature(testUA, attrs, "203.0.113.5")
	attrs = testAttrs
	attrs.Languages = []string{"en-US"}
	mutations["languages"] = r.Signature(testUA, attrs, "203.0.113.5")

	for name, sig := range mutations {
		if sig == base {
			t.Errorf("changing %s did not change the signature", name)
		}
	}
}

func TestSignatureHashFallback(t *testing.T) {
	panicking := NewResolver().WithHash(func([]byte) string { panic("no crypto") })
	sig := panicking.Signature(testUA, testAttrs, "203.0.113.5")
	if sig == "" {
		t.Fatal("fallback hash should still produce a signature")
	}
	if sig2 := panicking.Signature(testUA, testAttrs, "203.0.113.5"); sig2 != sig {
		t.Error("fallback hash should be deterministic")
	}

	empty := NewResolver().WithHash(func([]byte) string { return "" })
	if got := empty.Signature(testUA, testAttrs, "203.0.113.5"); got == "" {
		t.Error("empty hasher output should fall back to the weak hash")
	}
}

func TestAnonIDPersisted(t *testing.T) {
	r := NewResolver()

	req := httptest.NewRequest(http.MethodPost, "/api/track", nil)
	w := httptest.NewRecorder()
	id := r.AnonID(req, w)
	if id == "" {
		t.Fatal("first call should generate an id")
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == AnonCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != id {
		t.Fatal("generated id should be persisted in the anon cookie")
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/track", nil)
	req2.AddCookie(cookie)
	if again := r.AnonID(req2, httptest.NewRecorder()); again != id {
		t.Errorf("persisted id should be stable: got %q, want %q", again, id)
	}
}
