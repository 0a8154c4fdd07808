// ===== internal/api/cookies.go =====
package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// storedCookie is the on-disk shape of one session cookie. Only name and
// value survive a round trip through the jar, which is all the server needs.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// loadCookies reads persisted session cookies into the jar. Best-effort:
// a missing or corrupt file just means the run starts unauthenticated.
func loadCookies(jar http.CookieJar, path string, server *url.URL) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	jar.SetCookies(server, cookies)
}

// saveCookies persists the jar's cookies for the server. Best-effort:
// persistence failure must never abort or alter the run.
func saveCookies(jar http.CookieJar, path string, server *url.URL) {
	cookies := jar.Cookies(server)
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}

	// Whole-file replace so an overlapping run never sees a partial write
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return
	}
	os.Rename(tmp, path)
}
