// ===== internal/app/app_test.go =====
package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welcome/internal/config"
)

const meBody = `{
	"summary": "Ada's phone on Wi-Fi",
	"known": true,
	"active_ids": ["aa:bb:cc:dd:ee:ff"],
	"network": {"id": "wifi", "display_name": "Wi-Fi"},
	"device": {"known": true, "display_name": "Phone", "type": "phone"},
	"person": {"known": true, "id": "ada", "display_name": "Ada"},
	"role": {"id": "resident", "display_name": "Resident"},
	"home": {"id": "h1", "display_name": "Casa"}
}`

// run performs one render pass against a stub server and returns the
// emitted menu
func run(t *testing.T, bodies map[string]string) string {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)

	cfg := config.DefaultConfig()
	cfg.ServerURL = ts.URL
	cfg.CookieFile = filepath.Join(t.TempDir(), "cookies.json")
	cfg.CacheDir = t.TempDir()
	cfg.Sips = "welcome-no-such-tool-sips"
	cfg.Magick = "welcome-no-such-tool-magick"

	a, err := New(cfg)
	require.NoError(t, err)

	var out strings.Builder
	a.Run(context.Background(), &out)
	return out.String()
}

func TestRunIdentityFailure(t *testing.T) {
	menu := run(t, nil)

	lines := strings.Split(strings.TrimRight(menu, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "templateImage=")
	assert.Equal(t, "---", lines[1])
	assert.Equal(t, "Failed to connect to Welcome server | sfimage=warning color=red", lines[2])
	assert.Equal(t, "---", lines[3])
	assert.Equal(t, "Refresh | refresh=true", lines[4])
	assert.Contains(t, lines[5], "Open Welcome...")

	// Nothing beyond the error menu
	assert.NotContains(t, menu, "Welcome **")
	assert.NotContains(t, menu, "No one's home")
}

func TestRunNoOneHome(t *testing.T) {
	menu := run(t, map[string]string{
		"/api/me":             meBody,
		"/api/me/connections": `[]`,
		"/api/homes":          `[{"id": "h1", "display_name": "Casa"}]`,
		"/api/homes/people":   `[]`,
	})

	assert.Equal(t, 1, strings.Count(menu, "No one's home"))
	assert.Contains(t, menu, "Welcome **Ada**")
	// The current home still renders, just empty
	assert.Contains(t, menu, "Casa | size=15 sfimage=house")
}

func TestRunWithPeople(t *testing.T) {
	people := `[
		{
			"person": {"known": true, "id": "bob", "display_name": "Bob"},
			"role": {"id": "resident", "display_name": "Resident"},
			"home": {"id": "h1", "display_name": "Casa"},
			"room": {"id": "r1", "display_name": "Kitchen"},
			"connection": {
				"known": true,
				"network": {"id": "wifi", "display_name": "Wi-Fi"},
				"device": {"display_name": "Bob's Phone", "type": "phone"},
				"role": {"id": "resident", "display_name": "Resident"},
				"home": {"id": "h1", "display_name": "Casa"},
				"room": {"id": "r1", "display_name": "Kitchen"}
			}
		},
		{
			"person": {"known": true, "id": "cleo", "display_name": "Cleo"},
			"role": {"id": "guest", "display_name": "Guest"},
			"home": {"id": "h1", "display_name": "Casa"},
			"connection": {
				"known": true,
				"network": {"id": "wifi", "display_name": "Wi-Fi"},
				"device": {"display_name": "Cleo's Laptop", "type": "laptop"},
				"role": {"id": "guest", "display_name": "Guest"},
				"home": {"id": "h1", "display_name": "Casa"}
			}
		}
	]`

	menu := run(t, map[string]string{
		"/api/me":                     meBody,
		"/api/me/connections":         `[]`,
		"/api/homes":                  `[{"id": "h1", "display_name": "Casa"}, {"id": "h2", "display_name": "Cabin"}]`,
		"/api/homes/people":           people,
		"/api/people/bob/connections": `[]`,
	})

	assert.NotContains(t, menu, "No one's home")
	assert.Contains(t, menu, "Kitchen | sfimage=door.left.hand.open")
	assert.Contains(t, menu, "Bob | sfimage=person.fill")
	assert.Contains(t, menu, "Cleo | sfimage=person.fill")
	assert.Contains(t, menu, "Cabin | size=15 sfimage=house")

	// The current connection's home section comes before the other home
	assert.Less(t, strings.Index(menu, "Casa | size=15 sfimage=house"), strings.Index(menu, "Cabin | size=15 sfimage=house"))
}

func TestRunDegradesOnCollectionFailure(t *testing.T) {
	// Only identity succeeds; every collection fetch fails
	menu := run(t, map[string]string{"/api/me": meBody})

	assert.Contains(t, menu, "Welcome **Ada**")
	assert.Contains(t, menu, "No one's home")
	assert.NotContains(t, menu, "Failed to connect")
	// The current home comes from the identity connection
	assert.Contains(t, menu, "Casa | size=15 sfimage=house")
}
