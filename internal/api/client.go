// ===== internal/api/client.go =====
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"welcome/internal/config"
)

// cached memoizes one fetch outcome, error included, so a failed resource
// is not re-requested by a later rendering path in the same run. Distinct
// resources can still be fetched concurrently.
type cached[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (c *cached[T]) get(fetch func() (T, error)) (T, error) {
	c.once.Do(func() {
		c.value, c.err = fetch()
	})
	return c.value, c.err
}

// Client is the authenticated gateway to the Welcome server. Every
// resource is fetched at most once per Client lifetime; a Client is
// scoped to a single run.
type Client struct {
	base       *url.URL
	http       *http.Client
	jar        http.CookieJar
	cookieFile string

	me      cached[*Connection]
	myConns cached[[]*Connection]
	homes   cached[[]*Home]
	people  cached[[]*ConnectedPerson]

	mu          sync.Mutex
	personConns map[string]*cached[[]*Connection]
	deviceConns map[string]*cached[[]*Connection]
}

// NewClient creates a gateway for the configured server, loading any
// persisted session cookies
func NewClient(cfg *config.Config) (*Client, error) {
	base, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", cfg.ServerURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	loadCookies(jar, cfg.CookieFile, base)

	return &Client{
		base:        base,
		http:        &http.Client{Jar: jar, Timeout: cfg.HTTPTimeout},
		jar:         jar,
		cookieFile:  cfg.CookieFile,
		personConns: make(map[string]*cached[[]*Connection]),
		deviceConns: make(map[string]*cached[[]*Connection]),
	}, nil
}

// get fetches one resource path and returns the response body. Transport
// failures and non-2xx statuses come back as *TransportError. Cookies are
// persisted after every successful request.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	u := c.base.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &TransportError{URL: u.String(), Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: u.String(), Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: u.String(), Err: err}
	}

	saveCookies(c.jar, c.cookieFile, c.base)

	return body, nil
}

// getOne fetches and validates a single entity. A null body decodes to
// the zero value, which Validate rejects for missing required fields.
func getOne[T any, PT interface {
	*T
	Validate() error
}](c *Client, ctx context.Context, path, entity string) (PT, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	v := PT(new(T))
	if err := json.Unmarshal(body, v); err != nil {
		return nil, &SchemaError{Entity: entity, Err: err}
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	return v, nil
}

// getList fetches and validates a collection. An empty or null body is a
// legitimate "no results" response, not an error.
func getList[T any, PT interface {
	*T
	Validate() error
}](c *Client, ctx context.Context, path, entity string) ([]PT, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, nil
	}

	var list []PT
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &SchemaError{Entity: entity, Err: err}
	}
	for _, v := range list {
		if v == nil {
			return nil, &SchemaError{Entity: entity, Err: fmt.Errorf("null element in list")}
		}
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	return list, nil
}

// Me returns the connection the server attributes to this client
func (c *Client) Me(ctx context.Context) (*Connection, error) {
	return c.me.get(func() (*Connection, error) {
		return getOne[Connection](c, ctx, "/api/me", "connection")
	})
}

// MyConnections returns every connection for the current identity
func (c *Client) MyConnections(ctx context.Context) ([]*Connection, error) {
	return c.myConns.get(func() ([]*Connection, error) {
		return getList[Connection](c, ctx, "/api/me/connections", "connection")
	})
}

// Homes returns every home known to the server
func (c *Client) Homes(ctx context.Context) ([]*Home, error) {
	return c.homes.get(func() ([]*Home, error) {
		return getList[Home](c, ctx, "/api/homes", "home")
	})
}

// ConnectedPeople returns everyone currently present in some home
func (c *Client) ConnectedPeople(ctx context.Context) ([]*ConnectedPerson, error) {
	return c.people.get(func() ([]*ConnectedPerson, error) {
		return getList[ConnectedPerson](c, ctx, "/api/homes/people", "connected person")
	})
}

// keyed returns the memo slot for one person/device id, creating it on
// first use
func keyed(mu *sync.Mutex, m map[string]*cached[[]*Connection], id string) *cached[[]*Connection] {
	mu.Lock()
	defer mu.Unlock()

	slot, ok := m[id]
	if !ok {
		slot = &cached[[]*Connection]{}
		m[id] = slot
	}
	return slot
}

// PersonConnections returns the connections attributed to a person.
// Unknown people have no server-side record, so no request is made.
func (c *Client) PersonConnections(ctx context.Context, person *Person) ([]*Connection, error) {
	if !person.Known {
		return nil, nil
	}

	slot := keyed(&c.mu, c.personConns, person.ID)
	return slot.get(func() ([]*Connection, error) {
		return getList[Connection](c, ctx, "/api/people/"+url.PathEscape(person.ID)+"/connections", "connection")
	})
}

// DeviceConnections returns the connections attributed to a device
func (c *Client) DeviceConnections(ctx context.Context, device *Device) ([]*Connection, error) {
	if !device.Known || len(device.IDs) == 0 {
		return nil, nil
	}
	id := device.IDs[0]

	slot := keyed(&c.mu, c.deviceConns, id)
	return slot.get(func() ([]*Connection, error) {
		return getList[Connection](c, ctx, "/api/devices/"+url.PathEscape(id)+"/connections", "connection")
	})
}

// Prefetch warms the collection caches concurrently. The outcomes land in
// the per-resource memos, so callers see the same results (or failures)
// they would have seen fetching lazily; the first error is returned for
// logging only. One resource failing must not cancel the others, so the
// group runs without a shared cancel context.
func (c *Client) Prefetch(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		_, err := c.Homes(ctx)
		return err
	})
	g.Go(func() error {
		_, err := c.ConnectedPeople(ctx)
		return err
	})
	g.Go(func() error {
		_, err := c.MyConnections(ctx)
		return err
	})

	return g.Wait()
}

// ServerURL returns the configured base URL, for "Open" menu actions
func (c *Client) ServerURL() string {
	return c.base.String()
}
