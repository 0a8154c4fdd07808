// ===== internal/api/models.go =====
package api

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"
)

// StringOrNumber accepts either a JSON string or number and keeps its
// string form. Door codes and postal codes arrive as both.
type StringOrNumber string

// UnmarshalJSON implements json.Unmarshaler
func (s *StringOrNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = StringOrNumber(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = StringOrNumber(n.String())
	return nil
}

func (s StringOrNumber) String() string {
	return string(s)
}

// SymbolAttrs is the shared attribute bag for entities whose only
// recognized attribute is an explicit SF Symbol override.
type SymbolAttrs struct {
	SFSymbol string `json:"sf_symbol"`
}

// Network represents one network a device can attach to
type Network struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Attrs       SymbolAttrs `json:"attrs"`
}

// Symbol returns the SF Symbol for this network, never empty
func (n *Network) Symbol() string {
	if n.Attrs.SFSymbol != "" {
		return n.Attrs.SFSymbol
	}
	return "network"
}

// Validate checks required fields
func (n *Network) Validate() error {
	if n.ID == "" {
		return &SchemaError{Entity: "network", Field: "id"}
	}
	if n.DisplayName == "" {
		return &SchemaError{Entity: "network", Field: "display_name"}
	}
	return nil
}

// DeviceType classifies a device for default icon selection
type DeviceType string

const (
	DeviceTypePhone    DeviceType = "phone"
	DeviceTypeWearable DeviceType = "wearable"
	DeviceTypeHandheld DeviceType = "handheld"
	DeviceTypeLaptop   DeviceType = "laptop"
	DeviceTypeTablet   DeviceType = "tablet"
	DeviceTypeDesktop  DeviceType = "desktop"
	DeviceTypeOther    DeviceType = "other"
)

// Symbol returns the type-derived SF Symbol, or "" when the type
// carries no default of its own
func (t DeviceType) Symbol() string {
	switch t {
	case DeviceTypePhone, DeviceTypeHandheld:
		return "iphone"
	case DeviceTypeWearable:
		return "applewatch"
	case DeviceTypeTablet:
		return "ipad"
	case DeviceTypeDesktop:
		return "desktopcomputer"
	case DeviceTypeLaptop:
		return "laptopcomputer"
	}
	return ""
}

// Device represents a piece of hardware seen on a network
type Device struct {
	Known       bool           `json:"known"`
	IDs         []string       `json:"ids"`
	DisplayName string         `json:"display_name"`
	Attrs       map[string]any `json:"attrs"`
	Type        DeviceType     `json:"type"`
	Tracker     bool           `json:"tracker"`
	Personal    bool           `json:"personal"`
}

// Symbol returns the SF Symbol for this device, never empty
func (d *Device) Symbol() string {
	if s := d.Type.Symbol(); s != "" {
		return s
	}
	return "externaldrive.badge.questionmark"
}

// Validate checks required fields
func (d *Device) Validate() error {
	if d.DisplayName == "" {
		return &SchemaError{Entity: "device", Field: "display_name"}
	}
	return nil
}

// PersonAttrs holds recognized optional person attributes
type PersonAttrs struct {
	Phone    string         `json:"phone"`
	Email    string         `json:"email"`
	DoorCode StringOrNumber `json:"door_code"`
	SFSymbol string         `json:"sf_symbol"`
}

// Person represents someone the server knows about
type Person struct {
	Known       bool        `json:"known"`
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	AvatarURL   string      `json:"avatar_url"`
	Attrs       PersonAttrs `json:"attrs"`
}

// Symbol returns the SF Symbol for this person, never empty
func (p *Person) Symbol() string {
	if p.Attrs.SFSymbol != "" {
		return p.Attrs.SFSymbol
	}
	if p.Known {
		return "person.fill"
	}
	return "person.fill.questionmark"
}

// DialablePhone returns the person's phone number stripped of
// separators, suitable for tel: and wa.me links
func (p *Person) DialablePhone() string {
	return strings.NewReplacer(" ", "", "(", "", ")", "", "-", "").Replace(p.Attrs.Phone)
}

// Validate checks required fields
func (p *Person) Validate() error {
	if p.ID == "" {
		return &SchemaError{Entity: "person", Field: "id"}
	}
	if p.DisplayName == "" {
		return &SchemaError{Entity: "person", Field: "display_name"}
	}
	return nil
}

// Role represents the relationship class of a connection (resident, guest...)
type Role struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Attrs       SymbolAttrs `json:"attrs"`
}

// Symbol returns the SF Symbol for this role, never empty
func (r *Role) Symbol() string {
	if r.Attrs.SFSymbol != "" {
		return r.Attrs.SFSymbol
	}
	return "person.circle"
}

// Validate checks required fields
func (r *Role) Validate() error {
	if r.ID == "" {
		return &SchemaError{Entity: "role", Field: "id"}
	}
	if r.DisplayName == "" {
		return &SchemaError{Entity: "role", Field: "display_name"}
	}
	return nil
}

// Link is a home-scoped hyperlink, optionally restricted to roles
type Link struct {
	Label string    `json:"label"`
	URL   string    `json:"url"`
	Attrs LinkAttrs `json:"attrs"`
}

// LinkAttrs holds recognized optional link attributes
type LinkAttrs struct {
	SFSymbol string   `json:"sf_symbol"`
	Roles    []string `json:"roles"`
}

// VisibleTo reports whether the link should be shown to the given role.
// A link with no role restriction is visible to everyone.
func (l *Link) VisibleTo(roleID string) bool {
	if len(l.Attrs.Roles) == 0 {
		return true
	}
	for _, r := range l.Attrs.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// Address is a home's postal address
type Address struct {
	Street       string         `json:"street"`
	Neighborhood string         `json:"neighborhood"`
	PostalCode   StringOrNumber `json:"postal_code"`
	City         string         `json:"city"`
	State        string         `json:"state"`
	Country      string         `json:"country"`
}

// GoogleMapsURL returns a maps search link for the address
func (a *Address) GoogleMapsURL() string {
	var parts []string
	for _, part := range []string{a.Street, a.Neighborhood, a.PostalCode.String(), a.City, a.State, a.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	query := strings.Join(parts, ", ")
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}

// Wifi holds a home's wireless credentials
type Wifi struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// DoorCodeAttr holds a home's door code configuration
type DoorCodeAttr struct {
	Prefix string         `json:"prefix"`
	Code   StringOrNumber `json:"code"`
}

// HomeAttrs holds recognized optional home attributes
type HomeAttrs struct {
	Links     []Link        `json:"links"`
	Address   *Address      `json:"address"`
	Wifi      *Wifi         `json:"wifi"`
	DoorCode  *DoorCodeAttr `json:"door_code"`
	AvatarURL string        `json:"avatar_url"`
}

// Home represents one home known to the server.
// Identity is by ID only; grouping code must never key on anything else.
type Home struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Connected   *bool     `json:"connected"`
	Attrs       HomeAttrs `json:"attrs"`
}

// Symbol returns the SF Symbol for this home, never empty
func (h *Home) Symbol() string {
	return "house"
}

// DoorCode resolves the code to show for this home: the home's own code,
// falling back to the person's personal code, with the home's prefix
// concatenated in front. Returns "" when no code applies.
func (h *Home) DoorCode(person *Person) string {
	dc := h.Attrs.DoorCode
	if dc == nil {
		return ""
	}

	code := dc.Code.String()
	if code == "" && person != nil {
		code = person.Attrs.DoorCode.String()
	}
	if code == "" {
		return ""
	}

	return dc.Prefix + code
}

// Validate checks required fields
func (h *Home) Validate() error {
	if h.ID == "" {
		return &SchemaError{Entity: "home", Field: "id"}
	}
	if h.DisplayName == "" {
		return &SchemaError{Entity: "home", Field: "display_name"}
	}
	return nil
}

// Room represents one room inside a home. Identity is by ID only.
type Room struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Attrs       SymbolAttrs `json:"attrs"`
}

// Symbol returns the SF Symbol for this room, never empty
func (r *Room) Symbol() string {
	if r.Attrs.SFSymbol != "" {
		return r.Attrs.SFSymbol
	}
	return "door.left.hand.open"
}

// Validate checks required fields
func (r *Room) Validate() error {
	if r.ID == "" {
		return &SchemaError{Entity: "room", Field: "id"}
	}
	if r.DisplayName == "" {
		return &SchemaError{Entity: "room", Field: "display_name"}
	}
	return nil
}

// metadataKnownKeys are the Metadata fields decoded into typed members;
// everything else is preserved in Extra for generic display.
var metadataKnownKeys = []string{"ip", "mac", "mac_is_private", "wifi_ssid", "country"}

// Metadata is the free-form attribute bag attached to a connection
type Metadata struct {
	IP           string `json:"ip"`
	MAC          string `json:"mac"`
	MACIsPrivate bool   `json:"mac_is_private"`
	WifiSSID     string `json:"wifi_ssid"`
	Country      string `json:"country"`

	// Extra holds vendor fields not recognized above
	Extra map[string]any `json:"-"`
}

// UnmarshalJSON decodes the recognized fields and preserves the rest in Extra
func (m *Metadata) UnmarshalJSON(b []byte) error {
	type plain Metadata
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, key := range metadataKnownKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		p.Extra = raw
	}

	*m = Metadata(p)
	return nil
}

// KV is one metadata key/value pair for generic display
type KV struct {
	Key   string
	Value any
}

// Pairs returns every metadata field, recognized fields first in a fixed
// order, then the extras sorted by key for deterministic output
func (m *Metadata) Pairs() []KV {
	pairs := []KV{
		{"ip", m.IP},
		{"mac", m.MAC},
		{"mac_is_private", m.MACIsPrivate},
		{"wifi_ssid", m.WifiSSID},
		{"country", m.Country},
	}

	keys := make([]string, 0, len(m.Extra))
	for key := range m.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		pairs = append(pairs, KV{key, m.Extra[key]})
	}

	return pairs
}

// Connection represents one attachment of a device to a network
type Connection struct {
	Summary        string   `json:"summary"`
	Known          bool     `json:"known"`
	ActiveIDs      []string `json:"active_ids"`
	KnownActiveIDs []string `json:"known_active_ids"`
	Network        Network  `json:"network"`
	Device         Device   `json:"device"`
	Person         *Person  `json:"person"`
	Role           Role     `json:"role"`
	Home           *Home    `json:"home"`
	Room           *Room    `json:"room"`
	Metadata       Metadata `json:"metadata"`
}

// Equal reports whether two connections describe the same attachment:
// same network and same set of active identifiers
func (c *Connection) Equal(other *Connection) bool {
	if other == nil {
		return false
	}
	if c.Network.ID != other.Network.ID {
		return false
	}
	if len(c.ActiveIDs) != len(other.ActiveIDs) {
		return false
	}
	for i, id := range c.ActiveIDs {
		if other.ActiveIDs[i] != id {
			return false
		}
	}
	return true
}

// Validate checks required fields on the connection and its members
func (c *Connection) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return err
	}
	if err := c.Device.Validate(); err != nil {
		return err
	}
	if err := c.Role.Validate(); err != nil {
		return err
	}
	if c.Person != nil {
		if err := c.Person.Validate(); err != nil {
			return err
		}
	}
	if c.Home != nil {
		if err := c.Home.Validate(); err != nil {
			return err
		}
	}
	if c.Room != nil {
		if err := c.Room.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ConnectedPerson joins a person to the home/room their active connection
// places them in
type ConnectedPerson struct {
	Known      bool       `json:"known"`
	Person     Person     `json:"person"`
	Home       *Home      `json:"home"`
	Room       *Room      `json:"room"`
	Role       Role       `json:"role"`
	Connection Connection `json:"connection"`
}

// Validate checks required fields and that the presence record agrees
// with its embedded connection about where the person is
func (cp *ConnectedPerson) Validate() error {
	if err := cp.Person.Validate(); err != nil {
		return err
	}
	if err := cp.Role.Validate(); err != nil {
		return err
	}
	if cp.Home != nil {
		if err := cp.Home.Validate(); err != nil {
			return err
		}
	}
	if cp.Room != nil {
		if err := cp.Room.Validate(); err != nil {
			return err
		}
	}
	if err := cp.Connection.Validate(); err != nil {
		return err
	}

	if cp.Home != nil && cp.Connection.Home != nil && cp.Home.ID != cp.Connection.Home.ID {
		return &SchemaError{Entity: "connected person", Field: "home"}
	}
	if cp.Room != nil && cp.Connection.Room != nil && cp.Room.ID != cp.Connection.Room.ID {
		return &SchemaError{Entity: "connected person", Field: "room"}
	}

	return nil
}
