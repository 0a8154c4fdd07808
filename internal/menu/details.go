// ===== internal/menu/details.go =====
package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/biter777/countries"

	"welcome/internal/api"
)

// HomeItem emits one home line, preferring the home's avatar image over
// the house icon
func (r *Renderer) HomeItem(ctx context.Context, home *api.Home, withAvatar bool, opts ...Option) {
	if avatar := r.homeAvatar(ctx, home, withAvatar); avatar != nil {
		opts = append(opts, Image(avatar))
	} else {
		opts = append(opts, SFImage(home.Symbol()))
	}

	r.w.Item(home.DisplayName, opts...)
}

func (r *Renderer) homeAvatar(ctx context.Context, home *api.Home, withAvatar bool) []byte {
	if !withAvatar {
		return nil
	}
	// Home avatars are not circle-masked, only personal ones are
	return r.assets.Image(ctx, home.Attrs.AvatarURL, headerAvatarSize, false)
}

// HomeDetails emits a home's submenu: links visible to the current role,
// the address, the door code and the wifi credentials
func (r *Renderer) HomeDetails(ctx context.Context, home *api.Home) {
	// Memoized, so this never re-fetches inside a render pass
	conn, err := r.client.Me(ctx)
	if err != nil {
		conn = nil
	}

	var links []*api.Link
	for i := range home.Attrs.Links {
		link := &home.Attrs.Links[i]
		if conn == nil || link.VisibleTo(conn.Role.ID) {
			links = append(links, link)
		}
	}
	if len(links) > 0 {
		for _, link := range links {
			r.w.Item(link.Label, Href(link.URL), SFImage(link.Attrs.SFSymbol))
		}
		r.w.Sep()
	}

	if address := home.Attrs.Address; address != nil {
		r.w.Item("Google Maps", Href(address.GoogleMapsURL()), SFImage("map"))

		r.w.Item("Address", SFImage("mappin.and.ellipse"))
		r.w.Submenu(func() {
			if address.Street != "" {
				r.w.Item(address.Street, CopyText(), SFImage("house"))
			}
			if address.Neighborhood != "" {
				r.w.Item(address.Neighborhood, CopyText(), SFImage("house.circle"))
			}
			if address.PostalCode != "" {
				r.w.Item(address.PostalCode.String(), CopyText(), SFImage("mail.and.text.magnifyingglass"))
			}
			if address.City != "" {
				r.w.Item(address.City, CopyText(), SFImage("building.2"))
			}
			if address.State != "" {
				r.w.Item(address.State, CopyText(), SFImage("building.columns"))
			}
			if address.Country != "" {
				r.w.Item(address.Country, CopyText(), SFImage("flag.circle"))
			}
		})
	}

	var person *api.Person
	if conn != nil {
		person = conn.Person
	}
	if code := home.DoorCode(person); code != "" {
		r.w.Sep()
		r.w.Item("Door Code", SFImage("lock"))
		r.w.Submenu(func() {
			r.w.Item(code, CopyText())
		})
	}

	if wifi := home.Attrs.Wifi; wifi != nil {
		r.w.Sep()
		r.w.Item("Wi-Fi", SFImage("wifi"))
		r.w.Submenu(func() {
			if wifi.SSID != "" {
				r.w.Item(wifi.SSID, SFImage("wifi.circle"), CopyText())
			}
			if wifi.Password != "" {
				r.w.Item(wifi.Password, SFImage("key.horizontal"), CopyText())
			}
		})
	}
}

// RoomItem emits one room line
func (r *Renderer) RoomItem(room *api.Room) {
	r.w.Item(room.DisplayName, SFImage(room.Symbol()))
}

// PersonItem emits one person line, preferring their circle-masked
// avatar over the person icon. Every person line carries either an image
// or an icon, never neither.
func (r *Renderer) PersonItem(ctx context.Context, person *api.Person, avatarSize int, prefix, suffix string, opts ...Option) {
	if avatar := r.assets.Image(ctx, person.AvatarURL, avatarSize, true); avatar != nil {
		opts = append(opts, Image(avatar))
	} else {
		opts = append(opts, SFImage(person.Symbol()))
	}

	r.w.Item(prefix+person.DisplayName+suffix, opts...)
}

// PersonDetails emits a person's submenu: door code and contact actions
func (r *Renderer) PersonDetails(person *api.Person) {
	if code := person.Attrs.DoorCode.String(); code != "" {
		r.w.Item(code, SFImage("lock"), CopyText())
	}

	phone := person.DialablePhone()
	email := person.Attrs.Email
	if phone == "" && email == "" {
		return
	}

	r.w.Sep()
	if phone != "" {
		r.w.Item("WhatsApp", Href("https://wa.me/"+phone), SFImage("message"))
		r.w.Item("Call", Href("tel:"+phone), SFImage("phone"))
	}
	if email != "" {
		r.w.Item("Email", Href("mailto:"+email), SFImage("envelope"))
	}
}

// DeviceItem emits one device line. Every device line carries an icon:
// the type-derived symbol or the unknown-drive fallback.
func (r *Renderer) DeviceItem(device *api.Device, prefix, suffix string, opts ...Option) {
	opts = append(opts, SFImage(device.Symbol()))
	r.w.Item(prefix+device.DisplayName+suffix, opts...)
}

// RoleItem emits one role line, optionally relabeled
func (r *Renderer) RoleItem(role *api.Role, label string) {
	if label == "" {
		label = role.DisplayName
	}
	r.w.Item(label, SFImage(role.Symbol()))
}

// NetworkItem emits one network line, optionally relabeled
func (r *Renderer) NetworkItem(network *api.Network, label string) {
	if label == "" {
		label = network.DisplayName
	}
	r.w.Item(label, SFImage(network.Symbol()))
}

// ConnectionItem emits one connection as its device line, tagged with
// the network: symbol in front when the network has one, "@ name"
// behind otherwise
func (r *Renderer) ConnectionItem(conn *api.Connection, prefix, suffix string, opts ...Option) {
	if icon := conn.Network.Attrs.SFSymbol; icon != "" {
		prefix = ":" + icon + ": " + prefix
	} else {
		suffix += " @ " + conn.Network.DisplayName
	}

	r.DeviceItem(&conn.Device, prefix, suffix, opts...)
}

// ConnectionDetails emits the full drill-down for one connection
func (r *Renderer) ConnectionDetails(ctx context.Context, conn *api.Connection) {
	r.w.Sep()
	if conn.Known {
		r.w.Item("Known", SFImage("person.fill.checkmark"))
	} else {
		r.w.Item("Unknown", SFImage("person.fill.questionmark"))
	}
	r.RoleItem(&conn.Role, "")
	r.NetworkItem(&conn.Network, "")
	r.DeviceItem(&conn.Device, "", "")

	if conn.Home != nil {
		r.w.Sep()
		r.HomeItem(ctx, conn.Home, false)
		if conn.Room != nil {
			r.RoomItem(conn.Room)
		}
	}

	metadata := &conn.Metadata

	r.w.Sep()
	if metadata.IP != "" {
		r.w.Item(metadata.IP, SFImage("externaldrive.connected.to.line.below"), CopyText())
	}
	if metadata.MAC != "" {
		icon := "externaldrive"
		if metadata.MACIsPrivate {
			icon = "externaldrive.badge.questionmark"
		}
		r.w.Item(metadata.MAC, SFImage(icon), CopyText(), Plain())
	}
	if metadata.WifiSSID != "" {
		r.w.Item(metadata.WifiSSID, SFImage("wifi.circle"))
	}
	if metadata.Country != "" {
		r.w.Item(countryName(metadata.Country), SFImage("flag.circle"))
	}

	r.w.Sep()
	r.w.Item("More Info", SFImage("info.circle"))
	r.w.Submenu(func() {
		r.w.Item("Summary", SFImage("text.magnifyingglass"))
		r.w.Submenu(func() {
			r.w.Item(conn.Summary, Plain())
		})

		r.w.Sep()
		r.w.Item(idsLabel(conn.ActiveIDs, "No Active IDs"), Tabs(2), SFImage("externaldrive.badge.wifi"), Plain())
		r.w.Item(idsLabel(conn.KnownActiveIDs, "No Known Active IDs"), Tabs(1), SFImage("externaldrive.badge.checkmark"), Plain())

		r.w.Sep()
		for _, kv := range metadata.Pairs() {
			r.w.Item(fmt.Sprintf("%s = %s", kv.Key, formatValue(kv.Value)), Plain())
		}
	})
}

// idsLabel joins identifier lists for display, with a placeholder for
// empty ones
func idsLabel(ids []string, empty string) string {
	if len(ids) == 0 {
		return empty
	}
	return strings.Join(ids, ", ")
}

// countryName resolves an ISO country code to its display name, keeping
// the raw code when it is not recognized
func countryName(code string) string {
	if c := countries.ByName(code); c != countries.Unknown {
		return c.String()
	}
	return code
}

// formatValue renders one metadata value; lists join like the rest of
// the menu's id lists
func formatValue(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
