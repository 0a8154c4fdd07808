// ===== internal/menu/render.go =====
package menu

import (
	"context"
	"log"

	"welcome/internal/api"
	"welcome/internal/assets"
	"welcome/internal/config"
	"welcome/internal/presence"
)

const (
	// Avatar size for the menu-bar header and home rows
	headerAvatarSize = 20

	// Text size for the home section title lines
	homeTitleSize = 15
)

// Renderer walks the fetched entities and emits the menu. All fetch
// failures below the identity level degrade to missing sections; the
// renderer never returns an error.
type Renderer struct {
	w          *Writer
	client     *api.Client
	assets     *assets.Pipeline
	serverURL  string
	avatarSize int
}

// NewRenderer creates a menu renderer
func NewRenderer(w *Writer, client *api.Client, pipeline *assets.Pipeline, cfg *config.Config) *Renderer {
	return &Renderer{
		w:          w,
		client:     client,
		assets:     pipeline,
		serverURL:  cfg.ServerURL,
		avatarSize: cfg.AvatarSize,
	}
}

// IconHeader emits the menu-bar icon line followed by the separator that
// ends the bar area. count is how many people are home, negative when
// unknown.
func (r *Renderer) IconHeader(count int) {
	r.w.Item("", TemplateImage(assets.MenubarIcon(count)))
	r.w.Sep()
}

// WelcomeHeader emits the top "Welcome <name>" line for the current
// connection, decorated with the role and network symbols
func (r *Renderer) WelcomeHeader(ctx context.Context, conn *api.Connection) {
	prefix := "Welcome **"
	suffix := "**"

	if icon := conn.Role.Attrs.SFSymbol; icon != "" {
		suffix += " :" + icon + ":"
	}
	if icon := conn.Network.Attrs.SFSymbol; icon != "" {
		suffix += " :" + icon + ":"
	}

	opts := []Option{MD(), Href(r.serverURL)}
	if conn.Person != nil {
		r.PersonItem(ctx, conn.Person, headerAvatarSize, prefix, suffix, opts...)
	} else {
		r.DeviceItem(&conn.Device, prefix, suffix, opts...)
	}
}

// WelcomeDetails emits the submenu under the welcome line: the current
// connection, the user's other connections, and their other devices
func (r *Renderer) WelcomeDetails(ctx context.Context, conn *api.Connection) {
	r.NetworkItem(&conn.Network, "")
	r.w.Submenu(func() {
		r.ConnectionDetails(ctx, conn)
	})

	r.OtherConnections(ctx, conn)

	if conn.Person != nil {
		r.w.Sep()
		r.PersonDevices(ctx, conn.Person)
	}
}

// OtherConnections lists the user's connections besides the current one
func (r *Renderer) OtherConnections(ctx context.Context, current *api.Connection) {
	myConns, err := r.client.MyConnections(ctx)
	if err != nil {
		log.Printf("Warning: failed to fetch my connections: %v", err)
		return
	}

	var others []*api.Connection
	for _, conn := range myConns {
		if !conn.Equal(current) {
			others = append(others, conn)
		}
	}
	if len(others) == 0 {
		return
	}

	r.w.Sep()
	r.w.Item("Other Connections")

	for _, conn := range others {
		r.NetworkItem(&conn.Network, "")
		r.w.Submenu(func() {
			r.ConnectionDetails(ctx, conn)
		})
	}
}

// PersonDevices lists a person's other connections under a "Devices"
// item. Hidden when the person has at most one connection.
func (r *Renderer) PersonDevices(ctx context.Context, person *api.Person) {
	conns, err := r.client.PersonConnections(ctx, person)
	if err != nil {
		log.Printf("Warning: failed to fetch connections for %s: %v", person.ID, err)
		return
	}
	if len(conns) <= 1 {
		return
	}

	r.w.Item("Devices", SFImage("macbook.and.iphone"))
	r.w.Submenu(func() {
		for _, conn := range conns {
			r.ConnectionItem(conn, "", "")
			r.w.Submenu(func() {
				r.ConnectionDetails(ctx, conn)
			})
		}
	})
}

// HomeSections emits one section per home in hierarchy order: the home
// line with its details submenu, then each room bucket with its people
func (r *Renderer) HomeSections(ctx context.Context, h *presence.Hierarchy) {
	for _, hg := range h.Homes {
		r.w.Sep()

		r.HomeItem(ctx, hg.Home, true, Size(homeTitleSize))
		r.w.Submenu(func() {
			r.HomeDetails(ctx, hg.Home)
		})

		for _, rg := range hg.Rooms {
			r.w.Sep()

			if rg.Room != nil {
				r.RoomItem(rg.Room)
			}

			for _, cp := range rg.People {
				r.connectedPerson(ctx, cp)
			}
		}
	}
}

// connectedPerson emits one person line with their presence submenu
func (r *Renderer) connectedPerson(ctx context.Context, cp *api.ConnectedPerson) {
	person := &cp.Person
	conn := &cp.Connection

	r.PersonItem(ctx, person, r.avatarSize, "", "")
	r.w.Submenu(func() {
		r.RoleItem(&conn.Role, "")

		r.PersonDetails(person)

		r.w.Sep()

		r.NetworkItem(&conn.Network, "Connection")
		r.w.Submenu(func() {
			r.ConnectionDetails(ctx, conn)
		})

		r.PersonDevices(ctx, person)
	})
}

// NoOneHome emits the placeholder shown when no one is present anywhere
func (r *Renderer) NoOneHome() {
	r.w.Sep()
	r.w.Item("No one's home", SFImage("house"))
}

// ErrorBanner emits the single user-visible error line
func (r *Renderer) ErrorBanner(message string) {
	r.w.Item(message, SFImage("warning"), Color("red"))
}

// Footer emits the manual Refresh and Open actions
func (r *Renderer) Footer() {
	r.w.Sep()
	r.w.Item("Refresh", Refresh())
	r.w.Item("Open Welcome...", Href(r.serverURL))
}
