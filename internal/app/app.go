// ===== internal/app/app.go =====
// Package app is the top-level controller: establish identity, fetch the
// collections, build the hierarchy, render the menu. Errors never escape
// as a process failure; they become menu content.
package app

import (
	"context"
	"io"
	"log"

	"welcome/internal/api"
	"welcome/internal/assets"
	"welcome/internal/config"
	"welcome/internal/menu"
	"welcome/internal/presence"
)

// App wires the gateway, asset pipeline and renderer for one run
type App struct {
	cfg    *config.Config
	client *api.Client
	assets *assets.Pipeline
}

// New creates the application from configuration
func New(cfg *config.Config) (*App, error) {
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		client: client,
		assets: assets.NewPipeline(cfg),
	}, nil
}

// Run performs one render pass, writing the menu to out. It always
// completes: failure to establish identity renders the error menu,
// collection failures degrade to empty sections.
func (a *App) Run(ctx context.Context, out io.Writer) {
	w := menu.NewWriter(out)
	r := menu.NewRenderer(w, a.client, a.assets, a.cfg)

	conn, err := a.client.Me(ctx)
	if err != nil {
		log.Printf("Identity fetch failed: %v", err)
		r.IconHeader(-1)
		r.ErrorBanner("Failed to connect to Welcome server")
		r.Footer()
		return
	}

	// Identity is established; everything further degrades to partial
	// output instead of aborting.
	if err := a.client.Prefetch(ctx); err != nil {
		log.Printf("Warning: prefetch incomplete: %v", err)
	}

	people, err := a.client.ConnectedPeople(ctx)
	if err != nil {
		log.Printf("Warning: failed to fetch connected people: %v", err)
		people = nil
	}

	r.IconHeader(len(people))

	r.WelcomeHeader(ctx, conn)
	w.Submenu(func() {
		r.WelcomeDetails(ctx, conn)
		r.Footer()
	})

	homes, err := a.client.Homes(ctx)
	if err != nil {
		log.Printf("Warning: failed to fetch homes: %v", err)
		homes = nil
	}
	myConns, err := a.client.MyConnections(ctx)
	if err != nil {
		log.Printf("Warning: failed to fetch my connections: %v", err)
		myConns = nil
	}

	hierarchy := presence.Build(people, homes, conn, myConns)

	if hierarchy.PeopleCount() == 0 {
		r.NoOneHome()
	}

	r.HomeSections(ctx, hierarchy)
}
