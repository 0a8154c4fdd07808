// ===== cmd/welcome/main.go =====
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"

	"welcome/internal/app"
	"welcome/internal/config"
)

const (
	configFile = "welcome.ini"
)

var (
	sha1ver   string
	buildTime string
)

func main() {
	// stdout carries the menu protocol; diagnostics go to stderr
	log.SetOutput(os.Stderr)
	log.Printf("welcome: Build %s, Time %s", sha1ver, buildTime)

	// Copy subcommand: invoked by the host when a copy menu item is
	// clicked. The payload is its own argument, never a shell string.
	if len(os.Args) > 1 && os.Args[1] == "copy" {
		runCopy(os.Args[2:])
		return
	}

	cfg, err := config.New(configPath())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	// Errors render as menu content; the host requires exit code 0
	application.Run(context.Background(), os.Stdout)
}

// configPath resolves the config file next to the plugin binary, so the
// host's working directory does not matter
func configPath() string {
	if v := os.Getenv("WELCOME_CONFIG"); v != "" {
		return v
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), configFile)
	}
	return configFile
}

// runCopy writes the given value to the system clipboard
func runCopy(args []string) {
	if len(args) != 1 {
		log.Fatalf("Usage: welcome copy <value>")
	}
	if err := clipboard.WriteAll(args[0]); err != nil {
		log.Fatalf("Failed to copy to clipboard: %v", err)
	}
}
