package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/portfolio"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "check":
		if err := runCheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("portfolio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := portfolio.LoadConfig()
	if err != nil {
		return err
	}
	app := portfolio.New(cfg)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Start(ctx)
}

// runCheck resolves the backend URL and calls its health endpoint.
func runCheck() error {
	cfg, err := portfolio.LoadConfig()
	if err != nil {
		return err
	}
	base, ok := cfg.ResolvedBackendURL()
	if !ok {
		return fmt.Errorf("backend URL not configured: set BACKEND_URL or API_URL")
	}
	app := portfolio.New(cfg)
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Backend.Health(ctx); err != nil {
		return fmt.Errorf("backend %s: %w", base, err)
	}
	fmt.Printf("backend %s: ok\n", base)
	return nil
}

func printUsage() {
	fmt.Println(`portfolio - Portfolio site server built with Go, Echo, and templ

Usage:
  portfolio [command]

Commands:
  serve         Start the HTTP server (default)
  check         Verify the backend is reachable
  version       Print the version
  help          Show this help message

Configuration is read from the environment and an optional .env file:
  BACKEND_URL, API_URL, PUBLIC_API_URL, APP_ENV, SITE_NAME, SITE_URL,
  SITE_DESCRIPTION, SITE_TAGLINE, SITE_AUTHOR, SITE_AUTHOR_EMAIL, ADDR,
  BACKEND_TIMEOUT, PROXY_RATE_PER_MIN, PROXY_RATE_BURST, LOG_LEVEL`)
}
