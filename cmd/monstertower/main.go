// Package main is the entry point for MonsterTower.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/samdwyer/monstertower/internal/config"
	"github.com/samdwyer/monstertower/internal/game"
	"github.com/samdwyer/monstertower/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "YAML run configuration")
	mode := flag.String("mode", "", "run mode: tower or battle")
	teams := flag.String("teams", "", `teams, e.g. "front=Flamikin,Vineon;priority:speed=Strikeon;back"`)
	seed := flag.Int64("seed", 0, "random seed (0 picks one)")
	tui := flag.Bool("tui", false, "show the tower standings in the terminal")
	manual := flag.Bool("manual", false, "pick the first team interactively")
	verbose := flag.Bool("v", false, "narrate every battle turn")
	flag.Parse()

	// Load .env file for local development
	// This makes HONEYCOMB_MONSTERTOWER_API_KEY available
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := applyFlags(&cfg, *mode, *teams, *seed, *tui, *manual, *verbose); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Game error: %v", err)
	}
}

// run sets up telemetry and plays the configured game.
func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, err := game.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing game: %w", err)
	}
	defer g.Close()

	// Set up OTEL environment variables from our .env variables
	if setupOTelEnv() {
		shutdown, err := telemetry.Setup(ctx, runInfo(cfg, g.Seed()))
		if err != nil {
			log.Printf("Warning: telemetry setup failed: %v", err)
			log.Printf("Game will run without observability")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Printf("Error shutting down telemetry: %v", err)
				}
			}()
		}
	}

	return g.Run(ctx)
}

// runInfo describes the run for exported traces. seed is the one the game
// actually uses, which differs from cfg.Seed when that is 0.
func runInfo(cfg config.Config, seed int64) telemetry.RunInfo {
	info := telemetry.RunInfo{Mode: cfg.Mode, Seed: seed, SimpleStats: cfg.SimpleStats}
	if cfg.Mode == config.ModeTower {
		info.EnemyTeams = cfg.Tower.EnemyTeams
	}
	return info
}

// applyFlags overrides cfg with the flags that were set on the command line.
func applyFlags(cfg *config.Config, mode, teams string, seed int64, tui, manual, verbose bool) error {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["mode"] {
		cfg.Mode = mode
	}
	if set["teams"] {
		parsed, err := config.ParseTeams(teams)
		if err != nil {
			return err
		}
		cfg.Teams = parsed
	}
	if set["seed"] {
		cfg.Seed = seed
	}
	if set["tui"] {
		cfg.TUI = tui
	}
	if set["manual"] {
		cfg.Manual = manual
	}
	if set["v"] {
		cfg.Verbose = verbose
	}
	return cfg.Validate()
}

// setupOTelEnv configures OTEL environment variables from our custom env vars
// and reports whether traces have somewhere to go. Without an exporter the
// global tracer provider stays a no-op.
func setupOTelEnv() bool {
	apiKey := os.Getenv("HONEYCOMB_MONSTERTOWER_API_KEY")
	if apiKey == "" {
		return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")
	}

	dataset := os.Getenv("HONEYCOMB_MONSTERTOWER_DATASET")
	if dataset == "" {
		dataset = "monstertower" // default dataset name
	}
	os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
		fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	return true
}
