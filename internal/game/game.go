package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/monstertower/internal/battle"
	"github.com/samdwyer/monstertower/internal/config"
	"github.com/samdwyer/monstertower/internal/gamedata"
	"github.com/samdwyer/monstertower/internal/team"
	"github.com/samdwyer/monstertower/internal/telemetry"
	"github.com/samdwyer/monstertower/internal/tower"
	"github.com/samdwyer/monstertower/internal/ui"
)

// Game holds the entire run state.
type Game struct {
	cfg      config.Config
	in       io.Reader
	out      io.Writer
	screen   *ui.Screen
	renderer *ui.Renderer

	registry *gamedata.SpeciesRegistry
	table    *gamedata.EffectivenessTable
	rng      *rand.Rand
	seed     int64

	tower    *tower.Tower
	last     *tower.Outcome
	outcomes []tower.Outcome
	state    State
	running  bool
}

// Option configures a Game.
type Option func(*Game)

// WithInput sets where manual team selection reads answers. Defaults to stdin.
func WithInput(r io.Reader) Option {
	return func(g *Game) { g.in = r }
}

// WithOutput sets where reports and prompts are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(g *Game) { g.out = w }
}

// WithScreen uses s for the terminal view instead of opening the terminal.
func WithScreen(s *ui.Screen) Option {
	return func(g *Game) { g.screen = s }
}

// New creates a new game instance from cfg.
func New(cfg config.Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		cfg:     cfg,
		in:      os.Stdin,
		out:     os.Stdout,
		state:   StateReady,
		running: true,
	}
	for _, opt := range opts {
		opt(g)
	}

	registry, err := gamedata.LoadSpeciesRegistry()
	if err != nil {
		return nil, fmt.Errorf("loading species: %w", err)
	}
	table, err := gamedata.LoadEffectivenessTable()
	if err != nil {
		return nil, fmt.Errorf("loading elements: %w", err)
	}
	if err := registry.CheckElements(table); err != nil {
		return nil, err
	}
	g.registry = registry
	g.table = table

	// A seed of 0 means a random seed.
	g.seed = cfg.Seed
	if g.seed == 0 {
		g.seed = time.Now().UnixNano()
	}
	g.rng = rand.New(rand.NewSource(g.seed))

	if cfg.TUI && cfg.Mode == config.ModeTower && g.screen == nil {
		screen, err := ui.NewScreen()
		if err != nil {
			return nil, err
		}
		g.screen = screen
	}
	if g.screen != nil {
		g.renderer = ui.NewRenderer(g.screen)
	}
	return g, nil
}

// Seed returns the seed the run's random source was built from.
func (g *Game) Seed() int64 { return g.seed }

// State returns the current run state.
func (g *Game) State() State { return g.state }

// Outcomes returns the tower battles played so far.
func (g *Game) Outcomes() []tower.Outcome { return g.outcomes }

func (g *Game) newBattle() *battle.Battle {
	opts := []battle.Option{battle.WithMaxTurns(g.cfg.MaxTurns)}
	if g.cfg.Verbose {
		opts = append(opts, battle.WithLogger(log.New(g.out, "", 0)))
	}
	return battle.New(g.table, opts...)
}

// buildTeam creates a team from tc. manual asks on the game input instead
// of using the listed monsters; an empty list picks a random team.
func (g *Game) buildTeam(tc config.TeamConfig, manual bool) (*team.Team, error) {
	mode, err := tc.TeamMode()
	if err != nil {
		return nil, err
	}
	opts, err := tc.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, team.WithStatsMode(g.cfg.SimpleStats))

	var sel team.Selector
	switch {
	case manual:
		sel = team.ManualSelection(g.registry, team.NewPromptPicker(g.in, g.out))
	case len(tc.Monsters) == 0:
		sel = team.RandomSelection(g.registry, g.rng)
	default:
		sel, err = team.ProvidedByName(g.registry, tc.Monsters...)
		if err != nil {
			return nil, err
		}
	}
	return team.New(mode, sel, opts...)
}

// userTeamConfig returns the first configured team, or a BACK team when
// only manual selection was asked for.
func (g *Game) userTeamConfig() config.TeamConfig {
	if len(g.cfg.Teams) > 0 {
		return g.cfg.Teams[0]
	}
	return config.TeamConfig{Mode: team.ModeBack.String()}
}

// Run executes the configured mode until it completes or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("game")

	ctx, initSpan := tracer.Start(ctx, "game.init")
	initSpan.SetAttributes(
		attribute.String("mode", g.cfg.Mode),
		attribute.Int64("seed", g.seed),
		attribute.Int("species", g.registry.Count()),
		attribute.Bool("tui", g.renderer != nil),
	)

	if g.cfg.Mode == config.ModeBattle {
		initSpan.End()
		return g.runBattle(ctx)
	}

	err := g.setupTower(ctx)
	if err != nil {
		initSpan.RecordError(err)
	}
	initSpan.End()
	if err != nil {
		return err
	}

	if g.renderer != nil {
		return g.runInteractive(ctx)
	}
	return g.runHeadless(ctx)
}

// runBattle plays the first two configured teams against each other.
func (g *Game) runBattle(ctx context.Context) error {
	team1, err := g.buildTeam(g.cfg.Teams[0], g.cfg.Manual)
	if err != nil {
		return fmt.Errorf("team 1: %w", err)
	}
	team2, err := g.buildTeam(g.cfg.Teams[1], false)
	if err != nil {
		return fmt.Errorf("team 2: %w", err)
	}

	fmt.Fprintf(g.out, "Team 1: %v\nTeam 2: %v\n", team1, team2)
	b := g.newBattle()
	result, err := b.Battle(ctx, team1, team2)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out, "Result: %s after %d turns\n", result, b.Turn())
	g.state = StateComplete
	return nil
}

func (g *Game) setupTower(ctx context.Context) error {
	tw, err := tower.New(g.newBattle(), g.registry, g.rng,
		tower.WithLivesRange(g.cfg.Tower.MinLives, g.cfg.Tower.MaxLives),
		tower.WithStatsMode(g.cfg.SimpleStats),
	)
	if err != nil {
		return err
	}
	user, err := g.buildTeam(g.userTeamConfig(), g.cfg.Manual)
	if err != nil {
		return fmt.Errorf("user team: %w", err)
	}
	if err := tw.SetMyTeam(user); err != nil {
		return err
	}
	if err := tw.GenerateTeams(ctx, g.cfg.Tower.EnemyTeams); err != nil {
		return err
	}
	g.tower = tw
	if !tw.BattlesRemaining() {
		g.state = StateComplete
	}
	return nil
}

// step plays the next tower battle.
func (g *Game) step(ctx context.Context) error {
	out, err := g.tower.NextBattle(ctx)
	if errors.Is(err, tower.ErrTowerComplete) {
		g.state = StateComplete
		return nil
	}
	if err != nil {
		return err
	}
	g.outcomes = append(g.outcomes, out)
	g.last = &g.outcomes[len(g.outcomes)-1]
	if !g.tower.BattlesRemaining() {
		g.state = StateComplete
	}
	return nil
}

// runHeadless plays the whole tower and writes one line per battle.
func (g *Game) runHeadless(ctx context.Context) error {
	fmt.Fprintf(g.out, "Tower %s (seed %d): %v with %d lives against %d teams\n",
		g.tower.ID(), g.seed, g.tower.UserTeam(), g.tower.UserLives(), len(g.tower.EnemyTeams()))

	for g.state == StateReady {
		if err := ctx.Err(); err != nil {
			return err
		}
		played := len(g.outcomes)
		if err := g.step(ctx); err != nil {
			return err
		}
		if len(g.outcomes) > played {
			o := g.last
			fmt.Fprintf(g.out, "Battle %d vs enemy %d: %s (lives: you %d, enemies %d)\n",
				len(g.outcomes), o.EnemyIndex+1, o.Result, o.UserLives, o.EnemyLivesTotal)
		}
	}
	fmt.Fprintf(g.out, "Tower complete after %d battles: %s\n", len(g.outcomes), g.verdict())
	return nil
}

func (g *Game) verdict() string {
	if g.tower.UserLives() > 0 {
		return "the user team cleared the tower"
	}
	return "the user team ran out of lives"
}

// runInteractive shows the standings and plays a battle per key press.
func (g *Game) runInteractive(ctx context.Context) error {
	defer g.Close()

	for g.running {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.render()
		if err := g.handleInput(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) render() {
	g.renderer.Render(g.tower, g.last, len(g.outcomes))
	_, h := g.screen.Size()
	msg := "any key: next battle   q: quit"
	if g.state == StateComplete {
		msg = "Tower complete: " + g.verdict() + "   q: quit"
	}
	g.renderer.RenderMessage(msg, h-1)
}

// handleInput processes a single input event.
func (g *Game) handleInput(ctx context.Context) error {
	ev := g.screen.PollEvent()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		return g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	case nil:
		// The screen was finalized.
		g.running = false
	}
	return nil
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false
		return nil
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			g.running = false
			return nil
		}
	}

	if g.state == StateComplete {
		return nil
	}
	return g.step(ctx)
}

// Close cleans up game resources. It is safe to call more than once.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
		g.screen = nil
	}
}
