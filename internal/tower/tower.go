// Package tower chains battles between one user team and a row of enemy
// teams, each side holding a number of lives.
package tower

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/monstertower/internal/battle"
	"github.com/samdwyer/monstertower/internal/gamedata"
	"github.com/samdwyer/monstertower/internal/team"
	"github.com/samdwyer/monstertower/internal/telemetry"
)

// Default life range for the user and each enemy team.
const (
	DefaultMinLives = 2
	DefaultMaxLives = 10
)

var (
	// ErrTowerComplete is returned by NextBattle once no battles remain.
	ErrTowerComplete = errors.New("tower complete")
	// ErrNoTeam is returned when the user team has not been set.
	ErrNoTeam = errors.New("user team not set")
	// ErrInvalidLives is returned for an empty or negative life range.
	ErrInvalidLives = errors.New("invalid lives range")
)

// Outcome reports a single tower battle.
type Outcome struct {
	Result          battle.Result
	UserTeam        *team.Team
	EnemyTeam       *team.Team
	EnemyIndex      int
	UserLives       int
	EnemyLivesTotal int
}

// Tower sequences battles. It is not safe for concurrent use.
type Tower struct {
	id       string
	battle   *battle.Battle
	registry *gamedata.SpeciesRegistry
	rng      *rand.Rand
	minLives int
	maxLives int
	simple   bool
	logger   *log.Logger
	tracer   trace.Tracer

	user       *team.Team
	userLives  int
	enemies    []*team.Team
	enemyLives []int
}

// Option configures a Tower.
type Option func(*Tower)

// WithLivesRange sets the inclusive range lives are drawn from.
func WithLivesRange(lo, hi int) Option {
	return func(t *Tower) {
		t.minLives = lo
		t.maxLives = hi
	}
}

// WithStatsMode chooses fixed (true, the default) or formula stats for
// generated enemy teams.
func WithStatsMode(simple bool) Option {
	return func(t *Tower) { t.simple = simple }
}

// WithLogger reports each battle outcome to l.
func WithLogger(l *log.Logger) Option {
	return func(t *Tower) { t.logger = l }
}

// WithTracer overrides the global "tower" tracer.
func WithTracer(tr trace.Tracer) Option {
	return func(t *Tower) { t.tracer = tr }
}

// New creates a tower that runs battles with b and draws enemy teams from registry.
func New(b *battle.Battle, registry *gamedata.SpeciesRegistry, rng *rand.Rand, opts ...Option) (*Tower, error) {
	if b == nil {
		return nil, errors.New("tower needs a battle engine")
	}
	t := &Tower{
		id:       uuid.NewString(),
		battle:   b,
		registry: registry,
		rng:      rng,
		minLives: DefaultMinLives,
		maxLives: DefaultMaxLives,
		simple:   true,
		logger:   log.New(io.Discard, "", 0),
		tracer:   telemetry.Tracer("tower"),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.minLives < 0 || t.maxLives < t.minLives {
		return nil, fmt.Errorf("%w: %d..%d", ErrInvalidLives, t.minLives, t.maxLives)
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return t, nil
}

// ID returns the tower run's unique identifier.
func (t *Tower) ID() string { return t.id }

func (t *Tower) rollLives() int {
	return t.minLives + t.rng.Intn(t.maxLives-t.minLives+1)
}

// SetMyTeam sets the user team and draws its lives.
func (t *Tower) SetMyTeam(tm *team.Team) error {
	if tm == nil {
		return ErrNoTeam
	}
	t.user = tm
	t.userLives = t.rollLives()
	return nil
}

// GenerateTeams replaces the enemies with n random BACK teams, each with
// its own lives.
func (t *Tower) GenerateTeams(ctx context.Context, n int) error {
	_, span := t.tracer.Start(ctx, "tower.generate_teams")
	defer span.End()
	span.SetAttributes(
		attribute.String("tower.id", t.id),
		attribute.Int("teams", n),
	)

	if n < 0 {
		return fmt.Errorf("negative team count %d", n)
	}
	if t.registry == nil {
		return errors.New("tower has no species registry")
	}

	t.enemies = make([]*team.Team, 0, n)
	t.enemyLives = make([]int, 0, n)
	for i := 0; i < n; i++ {
		enemy, err := team.New(team.ModeBack, team.RandomSelection(t.registry, t.rng), team.WithStatsMode(t.simple))
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("enemy team %d: %w", i, err)
		}
		t.enemies = append(t.enemies, enemy)
		t.enemyLives = append(t.enemyLives, t.rollLives())
	}
	span.SetAttributes(attribute.Int("enemy.lives_total", t.EnemyLivesTotal()))
	return nil
}

// AddEnemyTeam appends an already built enemy team and draws its lives.
func (t *Tower) AddEnemyTeam(tm *team.Team) error {
	if tm == nil {
		return errors.New("enemy team is nil")
	}
	t.enemies = append(t.enemies, tm)
	t.enemyLives = append(t.enemyLives, t.rollLives())
	return nil
}

// BattlesRemaining reports whether the user has lives left and at least
// one enemy does too.
func (t *Tower) BattlesRemaining() bool {
	if t.userLives <= 0 {
		return false
	}
	return t.nextEnemy() >= 0
}

// nextEnemy returns the lowest index with lives left, or -1.
func (t *Tower) nextEnemy() int {
	for i, lives := range t.enemyLives {
		if lives > 0 {
			return i
		}
	}
	return -1
}

// NextBattle battles the first enemy team that still has lives. Both teams
// are reset first; the loser loses a life, and both do on a draw.
func (t *Tower) NextBattle(ctx context.Context) (Outcome, error) {
	ctx, span := t.tracer.Start(ctx, "tower.next_battle")
	defer span.End()

	if t.user == nil {
		return Outcome{}, ErrNoTeam
	}
	if !t.BattlesRemaining() {
		return Outcome{}, ErrTowerComplete
	}

	idx := t.nextEnemy()
	enemy := t.enemies[idx]
	t.user.Reset()
	enemy.Reset()

	result, err := t.battle.Battle(ctx, t.user, enemy)
	if err != nil {
		span.RecordError(err)
		return Outcome{}, fmt.Errorf("battle against enemy %d: %w", idx, err)
	}

	switch result {
	case battle.ResultTeam1:
		t.enemyLives[idx]--
	case battle.ResultTeam2:
		t.userLives--
	default:
		t.userLives--
		t.enemyLives[idx]--
	}

	out := Outcome{
		Result:          result,
		UserTeam:        t.user,
		EnemyTeam:       enemy,
		EnemyIndex:      idx,
		UserLives:       t.userLives,
		EnemyLivesTotal: t.EnemyLivesTotal(),
	}
	span.SetAttributes(
		attribute.String("tower.id", t.id),
		attribute.Int("enemy.index", idx),
		attribute.String("result", result.String()),
		attribute.Int("user.lives", out.UserLives),
		attribute.Int("enemy.lives_total", out.EnemyLivesTotal),
	)
	t.logger.Printf("Tower %s: %s vs enemy %d (%v), user lives %d, enemy lives %d",
		t.id, result, idx, enemy, out.UserLives, out.EnemyLivesTotal)
	return out, nil
}

// Run plays battles until none remain and returns every outcome.
func (t *Tower) Run(ctx context.Context) ([]Outcome, error) {
	var outcomes []Outcome
	for t.BattlesRemaining() {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		out, err := t.NextBattle(ctx)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// UserTeam returns the user team, or nil if unset.
func (t *Tower) UserTeam() *team.Team { return t.user }

// UserLives returns the user's remaining lives.
func (t *Tower) UserLives() int { return t.userLives }

// EnemyTeams returns the enemy teams in battle order.
func (t *Tower) EnemyTeams() []*team.Team { return t.enemies }

// EnemyLives returns a copy of each enemy team's remaining lives.
func (t *Tower) EnemyLives() []int {
	out := make([]int, len(t.enemyLives))
	copy(out, t.enemyLives)
	return out
}

// EnemyLivesTotal returns the sum of enemy lives.
func (t *Tower) EnemyLivesTotal() int {
	total := 0
	for _, lives := range t.enemyLives {
		total += lives
	}
	return total
}
