// Package battle runs a single battle between two monster teams.
package battle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/monstertower/internal/monster"
	"github.com/samdwyer/monstertower/internal/team"
	"github.com/samdwyer/monstertower/internal/telemetry"
)

// DefaultMaxTurns bounds a single battle.
const DefaultMaxTurns = 10000

var (
	// ErrTurnLimit is returned when a battle runs past its turn cap.
	ErrTurnLimit = errors.New("battle exceeded turn limit")
	// ErrNotStarted is returned when a turn is processed before Start.
	ErrNotStarted = errors.New("battle not started")
)

// Result is the state of a battle.
type Result int

const (
	// ResultOngoing means neither team is exhausted yet.
	ResultOngoing Result = iota
	// ResultTeam1 means team 2 is exhausted.
	ResultTeam1
	// ResultTeam2 means team 1 is exhausted.
	ResultTeam2
	// ResultDraw means both teams are exhausted.
	ResultDraw
)

// String returns a human-readable result name.
func (r Result) String() string {
	switch r {
	case ResultOngoing:
		return "ongoing"
	case ResultTeam1:
		return "team1"
	case ResultTeam2:
		return "team2"
	case ResultDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Terminal reports whether the battle is over.
func (r Result) Terminal() bool {
	return r != ResultOngoing
}

// session is the state of one battle run.
type session struct {
	id             string
	team1, team2   *team.Team
	out1, out2     *monster.Monster
	team1Exhausted bool
	team2Exhausted bool
	turn           int
}

func (s *session) result() Result {
	switch {
	case s.team1Exhausted && s.team2Exhausted:
		return ResultDraw
	case s.team1Exhausted:
		return ResultTeam2
	case s.team2Exhausted:
		return ResultTeam1
	default:
		return ResultOngoing
	}
}

// Battle drives turns between two teams. A Battle can be reused for many
// battles but runs only one at a time.
type Battle struct {
	effectiveness Effectiveness
	logger        *log.Logger
	maxTurns      int
	tracer        trace.Tracer

	sess *session
}

// Option configures a Battle.
type Option func(*Battle)

// WithLogger narrates each turn to l.
func WithLogger(l *log.Logger) Option {
	return func(b *Battle) { b.logger = l }
}

// WithMaxTurns overrides DefaultMaxTurns.
func WithMaxTurns(n int) Option {
	return func(b *Battle) { b.maxTurns = n }
}

// WithTracer overrides the global "battle" tracer.
func WithTracer(t trace.Tracer) Option {
	return func(b *Battle) { b.tracer = t }
}

// New creates a battle engine using eff for element multipliers.
func New(eff Effectiveness, opts ...Option) *Battle {
	b := &Battle{
		effectiveness: eff,
		logger:        log.New(io.Discard, "", 0),
		maxTurns:      DefaultMaxTurns,
		tracer:        telemetry.Tracer("battle"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Battle runs team1 against team2 until one or both are exhausted.
func (b *Battle) Battle(ctx context.Context, team1, team2 *team.Team) (Result, error) {
	ctx, span := b.tracer.Start(ctx, "battle.run")
	defer span.End()

	if team1 == nil || team2 == nil {
		return ResultOngoing, errors.New("battle needs two teams")
	}
	size1, size2 := team1.Len(), team2.Len()
	roster1, roster2 := team1.String(), team2.String()
	if err := b.Start(ctx, team1, team2); err != nil {
		span.RecordError(err)
		return ResultOngoing, err
	}
	s := b.sess
	span.SetAttributes(
		attribute.String("battle.id", s.id),
		attribute.String("team1.mode", team1.Mode().String()),
		attribute.String("team2.mode", team2.Mode().String()),
		attribute.Int("team1.size", size1),
		attribute.Int("team2.size", size2),
	)
	b.logger.Printf("Battle %s: Team 1: %s vs. Team 2: %s", s.id, roster1, roster2)

	result := s.result()
	for !result.Terminal() {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return ResultOngoing, err
		}
		if s.turn >= b.maxTurns {
			err := fmt.Errorf("%w: %d turns", ErrTurnLimit, b.maxTurns)
			span.RecordError(err)
			return ResultOngoing, err
		}

		var err error
		result, err = b.ProcessTurn(ctx)
		if err != nil {
			span.RecordError(err)
			return ResultOngoing, err
		}
	}

	span.SetAttributes(
		attribute.String("result", result.String()),
		attribute.Int("turns_taken", s.turn),
	)
	b.logger.Printf("Battle %s: %s after %d turns", s.id, result, s.turn)
	return result, nil
}

// Start begins a new battle by sending out each team's first monster.
// A team that has no monster to send out is exhausted immediately.
func (b *Battle) Start(ctx context.Context, team1, team2 *team.Team) error {
	if team1 == nil || team2 == nil {
		return errors.New("battle needs two teams")
	}
	s := &session{
		id:    uuid.NewString(),
		team1: team1,
		team2: team2,
	}

	var err error
	if s.out1, s.team1Exhausted, err = sendOut(team1); err != nil {
		return fmt.Errorf("team 1: %w", err)
	}
	if s.out2, s.team2Exhausted, err = sendOut(team2); err != nil {
		return fmt.Errorf("team 2: %w", err)
	}

	b.sess = s
	return nil
}

// sendOut retrieves the next monster, reporting exhaustion instead of
// ErrTeamEmpty.
func sendOut(t *team.Team) (*monster.Monster, bool, error) {
	m, err := t.Retrieve()
	if errors.Is(err, team.ErrTeamEmpty) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return m, false, nil
}

// ProcessTurn plays one turn and returns the resulting battle state.
//
// Both teams choose an action against the pre-turn monsters. Swaps and
// specials are applied, then attacks: when both attack, the faster monster
// hits first and the other answers only if it survived; on a speed tie
// monster 1 hits first and monster 2 always answers. If both monsters are
// still standing each loses 1 HP. A monster that knocks out its opponent
// levels up, and fainted monsters are replaced; a team with nothing left to
// send out is exhausted for the rest of the battle.
func (b *Battle) ProcessTurn(ctx context.Context) (Result, error) {
	s := b.sess
	if s == nil {
		return ResultOngoing, ErrNotStarted
	}
	if r := s.result(); r.Terminal() {
		return r, nil
	}

	s.turn++
	_, span := b.tracer.Start(ctx, "battle.turn")
	defer span.End()

	action1 := s.team1.ChooseAction(s.out1, s.out2)
	action2 := s.team2.ChooseAction(s.out2, s.out1)
	span.SetAttributes(
		attribute.String("battle.id", s.id),
		attribute.Int("turn", s.turn),
		attribute.String("action1", action1.String()),
		attribute.String("action2", action2.String()),
	)
	b.logger.Printf("Turn %d: %v (%s) vs %v (%s)", s.turn, s.out1, action1, s.out2, action2)

	var err error
	if s.out1, err = b.act(action1, s.out1, s.team1); err != nil {
		span.RecordError(err)
		return ResultOngoing, fmt.Errorf("team 1 %s: %w", action1, err)
	}
	if s.out2, err = b.act(action2, s.out2, s.team2); err != nil {
		span.RecordError(err)
		return ResultOngoing, fmt.Errorf("team 2 %s: %w", action2, err)
	}

	switch {
	case action1 == team.ActionAttack && action2 == team.ActionAttack:
		b.bothAttack()
	case action1 == team.ActionAttack:
		b.attack(s.out1, s.out2)
	case action2 == team.ActionAttack:
		b.attack(s.out2, s.out1)
	}

	b.endTurn()

	result := s.result()
	span.SetAttributes(
		attribute.Int("hp1", s.out1HP()),
		attribute.Int("hp2", s.out2HP()),
		attribute.String("result", result.String()),
	)
	return result, nil
}

// act applies a non-attack action and returns the team's new active monster.
func (b *Battle) act(action team.Action, out *monster.Monster, t *team.Team) (*monster.Monster, error) {
	switch action {
	case team.ActionSwap:
		if err := t.Add(out); err != nil {
			return out, err
		}
		return t.Retrieve()
	case team.ActionSpecial:
		if err := t.Add(out); err != nil {
			return out, err
		}
		t.Special()
		return t.Retrieve()
	default:
		return out, nil
	}
}

func (b *Battle) bothAttack() {
	s := b.sess
	switch speed1, speed2 := s.out1.Speed(), s.out2.Speed(); {
	case speed1 > speed2:
		b.attack(s.out1, s.out2)
		if s.out2.Alive() {
			b.attack(s.out2, s.out1)
		}
	case speed1 < speed2:
		b.attack(s.out2, s.out1)
		if s.out1.Alive() {
			b.attack(s.out1, s.out2)
		}
	default:
		b.attack(s.out1, s.out2)
		b.attack(s.out2, s.out1)
	}
}

func (b *Battle) attack(attacker, defender *monster.Monster) {
	damage := ComputeDamage(attacker, defender, b.effectiveness)
	defender.TakeDamage(damage)
	b.logger.Printf("  %s hits %s for %d (%d HP left)", attacker.Name(), defender.Name(), damage, defender.HP())
}

func (b *Battle) endTurn() {
	s := b.sess

	if s.out1.Alive() && s.out2.Alive() {
		s.out1.TakeDamage(1)
		s.out2.TakeDamage(1)
	}

	switch {
	case s.out2.Alive() && !s.out1.Alive():
		s.out2 = b.levelUp(s.out2)
		s.out1, s.team1Exhausted = b.replace(s.team1, s.out1, s.team1Exhausted)
	case s.out1.Alive() && !s.out2.Alive():
		s.out1 = b.levelUp(s.out1)
		s.out2, s.team2Exhausted = b.replace(s.team2, s.out2, s.team2Exhausted)
	}

	if !s.out1.Alive() && !s.out2.Alive() {
		s.out1, s.team1Exhausted = b.replace(s.team1, s.out1, s.team1Exhausted)
		s.out2, s.team2Exhausted = b.replace(s.team2, s.out2, s.team2Exhausted)
	}
}

func (b *Battle) levelUp(m *monster.Monster) *monster.Monster {
	leveled := m.LevelUp()
	if leveled != m {
		b.logger.Printf("  %s evolved into %s", m.Name(), leveled.Name())
	} else {
		b.logger.Printf("  %s reached level %d", m.Name(), m.Level())
	}
	return leveled
}

// replace sends out the next monster for a fainted one. An empty team keeps
// its fainted monster and is marked exhausted.
func (b *Battle) replace(t *team.Team, fainted *monster.Monster, exhausted bool) (*monster.Monster, bool) {
	next, err := t.Retrieve()
	if err != nil {
		b.logger.Printf("  %s fainted, no monsters left", fainted.Name())
		return fainted, true
	}
	b.logger.Printf("  %s fainted, %s comes out", fainted.Name(), next.Name())
	return next, exhausted
}

func (s *session) out1HP() int {
	if s.out1 == nil {
		return 0
	}
	return s.out1.HP()
}

func (s *session) out2HP() int {
	if s.out2 == nil {
		return 0
	}
	return s.out2.HP()
}

// Active returns each team's current monster. Either may be nil when a team
// started empty.
func (b *Battle) Active() (*monster.Monster, *monster.Monster) {
	if b.sess == nil {
		return nil, nil
	}
	return b.sess.out1, b.sess.out2
}

// Turn returns the number of turns played in the current battle.
func (b *Battle) Turn() int {
	if b.sess == nil {
		return 0
	}
	return b.sess.turn
}

// ID returns the current battle's unique identifier.
func (b *Battle) ID() string {
	if b.sess == nil {
		return ""
	}
	return b.sess.id
}
