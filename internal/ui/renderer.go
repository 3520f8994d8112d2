package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/monstertower/internal/battle"
	"github.com/samdwyer/monstertower/internal/monster"
	"github.com/samdwyer/monstertower/internal/tower"
)

// Layout rows.
const (
	titleRow   = 0
	userRow    = 2
	enemyRow   = 4
	rosterCol  = 14
	markerCol  = 0
	labelCol   = 2
	defeatedFg = tcell.ColorDarkGray
)

// Renderer handles drawing the tower standings to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws every team with its lives, marks the enemy of the last
// battle and reports its result. last may be nil before the first battle.
func (r *Renderer) Render(t *tower.Tower, last *tower.Outcome, battles int) {
	r.screen.Clear()

	title := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	x := r.screen.DrawText(0, titleRow, "MONSTER TOWER", title)
	r.screen.DrawText(x+2, titleRow, fmt.Sprintf("battles: %d", battles), tcell.StyleDefault.Foreground(tcell.ColorGray))

	if user := t.UserTeam(); user != nil {
		r.drawRow(userRow, "You", t.UserLives(), user.Snapshot(), false)
	}

	lives := t.EnemyLives()
	for i, enemy := range t.EnemyTeams() {
		y := enemyRow + i
		current := last != nil && last.EnemyIndex == i
		r.drawRow(y, fmt.Sprintf("Enemy %d", i+1), lives[i], enemy.Snapshot(), current)
	}

	if last != nil {
		y := enemyRow + len(t.EnemyTeams()) + 1
		r.screen.DrawText(0, y, describe(*last), resultStyle(last.Result))
	}

	r.screen.Show()
}

// drawRow draws one team line: marker, label, lives and colored glyphs.
func (r *Renderer) drawRow(y int, label string, lives int, roster []*monster.Monster, current bool) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	if lives <= 0 {
		style = style.Foreground(defeatedFg)
	}
	if current {
		r.screen.SetContent(markerCol, y, '>', style.Bold(true))
	}
	r.screen.DrawText(labelCol, y, fmt.Sprintf("%-8s %2d", label, lives), style)

	x := rosterCol
	for _, m := range roster {
		glyph := tcell.StyleDefault.Foreground(m.Species().TCellColor())
		if lives <= 0 {
			glyph = glyph.Foreground(defeatedFg)
		}
		r.screen.SetContent(x, y, m.Species().GlyphRune(), glyph.Bold(true))
		x = r.screen.DrawText(x+2, y, m.Name(), style) + 1
	}
}

func describe(o tower.Outcome) string {
	var verdict string
	switch o.Result {
	case battle.ResultTeam1:
		verdict = "You won"
	case battle.ResultTeam2:
		verdict = "You lost"
	default:
		verdict = "Draw"
	}
	return fmt.Sprintf("%s against enemy %d. Lives: you %d, enemies %d", verdict, o.EnemyIndex+1, o.UserLives, o.EnemyLivesTotal)
}

func resultStyle(r battle.Result) tcell.Style {
	switch r {
	case battle.ResultTeam1:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case battle.ResultTeam2:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	}
}

// RenderMessage displays a message on row y.
func (r *Renderer) RenderMessage(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	r.screen.DrawText(0, y, msg, style)
	r.screen.Show()
}
