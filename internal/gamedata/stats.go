package gamedata

import "fmt"

// Stats supplies a monster's combat stats at a given level.
// Implementations must be pure: the same level always yields the same values.
type Stats interface {
	Attack(level int) int
	Defense(level int) int
	Speed(level int) int
	MaxHP(level int) int
}

// SimpleStats are fixed values that do not change with level.
type SimpleStats struct {
	BaseAttack  int `json:"attack"`
	BaseDefense int `json:"defense"`
	BaseSpeed   int `json:"speed"`
	BaseMaxHP   int `json:"maxHp"`
}

func (s SimpleStats) Attack(int) int  { return s.BaseAttack }
func (s SimpleStats) Defense(int) int { return s.BaseDefense }
func (s SimpleStats) Speed(int) int   { return s.BaseSpeed }
func (s SimpleStats) MaxHP(int) int   { return s.BaseMaxHP }

// ComplexStatsDef holds the raw formula tokens for each stat as loaded from JSON.
type ComplexStatsDef struct {
	Attack  []string `json:"attack"`
	Defense []string `json:"defense"`
	Speed   []string `json:"speed"`
	MaxHP   []string `json:"maxHp"`
}

// IsZero reports whether no formulas were provided.
func (d ComplexStatsDef) IsZero() bool {
	return len(d.Attack) == 0 && len(d.Defense) == 0 && len(d.Speed) == 0 && len(d.MaxHP) == 0
}

// ComplexStats evaluates a formula per stat at the requested level.
type ComplexStats struct {
	attack  *Formula
	defense *Formula
	speed   *Formula
	maxHP   *Formula
}

// NewComplexStats compiles all four formulas of def.
func NewComplexStats(def ComplexStatsDef) (*ComplexStats, error) {
	var cs ComplexStats
	for _, f := range []struct {
		name   string
		tokens []string
		dst    **Formula
	}{
		{"attack", def.Attack, &cs.attack},
		{"defense", def.Defense, &cs.defense},
		{"speed", def.Speed, &cs.speed},
		{"maxHp", def.MaxHP, &cs.maxHP},
	} {
		compiled, err := ParseFormula(f.tokens)
		if err != nil {
			return nil, fmt.Errorf("%s formula: %w", f.name, err)
		}
		*f.dst = compiled
	}
	return &cs, nil
}

func (c *ComplexStats) Attack(level int) int  { return c.attack.EvalInt(level) }
func (c *ComplexStats) Defense(level int) int { return c.defense.EvalInt(level) }
func (c *ComplexStats) Speed(level int) int   { return c.speed.EvalInt(level) }
func (c *ComplexStats) MaxHP(level int) int   { return c.maxHP.EvalInt(level) }

// Ensure both providers implement Stats
var (
	_ Stats = SimpleStats{}
	_ Stats = (*ComplexStats)(nil)
)
