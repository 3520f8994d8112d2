// Package config loads run configuration from YAML, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/monstertower/internal/team"
)

// Run modes.
const (
	ModeTower  = "tower"
	ModeBattle = "battle"
)

// EnvSeed overrides the configured seed when set.
const EnvSeed = "MONSTERTOWER_SEED"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// TeamConfig describes one team. An empty Monsters list picks a random team.
type TeamConfig struct {
	Mode      string   `yaml:"mode"`
	SortKey   string   `yaml:"sort_key,omitempty"`
	Ascending bool     `yaml:"ascending,omitempty"`
	Monsters  []string `yaml:"monsters,omitempty"`
}

// TowerConfig holds tower ladder settings.
type TowerConfig struct {
	EnemyTeams int `yaml:"enemy_teams"`
	MinLives   int `yaml:"min_lives"`
	MaxLives   int `yaml:"max_lives"`
}

// Config holds run configuration options.
type Config struct {
	// Seed for random number generation. A seed of 0 means a random seed
	// will be generated.
	Seed int64 `yaml:"seed"`
	// Mode is ModeTower or ModeBattle.
	Mode string `yaml:"mode"`
	// SimpleStats selects fixed stats over level formulas.
	SimpleStats bool `yaml:"simple_stats"`
	MaxTurns    int  `yaml:"max_turns"`
	Verbose     bool `yaml:"verbose"`
	TUI         bool `yaml:"tui"`
	// Manual asks for the first team on stdin instead of using Teams[0].
	Manual bool `yaml:"manual"`

	Tower TowerConfig `yaml:"tower"`
	// Teams are the user team (tower mode) or both sides (battle mode).
	Teams []TeamConfig `yaml:"teams"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mode:        ModeTower,
		SimpleStats: true,
		MaxTurns:    10000,
		Tower: TowerConfig{
			EnemyTeams: 3,
			MinLives:   2,
			MaxLives:   10,
		},
		Teams: []TeamConfig{
			{Mode: "front", Monsters: []string{"Flamikin", "Aquariuma", "Vineon"}},
			{Mode: "back"},
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. An empty path loads only defaults and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvSeed, v, err)
		}
		c.Seed = seed
	}
	return nil
}

// Validate checks that the configuration can build a run.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeTower:
		if len(c.Teams) < 1 && !c.Manual {
			return fmt.Errorf("%w: tower mode needs a user team", ErrInvalidConfig)
		}
	case ModeBattle:
		if len(c.Teams) < 2 {
			return fmt.Errorf("%w: battle mode needs two teams, got %d", ErrInvalidConfig, len(c.Teams))
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}

	if c.MaxTurns <= 0 {
		return fmt.Errorf("%w: max_turns must be positive", ErrInvalidConfig)
	}
	if c.Tower.EnemyTeams < 0 {
		return fmt.Errorf("%w: negative enemy_teams", ErrInvalidConfig)
	}
	if c.Tower.MinLives < 0 || c.Tower.MaxLives < c.Tower.MinLives {
		return fmt.Errorf("%w: lives range %d..%d", ErrInvalidConfig, c.Tower.MinLives, c.Tower.MaxLives)
	}

	for i, tc := range c.Teams {
		if _, err := tc.Options(); err != nil {
			return fmt.Errorf("%w: team %d: %v", ErrInvalidConfig, i+1, err)
		}
		if len(tc.Monsters) > team.Capacity {
			return fmt.Errorf("%w: team %d: %d monsters, maximum is %d", ErrInvalidConfig, i+1, len(tc.Monsters), team.Capacity)
		}
	}
	return nil
}

// TeamMode parses the team's ordering mode.
func (tc TeamConfig) TeamMode() (team.Mode, error) {
	return team.ParseMode(tc.Mode)
}

// Options converts the sort settings into team options.
func (tc TeamConfig) Options() ([]team.Option, error) {
	mode, err := tc.TeamMode()
	if err != nil {
		return nil, err
	}
	key, err := team.ParseSortKey(tc.SortKey)
	if err != nil {
		return nil, err
	}
	if mode != team.ModePriority {
		return nil, nil
	}
	if key == team.SortNone {
		return nil, team.ErrSortKeyRequired
	}
	return []team.Option{team.WithSortKey(key), team.WithDescending(!tc.Ascending)}, nil
}

// ParseTeams parses the -teams flag: teams separated by ';', each written
// MODE[:SORTKEY]=NAME,NAME. A leading "-" on SORTKEY sorts ascending. A
// missing or empty name list picks a random team.
//
//	front=Flamikin,Vineon;priority:speed=Strikeon;back
func ParseTeams(s string) ([]TeamConfig, error) {
	var out []TeamConfig
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		head, list, _ := strings.Cut(part, "=")
		mode, key, _ := strings.Cut(head, ":")

		tc := TeamConfig{Mode: strings.TrimSpace(mode), SortKey: strings.TrimSpace(key)}
		if strings.HasPrefix(tc.SortKey, "-") {
			tc.SortKey = strings.TrimPrefix(tc.SortKey, "-")
			tc.Ascending = true
		}
		for _, name := range strings.Split(list, ",") {
			if name = strings.TrimSpace(name); name != "" {
				tc.Monsters = append(tc.Monsters, name)
			}
		}
		if _, err := tc.Options(); err != nil {
			return nil, fmt.Errorf("team %q: %w", part, err)
		}
		out = append(out, tc)
	}
	if len(out) == 0 {
		return nil, errors.New("no teams given")
	}
	return out, nil
}
