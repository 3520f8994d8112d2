package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/samdwyer/monstertower/internal/team"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Mode != ModeTower || !cfg.SimpleStats || cfg.MaxTurns != 10000 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Tower.MinLives != 2 || cfg.Tower.MaxLives != 10 {
		t.Errorf("lives = %d..%d, want 2..10", cfg.Tower.MinLives, cfg.Tower.MaxLives)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	t.Setenv(EnvSeed, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 0 || cfg.Mode != ModeTower {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv(EnvSeed, "")
	path := writeFile(t, `
seed: 42
mode: battle
simple_stats: false
tower:
  enemy_teams: 5
teams:
  - mode: priority
    sort_key: speed
    ascending: true
    monsters: [Strikeon, Normake]
  - mode: back
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 42 || cfg.Mode != ModeBattle || cfg.SimpleStats {
		t.Errorf("top-level fields = %+v", cfg)
	}
	if cfg.Tower.EnemyTeams != 5 || cfg.Tower.MaxLives != 10 {
		t.Errorf("tower = %+v, want enemy_teams 5 and default lives", cfg.Tower)
	}
	if cfg.MaxTurns != 10000 {
		t.Errorf("MaxTurns = %d, want default 10000", cfg.MaxTurns)
	}
	if len(cfg.Teams) != 2 {
		t.Fatalf("len(Teams) = %d, want 2", len(cfg.Teams))
	}
	first := cfg.Teams[0]
	if first.Mode != "priority" || first.SortKey != "speed" || !first.Ascending {
		t.Errorf("team 1 = %+v", first)
	}
	if !slices.Equal(first.Monsters, []string{"Strikeon", "Normake"}) {
		t.Errorf("team 1 monsters = %v", first.Monsters)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvSeed, "")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file should fail")
	}
	if _, err := Load(writeFile(t, "seed: [1, 2")); err == nil {
		t.Error("Load of malformed YAML should fail")
	}
	if _, err := Load(writeFile(t, "mode: arena\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load(mode: arena) = %v, want ErrInvalidConfig", err)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv(EnvSeed, "1234")
	cfg, err := Load(writeFile(t, "seed: 42\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 1234 {
		t.Errorf("Seed = %d, want 1234 from %s", cfg.Seed, EnvSeed)
	}

	t.Setenv(EnvSeed, "lots")
	if _, err := Load(""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad %s: error = %v, want ErrInvalidConfig", EnvSeed, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "arena" }},
		{"battle with one team", func(c *Config) { c.Mode = ModeBattle; c.Teams = c.Teams[:1] }},
		{"tower without teams", func(c *Config) { c.Teams = nil }},
		{"zero max turns", func(c *Config) { c.MaxTurns = 0 }},
		{"negative enemies", func(c *Config) { c.Tower.EnemyTeams = -1 }},
		{"reversed lives", func(c *Config) { c.Tower.MinLives = 5; c.Tower.MaxLives = 3 }},
		{"bad team mode", func(c *Config) { c.Teams[0].Mode = "middle" }},
		{"priority without key", func(c *Config) { c.Teams[0].Mode = "priority" }},
		{"bad sort key", func(c *Config) { c.Teams[0].SortKey = "luck" }},
		{"too many monsters", func(c *Config) {
			c.Teams[0].Monsters = []string{"Normake", "Normake", "Normake", "Normake", "Normake", "Normake", "Normake"}
		}},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.modify(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: Validate() = %v, want ErrInvalidConfig", tt.name, err)
		}
	}

	manual := Default()
	manual.Teams = nil
	manual.Manual = true
	if err := manual.Validate(); err != nil {
		t.Errorf("manual tower without teams: Validate() = %v", err)
	}
}

func TestTeamOptions(t *testing.T) {
	tc := TeamConfig{Mode: "optimise", SortKey: "defense"}
	mode, err := tc.TeamMode()
	if err != nil || mode != team.ModePriority {
		t.Fatalf("TeamMode() = %v, %v, want priority", mode, err)
	}
	opts, err := tc.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(opts) != 2 {
		t.Errorf("len(Options()) = %d, want 2", len(opts))
	}

	if opts, err := (TeamConfig{Mode: "front"}).Options(); err != nil || opts != nil {
		t.Errorf("front Options() = %v, %v, want none", opts, err)
	}
	if _, err := (TeamConfig{Mode: "priority"}).Options(); !errors.Is(err, team.ErrSortKeyRequired) {
		t.Errorf("priority without key = %v, want ErrSortKeyRequired", err)
	}
}

func TestParseTeams(t *testing.T) {
	got, err := ParseTeams("front=Flamikin, Vineon; priority:-speed=Strikeon ;back")
	if err != nil {
		t.Fatalf("ParseTeams: %v", err)
	}
	want := []TeamConfig{
		{Mode: "front", Monsters: []string{"Flamikin", "Vineon"}},
		{Mode: "priority", SortKey: "speed", Ascending: true, Monsters: []string{"Strikeon"}},
		{Mode: "back"},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Mode != w.Mode || g.SortKey != w.SortKey || g.Ascending != w.Ascending || !slices.Equal(g.Monsters, w.Monsters) {
			t.Errorf("team %d = %+v, want %+v", i, g, w)
		}
	}

	for _, bad := range []string{"", " ; ", "sideways=Normake", "priority=Normake", "priority:luck"} {
		if _, err := ParseTeams(bad); err == nil {
			t.Errorf("ParseTeams(%q) should fail", bad)
		}
	}
}
