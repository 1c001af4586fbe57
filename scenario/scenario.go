// Package scenario loads match definitions from YAML and assembles the
// world, game flags and trigger engine they describe.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/vimy/vimy-triggers/model"
	"github.com/nstehr/vimy/vimy-triggers/script"
	"github.com/nstehr/vimy/vimy-triggers/trigger"
)

// Scenario is one match setup.
type Scenario struct {
	Name       string     `yaml:"name"`
	Map        MapDef     `yaml:"map,omitempty"`
	UnitTypes  []UnitType `yaml:"unit_types"`
	Players    []Player   `yaml:"players,omitempty"`
	ThisPlayer int        `yaml:"this_player"`
	Units      []Unit     `yaml:"units,omitempty"`
	Triggers   []Trigger  `yaml:"triggers,omitempty"`
	// Script is a Lua file run after the expression triggers are
	// registered. Relative paths resolve against the scenario file.
	Script string `yaml:"script,omitempty"`

	dir string
}

// MapDef is either explicit terrain rows or a plain land field of the
// given size. Both empty means the default field.
type MapDef struct {
	Width  int      `yaml:"width,omitempty"`
	Height int      `yaml:"height,omitempty"`
	Rows   []string `yaml:"rows,omitempty"`
}

type UnitType struct {
	Ident    string `yaml:"ident"`
	Name     string `yaml:"name,omitempty"`
	Width    int    `yaml:"width,omitempty"`
	Height   int    `yaml:"height,omitempty"`
	Building bool   `yaml:"building,omitempty"`
	Domain   string `yaml:"domain,omitempty"`
}

type Player struct {
	Index   int    `yaml:"index"`
	Name    string `yaml:"name,omitempty"`
	Enemies []int  `yaml:"enemies,omitempty"`
}

type Unit struct {
	Type    string `yaml:"type"`
	Owner   int    `yaml:"owner"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Rescued bool   `yaml:"rescued,omitempty"`
}

// Trigger is an expression trigger; see trigger.Compiler for the
// functions available in When and Then.
type Trigger struct {
	When string `yaml:"when"`
	Then string `yaml:"then"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(b []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks everything that can be checked without compiling
// triggers or running the script.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario name is required")
	}
	if len(s.UnitTypes) == 0 {
		return errors.New("scenario defines no unit types")
	}
	c, err := s.catalog()
	if err != nil {
		return err
	}
	if _, err := s.terrain(); err != nil {
		return err
	}
	if !validPlayer(s.ThisPlayer) {
		return fmt.Errorf("this_player %d out of range [0,%d)", s.ThisPlayer, model.MaxPlayers)
	}
	seen := make(map[int]bool)
	for _, p := range s.Players {
		if !validPlayer(p.Index) {
			return fmt.Errorf("player %d out of range [0,%d)", p.Index, model.MaxPlayers)
		}
		if seen[p.Index] {
			return fmt.Errorf("player %d listed twice", p.Index)
		}
		seen[p.Index] = true
		for _, e := range p.Enemies {
			if !validPlayer(e) {
				return fmt.Errorf("player %d: enemy %d out of range", p.Index, e)
			}
		}
	}
	for i, u := range s.Units {
		if _, err := c.Lookup(u.Type); err != nil {
			return fmt.Errorf("unit %d: %w", i, err)
		}
		if !validPlayer(u.Owner) {
			return fmt.Errorf("unit %d: owner %d out of range", i, u.Owner)
		}
	}
	for i, t := range s.Triggers {
		if t.When == "" || t.Then == "" {
			return fmt.Errorf("trigger %d: both when and then are required", i)
		}
	}
	return nil
}

func validPlayer(i int) bool { return i >= 0 && i < model.MaxPlayers }

func (s *Scenario) catalog() (*model.Catalog, error) {
	c := model.NewCatalog()
	for _, ut := range s.UnitTypes {
		d, err := model.ParseMoveDomain(ut.Domain)
		if err != nil {
			return nil, fmt.Errorf("unit type %s: %w", ut.Ident, err)
		}
		err = c.Add(&model.UnitType{
			Ident:      ut.Ident,
			Name:       ut.Name,
			TileWidth:  ut.Width,
			TileHeight: ut.Height,
			Building:   ut.Building,
			Domain:     d,
		})
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *Scenario) terrain() (*model.Map, error) {
	switch {
	case len(s.Map.Rows) > 0:
		return model.ParseMap(s.Map.Rows)
	case s.Map.Width > 0 && s.Map.Height > 0:
		return model.NewMap(s.Map.Width, s.Map.Height), nil
	case s.Map.Width == 0 && s.Map.Height == 0:
		return nil, nil
	}
	return nil, fmt.Errorf("map size %dx%d is invalid", s.Map.Width, s.Map.Height)
}

// Match is a built scenario ready to simulate. Script is nil unless the
// scenario names a Lua file.
type Match struct {
	World  *model.World
	Game   *trigger.Game
	Engine *trigger.Engine
	Script *script.Runtime
}

// Close releases the script runtime, if any.
func (m *Match) Close() {
	if m.Script != nil {
		m.Script.Close()
	}
}

// Build creates the world and registers triggers: expression triggers in
// file order, then whatever the script adds. If nothing was registered the
// stock single-player triggers are installed.
func (s *Scenario) Build() (*Match, error) {
	c, err := s.catalog()
	if err != nil {
		return nil, err
	}
	m, err := s.terrain()
	if err != nil {
		return nil, err
	}
	w := model.NewWorld(c, m)
	if err := w.SetThisPlayer(s.ThisPlayer); err != nil {
		return nil, err
	}
	for _, p := range s.Players {
		pl := w.Player(p.Index)
		pl.Name = p.Name
		for _, e := range p.Enemies {
			pl.SetEnemy(e)
		}
	}
	for i, u := range s.Units {
		ut, err := c.Lookup(u.Type)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", i, err)
		}
		unit, err := w.AddUnit(ut, u.Owner, u.X, u.Y)
		if err != nil {
			return nil, fmt.Errorf("unit %d (%s): %w", i, u.Type, err)
		}
		unit.Rescued = u.Rescued
	}

	g := &trigger.Game{}
	g.Start()
	match := &Match{World: w, Game: g}

	var defaults trigger.Callable
	if s.Script != "" {
		rt, err := script.New(w, c, g)
		if err != nil {
			return nil, err
		}
		match.Script = rt
		match.Engine = rt.Engine()
		defaults = rt.Defaults()
	} else {
		match.Engine = trigger.NewEngine(nil)
		defaults = trigger.SinglePlayer(match.Engine, w, g)
	}

	cp := trigger.NewCompiler(w, c, g)
	for i, t := range s.Triggers {
		cond, err := cp.Condition(t.When)
		if err != nil {
			match.Close()
			return nil, fmt.Errorf("trigger %d when: %w", i, err)
		}
		action, err := cp.Action(t.Then)
		if err != nil {
			match.Close()
			return nil, fmt.Errorf("trigger %d then: %w", i, err)
		}
		if err := match.Engine.Register(cond, action); err != nil {
			match.Close()
			return nil, fmt.Errorf("trigger %d: %w", i, err)
		}
	}

	if match.Script != nil {
		path := s.Script
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		if err := match.Script.DoFile(path); err != nil {
			match.Close()
			return nil, fmt.Errorf("run script: %w", err)
		}
	}

	if err := match.Engine.Init(defaults); err != nil {
		match.Close()
		return nil, err
	}
	return match, nil
}
