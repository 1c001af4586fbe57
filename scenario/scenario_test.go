package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/vimy/vimy-triggers/model"
	"github.com/nstehr/vimy/vimy-triggers/trigger"
)

const minimal = `
name: duel
map:
  width: 32
  height: 32
unit_types:
  - ident: unit-footman
  - ident: unit-farm
    width: 2
    height: 2
    building: true
players:
  - index: 0
    enemies: [1]
  - index: 1
    enemies: [0]
units:
  - {type: unit-footman, owner: 0, x: 1, y: 1}
  - {type: unit-farm, owner: 0, x: 4, y: 4}
  - {type: unit-footman, owner: 1, x: 20, y: 20, rescued: true}
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseMinimal(t *testing.T) {
	s, err := Parse([]byte(minimal))
	require.NoError(t, err)
	assert.Equal(t, "duel", s.Name)
	assert.Len(t, s.UnitTypes, 2)
	assert.Len(t, s.Units, 3)
	assert.True(t, s.Units[2].Rescued)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no name", "unit_types: [{ident: unit-a}]", nil},
		{"no unit types", "name: x", nil},
		{"unknown key", "name: x\nunit_types: [{ident: unit-a}]\nvictory: always", nil},
		{"duplicate type", "name: x\nunit_types: [{ident: unit-a}, {ident: unit-a}]", nil},
		{"bad domain", "name: x\nunit_types: [{ident: unit-a, domain: space}]", nil},
		{"bad this player", "name: x\nunit_types: [{ident: unit-a}]\nthis_player: 16", nil},
		{"bad enemy", "name: x\nunit_types: [{ident: unit-a}]\nplayers: [{index: 0, enemies: [99]}]", nil},
		{"duplicate player", "name: x\nunit_types: [{ident: unit-a}]\nplayers: [{index: 2}, {index: 2}]", nil},
		{"ragged map", "name: x\nunit_types: [{ident: unit-a}]\nmap: {rows: ['...', '..']}", nil},
		{"half a size", "name: x\nunit_types: [{ident: unit-a}]\nmap: {width: 10}", nil},
		{"unknown unit", "name: x\nunit_types: [{ident: unit-footman}]\nunits: [{type: unit-fotman, owner: 0, x: 0, y: 0}]", model.ErrUnknownUnitType},
		{"trigger without then", "name: x\nunit_types: [{ident: unit-a}]\ntriggers: [{when: 'true'}]", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			require.Error(t, err)
			if tc.want != nil {
				assert.True(t, errors.Is(err, tc.want), "got %v", err)
			}
		})
	}
}

func TestUnknownUnitSuggestsClosestType(t *testing.T) {
	_, err := Parse([]byte("name: x\nunit_types: [{ident: unit-footman}]\nunits: [{type: unit-fotman, owner: 0, x: 0, y: 0}]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "unit-footman"`)
}

func TestBuildWithoutScriptInstallsDefaults(t *testing.T) {
	s, err := Parse([]byte(minimal))
	require.NoError(t, err)
	m, err := s.Build()
	require.NoError(t, err)
	defer m.Close()

	assert.Nil(t, m.Script)
	assert.Equal(t, 2, m.World.Player(0).TotalNumUnits)
	assert.Equal(t, 1, m.World.Player(0).NumBuildings)
	assert.True(t, m.World.Player(1).IsEnemy(0))
	assert.True(t, m.Game.Running)

	tbl, err := m.Engine.Triggers()
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	for range 4 {
		require.NoError(t, m.Engine.Step())
	}
	assert.True(t, m.Game.Running)

	for _, u := range m.World.FindUnitsByType(mustType(t, m.World, "unit-footman")) {
		if u.Owner == 1 {
			m.World.RemoveUnit(u.ID)
		}
	}
	for range 2 {
		require.NoError(t, m.Engine.Step())
	}
	assert.Equal(t, trigger.Victory, m.Game.Result)
}

func TestBuildExpressionTriggers(t *testing.T) {
	src := minimal + `
triggers:
  - when: IfUnit(1, "==", 0, "all")
    then: ActionVictory()
  - when: IfUnit("this", "<", 2, "all")
    then: ActionDefeat()
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)
	m, err := s.Build()
	require.NoError(t, err)
	defer m.Close()

	// Scenario triggers replace the defaults.
	tbl, err := m.Engine.Triggers()
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	for range 6 {
		require.NoError(t, m.Engine.Step())
	}
	assert.True(t, m.Game.Running)

	// The defeat trigger was listed last, so it is checked first.
	for _, u := range m.World.Units() {
		if u.Owner == 1 {
			m.World.RemoveUnit(u.ID)
			break
		}
	}
	for _, u := range m.World.Units() {
		if u.Owner == 0 && !u.Type.Building {
			m.World.RemoveUnit(u.ID)
			break
		}
	}
	require.NoError(t, m.Engine.Step())
	assert.Equal(t, trigger.Defeat, m.Game.Result)
	assert.False(t, m.Game.Running)
}

func TestBuildRejectsBadTriggerExpressions(t *testing.T) {
	tests := []struct {
		name string
		when string
		then string
		want error
	}{
		{"bad operator", `IfUnit(0, "=>", 1, "all")`, `ActionDraw()`, trigger.ErrBadOperator},
		{"bad player", `IfOpponents(20, "==", 0)`, `ActionDraw()`, trigger.ErrBadPlayer},
		{"bad unit", `IfUnit(0, "==", 1, "unit-knight")`, `ActionDraw()`, model.ErrUnknownUnitType},
		{"not an expression", `IfUnit(0,`, `ActionDraw()`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := minimal + "triggers:\n  - when: '" + tc.when + "'\n    then: '" + tc.then + "'\n"
			s, err := Parse([]byte(src))
			require.NoError(t, err)
			_, err = s.Build()
			require.Error(t, err)
			if tc.want != nil {
				assert.True(t, errors.Is(err, tc.want), "got %v", err)
			}
		})
	}
}

func TestBuildRejectsImpassablePlacement(t *testing.T) {
	src := `
name: shore
map:
  rows: ["..~~", "..~~"]
unit_types:
  - ident: unit-footman
units:
  - {type: unit-footman, owner: 0, x: 2, y: 0}
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)
	_, err = s.Build()
	assert.Error(t, err)
}

func TestLoadRunsScriptRelativeToFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "duel.lua", `
add_trigger(function() return if_unit("any", ">=", 1, "buildings") end, action_draw)
`)
	path := writeFile(t, dir, "duel.yaml", minimal+"script: duel.lua\n")

	s, err := Load(path)
	require.NoError(t, err)
	m, err := s.Build()
	require.NoError(t, err)
	defer m.Close()
	require.NotNil(t, m.Script)

	// The script registered a trigger, so no defaults were added.
	tbl, err := m.Engine.Triggers()
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	require.NoError(t, m.Engine.Step())
	assert.Equal(t, trigger.Draw, m.Game.Result)
}

func TestLoadScriptErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.lua", `if_unit(0, "~=", 1, "all")`)
	path := writeFile(t, dir, "duel.yaml", minimal+"script: broken.lua\n")

	s, err := Load(path)
	require.NoError(t, err)
	_, err = s.Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, trigger.ErrBadOperator), "got %v", err)

	path = writeFile(t, dir, "missing.yaml", minimal+"script: nowhere.lua\n")
	s, err = Load(path)
	require.NoError(t, err)
	_, err = s.Build()
	assert.Error(t, err)
}

func TestExampleSkirmish(t *testing.T) {
	s, err := Load(filepath.Join("..", "scenarios", "skirmish.yaml"))
	require.NoError(t, err)
	m, err := s.Build()
	require.NoError(t, err)
	defer m.Close()

	tbl, err := m.Engine.Triggers()
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Len())

	for range 12 {
		require.NoError(t, m.Engine.Step())
	}
	require.True(t, m.Game.Running, "result %v", m.Game.Result)

	// A rescued peasant reaches the circle of power.
	peasant := m.World.FindUnitsByType(mustType(t, m.World, "unit-peasant"))[0]
	peasant.X, peasant.Y, peasant.Rescued = 13, 2, true
	for range 4 {
		require.NoError(t, m.Engine.Step())
	}
	assert.Equal(t, trigger.Victory, m.Game.Result)
}

func mustType(t *testing.T, w *model.World, ident string) *model.UnitType {
	t.Helper()
	ut, err := w.Catalog.Lookup(ident)
	require.NoError(t, err)
	return ut
}
