package levels_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tidepool/internal/content"
	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/levels"
	"github.com/vovakirdan/tidepool/internal/sim"
)

const tinyLevel = `
id: tiny
room_size: { w: 4, h: 2 }
map: |
  #####
  #@o*#
  #####
entities:
  - template: button
    x: 2
    y: 1
    state: { channel: "3" }
`

func TestBuiltinLevels(t *testing.T) {
	loader := levels.Builtin()
	require.NoError(t, loader.Check())

	ids, err := loader.ListIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"01-first-plate", "02-moat", "03-drawbridge", "04-portal", "05-lever"}, ids)

	catalog := content.Default()
	all, err := loader.LoadAll()
	require.NoError(t, err)
	for _, lvl := range all {
		t.Run(lvl.ID, func(t *testing.T) {
			assert.NotEmpty(t, lvl.Name)
			assert.Positive(t, lvl.Par)
			w := sim.NewWorld(lvl.RoomSize, sim.WithTemplates(catalog), sim.WithColors(catalog))
			assert.NoError(t, w.PopulateFromTemplate(lvl.ToWorldTemplate()))
		})
	}
}

func TestParseMapAndEntities(t *testing.T) {
	loader := levels.NewFSLoader(fstest.MapFS{"pack/tiny.yaml": {Data: []byte(tinyLevel)}})

	lvl, err := loader.LoadByID("tiny")
	require.NoError(t, err)

	assert.Equal(t, "tiny", lvl.Name, "name defaults to id")
	assert.Equal(t, core.Pt(4, 2), lvl.RoomSize)
	assert.Equal(t, core.Pt(1, 1), lvl.Player)
	assert.Equal(t, "pack/tiny.yaml", lvl.FilePath)
	assert.Equal(t, "pack/tiny.yaml", lvl.Source)

	counts := map[string]int{}
	for _, p := range lvl.Entities {
		counts[p.Template]++
	}
	assert.Equal(t, map[string]int{"wall": 12, "crate": 1, "goal": 1, "button": 1}, counts)

	last := lvl.Entities[len(lvl.Entities)-1]
	assert.Equal(t, "button", last.Template, "explicit entities follow the map")
	assert.Equal(t, "3", last.State["channel"])
}

func TestToWorldTemplate(t *testing.T) {
	loader := levels.NewFSLoader(fstest.MapFS{"tiny.yml": {Data: []byte(tinyLevel)}})
	lvl, err := loader.LoadFile("tiny.yml")
	require.NoError(t, err)

	wt := lvl.ToWorldTemplate()
	require.Len(t, wt.Entries, len(lvl.Entities)+1)
	assert.Equal(t, sim.TemplateEntry{Template: sim.PlayerTemplate, Position: core.Pt(1, 1)}, wt.Entries[0])

	catalog := content.Default()
	w := sim.NewWorld(lvl.RoomSize, sim.WithTemplates(catalog))
	require.NoError(t, w.PopulateFromTemplate(wt))
	assert.Empty(t, w.EntitiesWithTag(sim.TagPlayer), "player entry is left to the caller")
	buttons := w.EntitiesWithTag(sim.TagButton)
	require.Len(t, buttons, 1)
	assert.Equal(t, 3, buttons[0].State.GetIntOrFallback("channel", 0))
}

func TestInvalidLevels(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "id: [\n"},
		{"missing id", "player: {x: 1, y: 1}\n"},
		{"no player", "id: a\nmap: |\n  ###\n"},
		{"two players", "id: a\nmap: |\n  @@\n"},
		{"player twice", "id: a\nplayer: {x: 0, y: 0}\nmap: |\n  @\n"},
		{"unknown glyph", "id: a\nmap: |\n  @?\n"},
		{"long legend key", "id: a\nlegend: {ab: wall}\nmap: |\n  @\n"},
		{"reserved legend key", "id: a\nlegend: {'.': wall}\nmap: |\n  @\n"},
		{"negative room", "id: a\nroom_size: {w: -1, h: 3}\nplayer: {x: 0, y: 0}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := levels.NewFSLoader(fstest.MapFS{"bad.yaml": {Data: []byte(tt.yaml)}})
			_, err := loader.LoadFile("bad.yaml")
			require.Error(t, err)
			oopsErr, ok := oops.AsOops(err)
			require.True(t, ok)
			assert.Equal(t, levels.CodeInvalidLevel, oopsErr.Code())
		})
	}
}

func TestLoadAllSkipsInvalid(t *testing.T) {
	loader := levels.NewFSLoader(fstest.MapFS{
		"b.yaml":     {Data: []byte("id: b\nplayer: {x: 0, y: 0}\n")},
		"a.yaml":     {Data: []byte("id: a\nlegend: {x: crate}\nmap: |\n  @x\n")},
		"broken.yml": {Data: []byte("id: [\n")},
		"notes.txt":  {Data: []byte("ignored")},
	})

	ids, err := loader.ListIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Error(t, loader.Check())

	a, err := loader.LoadByID("a")
	require.NoError(t, err)
	require.Len(t, a.Entities, 1)
	assert.Equal(t, "crate", a.Entities[0].Template)

	_, err = loader.LoadByID("zzz")
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, levels.CodeLevelNotFound, oopsErr.Code())
}

func TestDefaultRoomSize(t *testing.T) {
	files := fstest.MapFS{
		"a.yaml": {Data: []byte("id: a\nroom_size: {w: 6}\nplayer: {x: 0, y: 0}\n")},
	}

	lvl, err := levels.NewFSLoader(files).LoadFile("a.yaml")
	require.NoError(t, err)
	assert.Equal(t, core.Pt(6, 10), lvl.RoomSize)

	lvl, err = levels.NewFSLoader(files).SetDefaultRoomSize(core.Pt(0, 4)).LoadFile("a.yaml")
	require.NoError(t, err)
	assert.Equal(t, core.Pt(6, 4), lvl.RoomSize)
}

func TestNewLoaderOnDisk(t *testing.T) {
	loader := levels.NewLoader(t.TempDir())
	ids, err := loader.ListIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestScriptFS(t *testing.T) {
	loader := levels.NewFSLoader(fstest.MapFS{
		"pack/tiny.yaml":  {Data: []byte(tinyLevel)},
		"pack/lever.lua":  {Data: []byte("-- lever")},
		"top.yaml":        {Data: []byte("id: top\nplayer: {x: 0, y: 0}\n")},
		"other/skip.yaml": {Data: []byte("id: skip\nplayer: {x: 0, y: 0}\n")},
	})

	tiny, err := loader.LoadByID("tiny")
	require.NoError(t, err)
	scripts, err := loader.ScriptFS(tiny)
	require.NoError(t, err)
	data, err := fs.ReadFile(scripts, "lever.lua")
	require.NoError(t, err)
	assert.Equal(t, "-- lever", string(data))

	top, err := loader.LoadByID("top")
	require.NoError(t, err)
	scripts, err = loader.ScriptFS(top)
	require.NoError(t, err)
	_, err = fs.Stat(scripts, "pack/lever.lua")
	assert.NoError(t, err)
}
