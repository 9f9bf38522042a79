// Package formats provides pluggable level file format parsers.
package formats

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tidepool/internal/core"
)

// Default room extents for levels that omit room_size.
const (
	DefaultRoomWidth  = 10
	DefaultRoomHeight = 10
)

// PlayerGlyph marks the player start in a map.
const PlayerGlyph = '@'

// DefaultLegend maps map characters to template names. A level legend
// extends or overrides it.
var DefaultLegend = map[rune]string{
	'#': "wall",
	'o': "crate",
	'O': "boulder",
	'=': "log",
	'~': "water",
	'*': "goal",
}

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	RoomSize YAMLSize          `yaml:"room_size"`
	Player   *YAMLPoint        `yaml:"player,omitempty"`
	Par      int               `yaml:"par,omitempty"`
	Legend   map[string]string `yaml:"legend,omitempty"`
	Map      string            `yaml:"map,omitempty"`
	Entities []YAMLEntity      `yaml:"entities,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// YAMLSize represents room extents.
type YAMLSize struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// YAMLPoint is a tile coordinate.
type YAMLPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// YAMLEntity places one template. An empty template makes a metadata entity.
type YAMLEntity struct {
	Template string            `yaml:"template,omitempty"`
	X        int               `yaml:"x"`
	Y        int               `yaml:"y"`
	State    map[string]string `yaml:"state,omitempty"`
}

// Placement is a parsed entity placement.
type Placement struct {
	Template string
	Position core.Point
	State    map[string]string
}

// Level represents a parsed level ready for use. A zero RoomSize axis means
// the file left it to the loader.
type Level struct {
	ID       string
	Name     string
	RoomSize core.Point
	Player   core.Point
	Par      int
	Entities []Placement
	Metadata map[string]string
}

// ParseYAML parses a YAML level file. Map placements come first, in reading
// order, followed by the explicit entity list.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	if strings.TrimSpace(yl.ID) == "" {
		return Level{}, fmt.Errorf("level without an id")
	}
	if yl.RoomSize.W < 0 || yl.RoomSize.H < 0 {
		return Level{}, fmt.Errorf("negative room size %dx%d", yl.RoomSize.W, yl.RoomSize.H)
	}

	level := Level{
		ID:       yl.ID,
		Name:     yl.Name,
		RoomSize: core.Pt(yl.RoomSize.W, yl.RoomSize.H),
		Par:      yl.Par,
		Metadata: yl.Metadata,
	}
	if level.Name == "" {
		level.Name = level.ID
	}

	legend, err := buildLegend(yl.Legend)
	if err != nil {
		return Level{}, err
	}

	hasPlayer := false
	if yl.Map != "" {
		placements, player, found, err := parseMap(yl.Map, legend)
		if err != nil {
			return Level{}, err
		}
		level.Entities = placements
		level.Player, hasPlayer = player, found
	}
	if yl.Player != nil {
		if hasPlayer {
			return Level{}, fmt.Errorf("player set in both map and player field")
		}
		level.Player, hasPlayer = core.Pt(yl.Player.X, yl.Player.Y), true
	}
	if !hasPlayer {
		return Level{}, fmt.Errorf("level %q has no player start", yl.ID)
	}

	for _, e := range yl.Entities {
		level.Entities = append(level.Entities, Placement{
			Template: e.Template,
			Position: core.Pt(e.X, e.Y),
			State:    e.State,
		})
	}

	return level, nil
}

func buildLegend(custom map[string]string) (map[rune]string, error) {
	legend := make(map[rune]string, len(DefaultLegend)+len(custom))
	for r, name := range DefaultLegend {
		legend[r] = name
	}
	keys := make([]string, 0, len(custom))
	for k := range custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if utf8.RuneCountInString(k) != 1 {
			return nil, fmt.Errorf("legend key %q must be one character", k)
		}
		r, _ := utf8.DecodeRuneInString(k)
		if r == PlayerGlyph || r == '.' || r == ' ' {
			return nil, fmt.Errorf("legend key %q is reserved", k)
		}
		legend[r] = custom[k]
	}
	return legend, nil
}

// parseMap reads an ASCII grid. '.' and ' ' are empty floor.
func parseMap(m string, legend map[rune]string) ([]Placement, core.Point, bool, error) {
	var (
		out       []Placement
		player    core.Point
		hasPlayer bool
	)
	lines := strings.Split(strings.TrimRight(m, "\n"), "\n")
	for y, line := range lines {
		for x, r := range []rune(line) {
			switch r {
			case '.', ' ':
				continue
			case PlayerGlyph:
				if hasPlayer {
					return nil, core.Point{}, false, fmt.Errorf("second player start at %d,%d", x, y)
				}
				player, hasPlayer = core.Pt(x, y), true
				continue
			}
			name, ok := legend[r]
			if !ok {
				return nil, core.Point{}, false, fmt.Errorf("unknown map character %q at %d,%d", r, x, y)
			}
			out = append(out, Placement{Template: name, Position: core.Pt(x, y)})
		}
	}
	return out, player, hasPlayer, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
