package sim

import (
	"github.com/vovakirdan/tidepool/internal/core"
)

// PlayerTemplate is skipped when populating a world; the caller spawns the player.
const PlayerTemplate = "player"

// Template is static content used to instantiate entities. The simulation reads
// Tags, SortPriority and State; the appearance fields pass through to renderers.
type Template struct {
	Name         string
	Sheet        string
	Frame        int
	Color        string
	Glyph        rune
	Tags         []string
	SortPriority int
	State        map[string]string
}

// TemplateProvider resolves template names. Unknown names are errors.
type TemplateProvider interface {
	Template(name string) (Template, error)
}

// ColorProvider resolves named content colors.
type ColorProvider interface {
	Color(name string) (core.Color, bool)
}

// TemplateEntry places one entity. An empty Template makes a metadata-only
// entity with no tags and no appearance.
type TemplateEntry struct {
	Template   string
	Position   core.Point
	ExtraState map[string]string
}

// WorldTemplate is a flat placement list.
type WorldTemplate struct {
	Entries []TemplateEntry
}

// NewEntityFromTemplate builds a detached entity. Colors are looked up in
// colors first and then parsed as palette names or hex.
func NewEntityFromTemplate(t Template, pos core.Point, colors ColorProvider) *Entity {
	e := NewEntity(pos, t.Tags...)
	e.TemplateName = t.Name
	e.TemplatePriority = t.SortPriority
	e.State = NewStateFrom(t.State)
	e.Appearance = &Appearance{
		Sheet: t.Sheet,
		Frame: t.Frame,
		Color: resolveColor(t.Color, colors),
		Glyph: t.Glyph,
	}
	return e
}

func resolveColor(name string, colors ColorProvider) core.Color {
	if name == "" {
		return core.ColorDefault
	}
	if colors != nil {
		if c, ok := colors.Color(name); ok {
			return c
		}
	}
	if c, ok := core.ParseColor(name); ok {
		return c
	}
	return core.ColorDefault
}
