// Package content loads entity template catalogs and resolves template and
// color names for the simulation.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/sim"
)

//go:embed defaults/templates.yaml
var defaultTemplatesYAML []byte

// CodeInvalidCatalog marks catalog files that parse but do not validate.
const CodeInvalidCatalog = "INVALID_CATALOG"

// yamlCatalog is the on-disk catalog layout.
type yamlCatalog struct {
	Colors    map[string]string `yaml:"colors"`
	Templates []yamlTemplate    `yaml:"templates"`
}

type yamlTemplate struct {
	Name         string            `yaml:"name"`
	Sheet        string            `yaml:"sheet,omitempty"`
	Frame        int               `yaml:"frame,omitempty"`
	Color        string            `yaml:"color,omitempty"`
	Glyph        string            `yaml:"glyph,omitempty"`
	Tags         []string          `yaml:"tags,omitempty"`
	SortPriority int               `yaml:"sort_priority,omitempty"`
	State        map[string]string `yaml:"state,omitempty"`
}

// Catalog is an immutable set of templates and named colors.
// It implements sim.TemplateProvider and sim.ColorProvider.
type Catalog struct {
	templates map[string]sim.Template
	colors    map[string]core.Color
}

var (
	_ sim.TemplateProvider = (*Catalog)(nil)
	_ sim.ColorProvider    = (*Catalog)(nil)
)

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var yc yamlCatalog
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, oops.Code(CodeInvalidCatalog).In("content").Wrapf(err, "yaml unmarshal")
	}

	c := &Catalog{
		templates: make(map[string]sim.Template, len(yc.Templates)),
		colors:    make(map[string]core.Color, len(yc.Colors)),
	}
	for name, value := range yc.Colors {
		col, ok := core.ParseColor(value)
		if !ok {
			return nil, oops.Code(CodeInvalidCatalog).In("content").
				With("color", name).Errorf("invalid color value %q", value)
		}
		c.colors[strings.ToLower(name)] = col
	}
	for i, yt := range yc.Templates {
		t, err := yt.toTemplate()
		if err != nil {
			return nil, oops.Code(CodeInvalidCatalog).In("content").With("index", i).Wrap(err)
		}
		if _, dup := c.templates[t.Name]; dup {
			return nil, oops.Code(CodeInvalidCatalog).In("content").
				With("template", t.Name).Errorf("duplicate template %q", t.Name)
		}
		c.templates[t.Name] = t
	}
	return c, nil
}

func (yt yamlTemplate) toTemplate() (sim.Template, error) {
	name := strings.TrimSpace(yt.Name)
	if name == "" {
		return sim.Template{}, fmt.Errorf("template without a name")
	}
	glyph := '?'
	if yt.Glyph != "" {
		if utf8.RuneCountInString(yt.Glyph) != 1 {
			return sim.Template{}, fmt.Errorf("template %q: glyph %q must be one character", name, yt.Glyph)
		}
		glyph, _ = utf8.DecodeRuneInString(yt.Glyph)
	}
	state := make(map[string]string, len(yt.State))
	for k, v := range yt.State {
		state[k] = v
	}
	return sim.Template{
		Name:         name,
		Sheet:        yt.Sheet,
		Frame:        yt.Frame,
		Color:        yt.Color,
		Glyph:        glyph,
		Tags:         append([]string(nil), yt.Tags...),
		SortPriority: yt.SortPriority,
		State:        state,
	}, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultTemplatesYAML)
	if err != nil {
		panic(fmt.Sprintf("content: embedded catalog is invalid: %v", err))
	}
	return c
}

// DefaultYAML returns the embedded catalog source.
func DefaultYAML() []byte {
	return defaultTemplatesYAML
}

// Load returns the built-in catalog overlaid with a user catalog.
// Search order: customPath -> ~/.tidepool/templates.yaml -> ./configs/templates.yaml.
// A missing custom path is an error; the other locations are optional.
func Load(customPath string) (*Catalog, error) {
	base := Default()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", customPath, err)
		}
		overlay, err := Parse(data)
		if err != nil {
			return nil, oops.With("path", customPath).Wrap(err)
		}
		return base.Merge(overlay), nil
	}

	for _, path := range []string{userCatalogPath(), filepath.Join("configs", "templates.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		overlay, err := Parse(data)
		if err != nil {
			return nil, oops.With("path", path).Wrap(err)
		}
		return base.Merge(overlay), nil
	}
	return base, nil
}

func userCatalogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tidepool", "templates.yaml")
}

// Merge returns a new catalog with other's templates and colors replacing c's.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := &Catalog{
		templates: make(map[string]sim.Template, len(c.templates)+len(other.templates)),
		colors:    make(map[string]core.Color, len(c.colors)+len(other.colors)),
	}
	for _, src := range []*Catalog{c, other} {
		for k, v := range src.templates {
			out.templates[k] = v
		}
		for k, v := range src.colors {
			out.colors[k] = v
		}
	}
	return out
}

// Template returns a template by name.
func (c *Catalog) Template(name string) (sim.Template, error) {
	t, ok := c.templates[name]
	if !ok {
		return sim.Template{}, oops.Code(sim.CodeUnknownTemplate).In("content").
			With("template", name).Errorf("template %q not in catalog", name)
	}
	return t, nil
}

// Color resolves a catalog color name.
func (c *Catalog) Color(name string) (core.Color, bool) {
	col, ok := c.colors[strings.ToLower(name)]
	return col, ok
}

// Names returns all template names sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Match returns templates whose name matches a glob pattern such as "bridge*",
// sorted by name. An empty pattern matches everything.
func (c *Catalog) Match(pattern string) ([]sim.Template, error) {
	if pattern == "" {
		pattern = "*"
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, oops.In("content").With("pattern", pattern).Wrapf(err, "invalid pattern")
	}
	var out []sim.Template
	for _, name := range c.Names() {
		if g.Match(name) {
			out = append(out, c.templates[name])
		}
	}
	return out, nil
}
