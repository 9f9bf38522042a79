// Package levels loads puzzle levels and turns them into world templates.
// This package depends on sim but sim does not depend on levels.
package levels

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/samber/oops"

	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/levels/formats"
	"github.com/vovakirdan/tidepool/internal/sim"
)

// Error codes for level loading.
const (
	CodeInvalidLevel  = "INVALID_LEVEL"
	CodeLevelNotFound = "LEVEL_NOT_FOUND"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Level represents a complete level definition.
type Level struct {
	ID       string
	Name     string
	RoomSize core.Point
	Player   core.Point
	Par      int
	Entities []formats.Placement
	Metadata map[string]string
	FilePath string // loader root joined with Source
	Source   string // path within the loader's file system
}

// ToWorldTemplate returns the level's placements with the player first.
func (l *Level) ToWorldTemplate() sim.WorldTemplate {
	entries := make([]sim.TemplateEntry, 0, len(l.Entities)+1)
	entries = append(entries, sim.TemplateEntry{Template: sim.PlayerTemplate, Position: l.Player})
	for _, p := range l.Entities {
		entries = append(entries, sim.TemplateEntry{
			Template:   p.Template,
			Position:   p.Position,
			ExtraState: p.State,
		})
	}
	return sim.WorldTemplate{Entries: entries}
}

// Loader handles loading levels from a file tree.
type Loader struct {
	Root     string
	fsys     fs.FS
	roomSize core.Point
}

func newLoader(root string, fsys fs.FS) *Loader {
	return &Loader{
		Root:     root,
		fsys:     fsys,
		roomSize: core.Pt(formats.DefaultRoomWidth, formats.DefaultRoomHeight),
	}
}

// NewLoader creates a loader over a directory on disk.
func NewLoader(root string) *Loader {
	return newLoader(root, os.DirFS(root))
}

// NewFSLoader creates a loader over an arbitrary file system.
func NewFSLoader(fsys fs.FS) *Loader {
	return newLoader(".", fsys)
}

// Builtin returns a loader over the levels shipped with the binary.
func Builtin() *Loader {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return newLoader("builtin", sub)
}

// SetDefaultRoomSize sets the room size for levels that omit room_size.
// Non-positive axes are ignored.
func (l *Loader) SetDefaultRoomSize(size core.Point) *Loader {
	if size.X > 0 {
		l.roomSize.X = size.X
	}
	if size.Y > 0 {
		l.roomSize.Y = size.Y
	}
	return l
}

// LoadAll recursively scans and loads all level files, skipping invalid ones.
// Returns levels sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	levels, _, err := l.scan()
	return levels, err
}

// Check loads every level file and reports the invalid ones joined together.
func (l *Loader) Check() error {
	_, problems, err := l.scan()
	if err != nil {
		return err
	}
	return errors.Join(problems...)
}

func (l *Loader) scan() ([]Level, []error, error) {
	var (
		levels   []Level
		problems []error
	)

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}
		level, err := l.LoadFile(p)
		if err != nil {
			problems = append(problems, err)
			return nil
		}
		levels = append(levels, level)
		return nil
	})
	if err != nil {
		return nil, nil, oops.In("levels").With("root", l.Root).Wrapf(err, "walking levels")
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})
	return levels, problems, nil
}

// LoadFile loads a single level file. The path is relative to the loader root.
func (l *Loader) LoadFile(p string) (Level, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Level{}, oops.In("levels").With("path", p).Wrapf(err, "reading level")
	}

	parsed, err := parseByExtension(data, strings.ToLower(path.Ext(p)))
	if err != nil {
		return Level{}, oops.Code(CodeInvalidLevel).In("levels").With("path", p).Wrapf(err, "parsing level")
	}

	size := parsed.RoomSize
	if size.X == 0 {
		size.X = l.roomSize.X
	}
	if size.Y == 0 {
		size.Y = l.roomSize.Y
	}

	return Level{
		ID:       parsed.ID,
		Name:     parsed.Name,
		RoomSize: size,
		Player:   parsed.Player,
		Par:      parsed.Par,
		Entities: parsed.Entities,
		Metadata: parsed.Metadata,
		FilePath: path.Join(l.Root, p),
		Source:   p,
	}, nil
}

// ScriptFS returns the directory holding lvl, where its ".lua" script
// references are resolved.
func (l *Loader) ScriptFS(lvl Level) (fs.FS, error) {
	dir := path.Dir(lvl.Source)
	if dir == "." {
		return l.fsys, nil
	}
	sub, err := fs.Sub(l.fsys, dir)
	if err != nil {
		return nil, oops.In("levels").With("dir", dir).Wrapf(err, "opening script directory")
	}
	return sub, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}
	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}
	return Level{}, oops.Code(CodeLevelNotFound).In("levels").With("id", id).Errorf("level not found: %s", id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

func parseByExtension(data []byte, ext string) (formats.Level, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	default:
		return formats.Level{}, oops.Errorf("unsupported extension: %s", ext)
	}
}
