// Package catalog holds the levels, tracks and subjects a school offers.
// A Catalog is built once at startup and never changes afterwards.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/betyg/internal/models"
)

//go:embed default.toml
var defaultDocument []byte

type document struct {
	Levels []levelDoc          `toml:"levels"`
	Tracks map[string]trackDoc `toml:"tracks"`
}

type levelDoc struct {
	Code          string   `toml:"code"`
	Name          string   `toml:"name"`
	HasRetakeBand bool     `toml:"has_retake_band"`
	Tracks        []string `toml:"tracks"`
}

type trackDoc struct {
	Name     string       `toml:"name"`
	Subjects []subjectDoc `toml:"subjects"`
}

type subjectDoc struct {
	Name        string `toml:"name"`
	Coefficient int    `toml:"coefficient"`
}

type cohortKey struct {
	level string
	track string
}

type Catalog struct {
	levels   []models.Level
	byCode   map[string]int
	subjects []models.Subject
	byID     map[int]int
	byCohort map[cohortKey][]int
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultDocument)
}

// Load reads a catalog document from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from a TOML document. Subject ids follow document
// order, so the same document always yields the same ids.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	levels := make([]models.Level, 0, len(doc.Levels))
	var subjects []models.Subject
	nextID := 1

	for _, ld := range doc.Levels {
		level := models.Level{
			Code:          ld.Code,
			Name:          ld.Name,
			HasRetakeBand: ld.HasRetakeBand,
		}
		for _, code := range ld.Tracks {
			td, ok := doc.Tracks[code]
			if !ok {
				return nil, fmt.Errorf("level %s refers to unknown track %s", ld.Code, code)
			}
			level.Tracks = append(level.Tracks, models.Track{Code: code, Name: td.Name})
			for _, sd := range td.Subjects {
				subjects = append(subjects, models.Subject{
					ID:          nextID,
					Name:        sd.Name,
					Coefficient: sd.Coefficient,
					Level:       ld.Code,
					Track:       code,
				})
				nextID++
			}
		}
		levels = append(levels, level)
	}

	return New(levels, subjects)
}

// New checks the enumeration and indexes it.
func New(levels []models.Level, subjects []models.Subject) (*Catalog, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("catalog has no levels")
	}

	c := &Catalog{
		byCode:   make(map[string]int, len(levels)),
		byID:     make(map[int]int, len(subjects)),
		byCohort: make(map[cohortKey][]int),
	}

	for _, l := range levels {
		if l.Code == "" {
			return nil, fmt.Errorf("level without code")
		}
		if _, dup := c.byCode[l.Code]; dup {
			return nil, fmt.Errorf("duplicate level %s", l.Code)
		}
		if len(l.Tracks) == 0 {
			return nil, fmt.Errorf("level %s offers no tracks", l.Code)
		}
		l.Tracks = append([]models.Track(nil), l.Tracks...)
		c.byCode[l.Code] = len(c.levels)
		c.levels = append(c.levels, l)
	}

	names := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("subject %q: %w", s.Name, err)
		}
		level, ok := c.lookup(s.Level)
		if !ok {
			return nil, fmt.Errorf("subject %q: unknown level %s", s.Name, s.Level)
		}
		if !level.AllowsTrack(s.Track) {
			return nil, fmt.Errorf("subject %q: track %s not offered at level %s", s.Name, s.Track, s.Level)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate subject id %d", s.ID)
		}
		name := s.Level + "/" + s.Track + "/" + s.Name
		if names[name] {
			return nil, fmt.Errorf("duplicate subject %s", name)
		}
		names[name] = true

		key := cohortKey{s.Level, s.Track}
		c.byID[s.ID] = len(c.subjects)
		c.byCohort[key] = append(c.byCohort[key], len(c.subjects))
		c.subjects = append(c.subjects, s)
	}

	return c, nil
}

func (c *Catalog) lookup(code string) (models.Level, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return models.Level{}, false
	}
	return c.levels[i], true
}

// Levels in enumeration order.
func (c *Catalog) Levels() []models.Level {
	out := make([]models.Level, len(c.levels))
	for i, l := range c.levels {
		l.Tracks = append([]models.Track(nil), l.Tracks...)
		out[i] = l
	}
	return out
}

func (c *Catalog) Level(code string) (models.Level, error) {
	l, ok := c.lookup(code)
	if !ok {
		return models.Level{}, models.NewNotFoundError("level", code)
	}
	l.Tracks = append([]models.Track(nil), l.Tracks...)
	return l, nil
}

// ValidateEnrollment checks that the track is offered at the level.
func (c *Catalog) ValidateEnrollment(level, track string) error {
	l, ok := c.lookup(level)
	if !ok {
		codes := make([]string, 0, len(c.levels))
		for _, l := range c.levels {
			codes = append(codes, l.Code)
		}
		return models.Invalid("level", "must be one of %v", codes)
	}
	if !l.AllowsTrack(track) {
		return models.Invalid("track", "level %s offers only %v", level, l.TrackCodes())
	}
	return nil
}

// Subjects of a cohort, ordered by id. Unknown cohorts have none.
func (c *Catalog) Subjects(level, track string) []models.Subject {
	idx := c.byCohort[cohortKey{level, track}]
	out := make([]models.Subject, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.subjects[i])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) Subject(id int) (models.Subject, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Subject{}, false
	}
	return c.subjects[i], true
}

// AllSubjects returns every subject ordered by id, ready for seeding a store.
func (c *Catalog) AllSubjects() []models.Subject {
	out := append([]models.Subject(nil), c.subjects...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
