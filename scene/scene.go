// Package scene loads the description of a scene: its canvas and grid, the
// walls and tokens placed on it, and the route-finding settings.
package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings configures the walkable subsystem
type Settings struct {
	SnapToGrid       bool           `yaml:"snap_to_grid" json:"snapToGrid"`
	MaxDistance      float64        `yaml:"max_distance" json:"maxDistance"`
	Strategy         string         `yaml:"strategy" json:"strategy"`
	MinClearance     float64        `yaml:"min_clearance" json:"minClearance"`
	AgentRadiusRatio float64        `yaml:"agent_radius_ratio" json:"agentRadiusRatio"` // agent radius as a fraction of token width
	Blocking         BlockingMatrix `yaml:"-" json:"-"`
}

// DefaultSettings returns the settings used when a scene file leaves them out
func DefaultSettings() Settings {
	return Settings{
		SnapToGrid:       true,
		MaxDistance:      30,
		Strategy:         "astar",
		MinClearance:     0.5,
		AgentRadiusRatio: 1.0 / 3.0,
		Blocking:         DefaultBlockingMatrix(),
	}
}

// Scene is a loaded scene file
type Scene struct {
	Geometry Geometry `yaml:"geometry"`
	Walls    []Wall   `yaml:"walls"`
	Tokens   []Token  `yaml:"tokens"`
	Settings Settings `yaml:"settings"`

	// Files lists the files the scene was loaded from, scene file first
	Files []string `yaml:"-"`
}

// Token looks up a token by id
func (s *Scene) Token(id string) (Token, bool) {
	for _, t := range s.Tokens {
		if t.ID == id {
			return t, true
		}
	}
	return Token{}, false
}

// file mirrors the on-disk layout. Pointers distinguish unset keys from zero
// values so defaults can be applied.
type file struct {
	Geometry     Geometry     `yaml:"geometry"`
	Walls        []wallSpec   `yaml:"walls"`
	WallsGeoJSON string       `yaml:"walls_geojson"`
	Tokens       []Token      `yaml:"tokens"`
	Settings     settingsSpec `yaml:"settings"`
}

type wallSpec struct {
	ID             string     `yaml:"id"`
	C              [4]float64 `yaml:"c"`
	BlocksMovement *bool      `yaml:"blocks_movement"`
	Door           DoorState  `yaml:"door"`
}

type settingsSpec struct {
	SnapToGrid       *bool           `yaml:"snap_to_grid"`
	MaxDistance      *float64        `yaml:"max_distance"`
	Strategy         string          `yaml:"strategy"`
	MinClearance     *float64        `yaml:"min_clearance"`
	AgentRadiusRatio *float64        `yaml:"agent_radius_ratio"`
	Blocking         map[string]bool `yaml:"blocking"`
}

// Load reads and parses a scene file. A walls_geojson entry is resolved
// relative to the scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", path, err)
	}
	s, geoJSONPath, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	s.Files = []string{path}
	if geoJSONPath != "" {
		if !filepath.IsAbs(geoJSONPath) {
			geoJSONPath = filepath.Join(filepath.Dir(path), geoJSONPath)
		}
		walls, err := LoadGeoJSONWalls(geoJSONPath)
		if err != nil {
			return nil, err
		}
		s.Walls = append(s.Walls, walls...)
		s.Files = append(s.Files, geoJSONPath)
	}
	return s, nil
}

// Parse parses a scene from YAML. walls_geojson is ignored; use Load for
// scenes that reference GeoJSON files.
func Parse(data []byte) (*Scene, error) {
	s, _, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return s, nil
}

func parse(data []byte) (*Scene, string, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("unmarshal: %w", err)
	}
	if f.Geometry.Width <= 0 || f.Geometry.Height <= 0 {
		return nil, "", fmt.Errorf("geometry: width and height must be positive, got %vx%v",
			f.Geometry.Width, f.Geometry.Height)
	}
	if f.Geometry.GridSize <= 0 && !f.Geometry.Gridless {
		return nil, "", fmt.Errorf("geometry: grid_size must be positive, got %v", f.Geometry.GridSize)
	}
	if f.Geometry.GridDistance <= 0 {
		f.Geometry.GridDistance = 1
	}

	s := &Scene{
		Geometry: f.Geometry,
		Tokens:   f.Tokens,
		Walls:    make([]Wall, 0, len(f.Walls)),
	}

	seen := make(map[string]bool, len(f.Walls))
	for i, spec := range f.Walls {
		if spec.ID == "" {
			spec.ID = fmt.Sprintf("wall-%d", i)
		}
		if seen[spec.ID] {
			return nil, "", fmt.Errorf("walls: duplicate id %q", spec.ID)
		}
		seen[spec.ID] = true
		s.Walls = append(s.Walls, Wall{
			ID:             spec.ID,
			C:              spec.C,
			BlocksMovement: spec.BlocksMovement == nil || *spec.BlocksMovement,
			Door:           spec.Door,
		})
	}

	settings, err := f.Settings.resolve()
	if err != nil {
		return nil, "", err
	}
	s.Settings = settings

	return s, f.WallsGeoJSON, nil
}

func (spec settingsSpec) resolve() (Settings, error) {
	settings := DefaultSettings()
	if spec.SnapToGrid != nil {
		settings.SnapToGrid = *spec.SnapToGrid
	}
	if spec.MaxDistance != nil {
		settings.MaxDistance = *spec.MaxDistance
	}
	if spec.Strategy != "" {
		settings.Strategy = spec.Strategy
	}
	if spec.MinClearance != nil {
		settings.MinClearance = *spec.MinClearance
	}
	if spec.AgentRadiusRatio != nil {
		settings.AgentRadiusRatio = *spec.AgentRadiusRatio
	}

	known := make(map[string]bool, 9)
	for _, other := range dispositions {
		for _, self := range dispositions {
			key := blockingKey(other, self)
			known[key] = true
			if v, ok := spec.Blocking[key]; ok {
				settings.Blocking.Set(other, self, v)
			}
		}
	}
	for key := range spec.Blocking {
		if !known[key] {
			return Settings{}, fmt.Errorf("settings: unknown blocking rule %q", key)
		}
	}

	if settings.MaxDistance < 0 {
		return Settings{}, fmt.Errorf("settings: max_distance must not be negative, got %v", settings.MaxDistance)
	}
	return settings, nil
}
