package scene

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"route-finder/geometry"
)

// ErrInvalidDisposition is returned when a disposition cannot be parsed
var ErrInvalidDisposition = errors.New("scene: invalid disposition")

// ErrInvalidDoorState is returned when a door state cannot be parsed
var ErrInvalidDoorState = errors.New("scene: invalid door state")

// Geometry describes the scene canvas and its grid
type Geometry struct {
	Width        float64 `yaml:"width" json:"width"`
	Height       float64 `yaml:"height" json:"height"`
	GridSize     float64 `yaml:"grid_size" json:"gridSize"`         // pixels per grid cell
	GridDistance float64 `yaml:"grid_distance" json:"gridDistance"` // distance units per grid cell
	GridUnits    string  `yaml:"grid_units" json:"gridUnits"`
	Gridless     bool    `yaml:"gridless" json:"gridless"`
}

// Center snaps a position to the centre of the grid cell containing it.
// Gridless scenes return the position unchanged.
func (g Geometry) Center(x, y float64) (float64, float64) {
	if g.Gridless || g.GridSize <= 0 {
		return x, y
	}
	half := g.GridSize / 2
	return math.Floor(x/g.GridSize)*g.GridSize + half, math.Floor(y/g.GridSize)*g.GridSize + half
}

// DoorState is the open/closed state of a wall
type DoorState int

const (
	DoorNone DoorState = iota
	DoorClosed
	DoorOpen
	DoorLocked
)

var doorStateNames = map[DoorState]string{
	DoorNone:   "none",
	DoorClosed: "closed",
	DoorOpen:   "open",
	DoorLocked: "locked",
}

func (d DoorState) String() string {
	if name, ok := doorStateNames[d]; ok {
		return name
	}
	return fmt.Sprintf("door(%d)", int(d))
}

// ParseDoorState parses none, closed, open or locked
func ParseDoorState(s string) (DoorState, error) {
	for state, name := range doorStateNames {
		if strings.EqualFold(s, name) {
			return state, nil
		}
	}
	return DoorNone, fmt.Errorf("%w: %q", ErrInvalidDoorState, s)
}

func (d *DoorState) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDoorState(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d DoorState) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Wall is a line segment that may block movement
type Wall struct {
	ID             string     `yaml:"id" json:"id"`
	C              [4]float64 `yaml:"c" json:"c"` // x0, y0, x1, y1
	BlocksMovement bool       `yaml:"blocks_movement" json:"blocksMovement"`
	Door           DoorState  `yaml:"door" json:"door"`
}

// Blocking reports whether the wall currently stops movement. Only an open
// door lets an otherwise blocking wall be passed.
func (w Wall) Blocking() bool {
	return w.BlocksMovement && w.Door != DoorOpen
}

// Degenerate reports whether both endpoints coincide
func (w Wall) Degenerate() bool {
	return w.C[0] == w.C[2] && w.C[1] == w.C[3]
}

// Disposition is a token's faction alignment
type Disposition int

const (
	Hostile  Disposition = -1
	Neutral  Disposition = 0
	Friendly Disposition = 1
)

func (d Disposition) String() string {
	switch d {
	case Hostile:
		return "hostile"
	case Neutral:
		return "neutral"
	case Friendly:
		return "friendly"
	default:
		return fmt.Sprintf("disposition(%d)", int(d))
	}
}

// Valid reports whether d is one of the three dispositions
func (d Disposition) Valid() bool {
	return d >= Hostile && d <= Friendly
}

// ParseDisposition accepts hostile/neutral/friendly or -1/0/1
func ParseDisposition(s string) (Disposition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hostile", "-1":
		return Hostile, nil
	case "neutral", "0":
		return Neutral, nil
	case "friendly", "1":
		return Friendly, nil
	}
	return Neutral, fmt.Errorf("%w: %q", ErrInvalidDisposition, s)
}

func (d *Disposition) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDisposition(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Disposition) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Token is a placed agent. X and Y are the top-left corner of its footprint.
type Token struct {
	ID          string      `yaml:"id" json:"id"`
	X           float64     `yaml:"x" json:"x"`
	Y           float64     `yaml:"y" json:"y"`
	Width       float64     `yaml:"width" json:"width"`
	Height      float64     `yaml:"height" json:"height"`
	Disposition Disposition `yaml:"disposition" json:"disposition"`
}

// Center returns the centre of the token footprint
func (t Token) Center() geometry.Point {
	return geometry.Point{X: t.X + t.Width/2, Y: t.Y + t.Height/2}
}

// BlockingMatrix decides which tokens obstruct which. It is indexed
// [other][self]: an entry is true when a token with disposition other blocks
// the movement of a token with disposition self.
type BlockingMatrix [3][3]bool

// DefaultBlockingMatrix lets friendly and hostile tokens block each other and
// nothing else
func DefaultBlockingMatrix() BlockingMatrix {
	var m BlockingMatrix
	m.Set(Friendly, Hostile, true)
	m.Set(Hostile, Friendly, true)
	return m
}

// Blocks reports whether other obstructs self
func (m BlockingMatrix) Blocks(other, self Disposition) bool {
	if !other.Valid() || !self.Valid() {
		return false
	}
	return m[other+1][self+1]
}

// Set updates a single entry
func (m *BlockingMatrix) Set(other, self Disposition, blocks bool) {
	if !other.Valid() || !self.Valid() {
		return
	}
	m[other+1][self+1] = blocks
}

// blockingKey is the settings name of an entry, e.g. friendly_blocks_hostile
func blockingKey(other, self Disposition) string {
	return other.String() + "_blocks_" + self.String()
}

var dispositions = [3]Disposition{Hostile, Neutral, Friendly}
