// Package scenario reads and writes planning scenarios as YAML and turns
// them into validated core instances.
package scenario

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// Supported coordinate systems for scenario positions.
const (
	ProjectionPlanar = "planar"
	ProjectionLonLat = "epsg:4326"
)

// TimeValue is a time in minutes. In YAML it may be a number of minutes or
// an "HH:MM" clock string; it is always written back as minutes.
type TimeValue float64

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (float64, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("clock %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q: bad minute", s)
	}
	return float64(h*60 + m), nil
}

// FormatClock renders minutes as "HH:MM", truncating fractions.
func FormatClock(minutes float64) string {
	m := int(math.Floor(minutes))
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// UnmarshalYAML accepts a number or a clock string.
func (t *TimeValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: time must be a scalar", value.Line)
	}
	if strings.Contains(value.Value, ":") {
		m, err := ParseClock(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*t = TimeValue(m)
		return nil
	}
	f, err := strconv.ParseFloat(value.Value, 64)
	if err != nil {
		return fmt.Errorf("line %d: time %q is neither minutes nor HH:MM", value.Line, value.Value)
	}
	*t = TimeValue(f)
	return nil
}

// Minutes returns the value as float minutes.
func (t TimeValue) Minutes() float64 { return float64(t) }

// Window is a [start, end] pair.
type Window [2]TimeValue

func (w Window) toCore() core.TimeWindow {
	return core.TimeWindow{Start: w[0].Minutes(), End: w[1].Minutes()}
}

// Point is an [x, y] pair, or [lon, lat] under ProjectionLonLat.
type Point [2]float64

// Drone is the file form of a drone.
type Drone struct {
	ID         int     `yaml:"id"`
	Start      Point   `yaml:"start"`
	MaxWeight  float64 `yaml:"maxWeight"`
	Battery    float64 `yaml:"battery"`
	Speed      float64 `yaml:"speed"`
	ChargeTime float64 `yaml:"chargeTime,omitempty"`
}

// Delivery is the file form of a delivery point.
type Delivery struct {
	ID       int     `yaml:"id"`
	Pos      Point   `yaml:"pos"`
	Weight   float64 `yaml:"weight"`
	Priority int     `yaml:"priority"`
	Window   Window  `yaml:"window"`
}

// Zone is the file form of a no-fly zone.
type Zone struct {
	ID     int     `yaml:"id"`
	Ring   []Point `yaml:"ring"`
	Active Window  `yaml:"active"`
}

// File is a scenario document.
type File struct {
	Name       string     `yaml:"name,omitempty"`
	Projection string     `yaml:"projection,omitempty"`
	StartTime  TimeValue  `yaml:"startTime"`
	Seed       int64      `yaml:"seed,omitempty"`
	Drones     []Drone    `yaml:"drones"`
	Deliveries []Delivery `yaml:"deliveries"`
	Zones      []Zone     `yaml:"zones,omitempty"`
}

// Parse decodes a scenario document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &f, nil
}

// Load reads a scenario file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Save writes f as YAML.
func Save(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (f *File) project(p Point) (core.Pos, error) {
	switch strings.ToLower(strings.TrimSpace(f.Projection)) {
	case "", ProjectionPlanar:
		return core.Pos{X: p[0], Y: p[1]}, nil
	case ProjectionLonLat:
		if p[1] < -85.06 || p[1] > 85.06 {
			return core.Pos{}, fmt.Errorf("latitude %v outside the mercator range: %w", p[1], core.ErrInvalidInput)
		}
		return geo.Project4326To3857(p[0], p[1]), nil
	}
	return core.Pos{}, fmt.Errorf("unknown projection %q: %w", f.Projection, core.ErrInvalidInput)
}

// Instance converts the document into a validated core instance. Positions
// are projected first when the file declares lon/lat coordinates.
func (f *File) Instance() (*core.Instance, error) {
	drones := make([]*core.Drone, 0, len(f.Drones))
	for _, d := range f.Drones {
		start, err := f.project(d.Start)
		if err != nil {
			return nil, fmt.Errorf("drone %d: %w", d.ID, err)
		}
		cd, err := core.NewDrone(core.DroneID(d.ID), start, d.MaxWeight, d.Battery, d.Speed, d.ChargeTime)
		if err != nil {
			return nil, err
		}
		drones = append(drones, cd)
	}

	deliveries := make([]*core.DeliveryPoint, 0, len(f.Deliveries))
	for _, dp := range f.Deliveries {
		pos, err := f.project(dp.Pos)
		if err != nil {
			return nil, fmt.Errorf("delivery %d: %w", dp.ID, err)
		}
		cdp, err := core.NewDeliveryPoint(core.DeliveryID(dp.ID), pos, dp.Weight, dp.Priority, dp.Window.toCore())
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, cdp)
	}

	zones := make([]*core.NoFlyZone, 0, len(f.Zones))
	for _, z := range f.Zones {
		ring := make([]core.Pos, 0, len(z.Ring))
		for _, p := range z.Ring {
			pos, err := f.project(p)
			if err != nil {
				return nil, fmt.Errorf("zone %d: %w", z.ID, err)
			}
			ring = append(ring, pos)
		}
		cz, err := core.NewNoFlyZone(z.ID, ring, z.Active.toCore())
		if err != nil {
			return nil, err
		}
		zones = append(zones, cz)
	}

	return core.NewInstance(drones, deliveries, zones)
}

// FromInstance builds a planar document from an instance.
func FromInstance(name string, inst *core.Instance, startTime float64) *File {
	f := &File{Name: name, StartTime: TimeValue(startTime)}
	for _, d := range inst.Drones {
		f.Drones = append(f.Drones, Drone{
			ID: int(d.ID), Start: Point{d.Start.X, d.Start.Y},
			MaxWeight: d.MaxWeight, Battery: d.Battery, Speed: d.Speed, ChargeTime: d.ChargeTime,
		})
	}
	for _, dp := range inst.Deliveries {
		f.Deliveries = append(f.Deliveries, Delivery{
			ID: int(dp.ID), Pos: Point{dp.Pos.X, dp.Pos.Y}, Weight: dp.Weight, Priority: dp.Priority,
			Window: Window{TimeValue(dp.Window.Start), TimeValue(dp.Window.End)},
		})
	}
	for _, z := range inst.Zones {
		zf := Zone{ID: z.ID, Active: Window{TimeValue(z.Active.Start), TimeValue(z.Active.End)}}
		for _, p := range z.Ring() {
			zf.Ring = append(zf.Ring, Point{p.X, p.Y})
		}
		f.Zones = append(f.Zones, zf)
	}
	return f
}
