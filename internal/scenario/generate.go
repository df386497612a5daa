package scenario

import (
	"fmt"
	"math/rand"
)

// Params controls random scenario generation.
type Params struct {
	Seed       int64
	Drones     int
	Deliveries int
	Zones      int
	AreaSize   float64
	ChargeTime float64
}

// DefaultParams mirrors the classic benchmark setup: a 1000x1000 area and a
// working day from 09:00 to 17:00 with zones closed between 09:30 and 11:00.
func DefaultParams() Params {
	return Params{Seed: 1, Drones: 5, Deliveries: 20, Zones: 2, AreaSize: 1000, ChargeTime: 30}
}

// Fixed clock times, in minutes, used by generated scenarios.
const (
	genStart       = 10 * 60
	genWindowStart = 9 * 60
	genWindowEnd   = 17 * 60
	genZoneStart   = 9*60 + 30
	genZoneEnd     = 11 * 60
)

// Generate builds a deterministic scenario from p.
func Generate(p Params) *File {
	if p.AreaSize <= 0 {
		p.AreaSize = 1000
	}
	rng := rand.New(rand.NewSource(p.Seed))
	f := &File{
		Name:      fmt.Sprintf("drones_%d_%d_%d_%d", p.Drones, p.Deliveries, p.Zones, p.Seed),
		StartTime: genStart,
		Seed:      p.Seed,
	}

	for i := 0; i < p.Drones; i++ {
		f.Drones = append(f.Drones, Drone{
			ID:         i + 1,
			MaxWeight:  uniform(rng, 5, 20),
			Battery:    float64(5000 + rng.Intn(15001)),
			Speed:      uniform(rng, 5, 15),
			Start:      Point{uniform(rng, 0, p.AreaSize), uniform(rng, 0, p.AreaSize)},
			ChargeTime: p.ChargeTime,
		})
	}

	for i := 0; i < p.Deliveries; i++ {
		f.Deliveries = append(f.Deliveries, Delivery{
			ID:       i + 1,
			Pos:      Point{uniform(rng, 0, p.AreaSize), uniform(rng, 0, p.AreaSize)},
			Weight:   uniform(rng, 1, 10),
			Priority: 1 + rng.Intn(5),
			Window:   Window{genWindowStart, genWindowEnd},
		})
	}

	margin := 100.0
	if p.AreaSize <= 2*margin {
		margin = p.AreaSize / 4
	}
	for i := 0; i < p.Zones; i++ {
		cx := uniform(rng, margin, p.AreaSize-margin)
		cy := uniform(rng, margin, p.AreaSize-margin)
		half := uniform(rng, margin/2, 2*margin)
		f.Zones = append(f.Zones, Zone{
			ID: i + 1,
			Ring: []Point{
				{cx - half, cy - half},
				{cx + half, cy - half},
				{cx + half, cy + half},
				{cx - half, cy + half},
			},
			Active: Window{genZoneStart, genZoneEnd},
		})
	}
	return f
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
