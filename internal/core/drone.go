package core

import "math"

// DroneID is a unique drone identifier.
type DroneID int

// Energy model constants.
const (
	EnergyPerUnit       = 10.0  // battery draw per distance unit during path search
	DrainFactor         = 100.0 // leg draw = distance * DrainFactor / speed
	FitnessEnergyFactor = 5.0   // GA energy term = distance * FitnessEnergyFactor / speed
	LowBatteryRatio     = 0.2   // recharge below this share of capacity
)

// Drone is an immutable fleet member.
type Drone struct {
	ID         DroneID
	Start      Pos
	MaxWeight  float64 // payload limit
	Battery    float64 // capacity
	Speed      float64 // distance units per minute
	ChargeTime float64 // minutes for a full recharge
}

// NewDrone creates a validated drone.
func NewDrone(id DroneID, start Pos, maxWeight, battery, speed, chargeTime float64) (*Drone, error) {
	d := &Drone{
		ID:         id,
		Start:      start,
		MaxWeight:  maxWeight,
		Battery:    battery,
		Speed:      speed,
		ChargeTime: chargeTime,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the drone's parameters.
func (d *Drone) Validate() error {
	switch {
	case !finite(d.Start.X) || !finite(d.Start.Y):
		return invalidf("drone %d: non-finite start position", d.ID)
	case !finite(d.MaxWeight) || d.MaxWeight < 0:
		return invalidf("drone %d: negative max weight %.2f", d.ID, d.MaxWeight)
	case !finite(d.Battery) || d.Battery <= 0:
		return invalidf("drone %d: battery must be positive", d.ID)
	case !finite(d.Speed) || d.Speed <= 0:
		return invalidf("drone %d: speed must be positive", d.ID)
	case !finite(d.ChargeTime) || d.ChargeTime < 0:
		return invalidf("drone %d: negative charge time", d.ID)
	}
	return nil
}

// Drain returns the battery used to fly dist.
func (d *Drone) Drain(dist float64) float64 {
	return dist * DrainFactor / d.Speed
}

// TravelTime returns minutes needed to fly dist.
func (d *Drone) TravelTime(dist float64) float64 {
	return dist / d.Speed
}

// FitnessEnergy returns the energy term charged by the GA for flying dist.
func (d *Drone) FitnessEnergy(dist float64) float64 {
	return dist * FitnessEnergyFactor / d.Speed
}

// CanCarry checks the payload limit.
func (d *Drone) CanCarry(weight float64) bool {
	return weight <= d.MaxWeight
}

// BatteryPercentage returns level as a percentage of capacity.
func (d *Drone) BatteryPercentage(level float64) float64 {
	return level / d.Battery * 100.0
}

// IsLowBattery returns true if level is below the recharge threshold.
func (d *Drone) IsLowBattery(level float64) bool {
	return level < LowBatteryRatio*d.Battery
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
