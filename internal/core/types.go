// Package core defines domain models for drone delivery planning.
package core

import (
	"errors"
	"fmt"

	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

var (
	// ErrNotFound is returned when a query references an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when scenario entities fail validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Pos is a position on the delivery plane.
type Pos = geo.Point

// NodeKind tags what a graph node stands for.
type NodeKind int

const (
	KindDrone    NodeKind = iota // Drone start position
	KindDelivery                 // Delivery point
)

func (k NodeKind) String() string {
	return [...]string{"drone", "delivery"}[k]
}

// NodeID identifies a graph node by kind and entity id.
type NodeID struct {
	Kind NodeKind
	ID   int
}

// DroneNode returns the node of a drone's start position.
func DroneNode(id DroneID) NodeID {
	return NodeID{Kind: KindDrone, ID: int(id)}
}

// DeliveryNode returns the node of a delivery point.
func DeliveryNode(id DeliveryID) NodeID {
	return NodeID{Kind: KindDelivery, ID: int(id)}
}

// IsDrone returns true for drone start nodes.
func (n NodeID) IsDrone() bool { return n.Kind == KindDrone }

// IsDelivery returns true for delivery nodes.
func (n NodeID) IsDelivery() bool { return n.Kind == KindDelivery }

func (n NodeID) String() string {
	return fmt.Sprintf("%s(%d)", n.Kind, n.ID)
}

// invalidf wraps ErrInvalidInput with context.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
