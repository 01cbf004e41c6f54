// README: Driver entity and vehicle capability definitions.
package driver

import (
	"time"

	"accessride/internal/types"
)

// Capability is a discrete accessibility feature a vehicle provides. Rides
// declare required capabilities and drivers advertise provided ones; matching
// is an exact set-containment check, never free-text comparison.
type Capability string

const (
	CapWheelchairRamp    Capability = "wheelchair_ramp"
	CapWalkingAssistance Capability = "walking_assistance"
	CapServiceAnimal     Capability = "service_animal"
	CapStretcher         Capability = "stretcher"
)

// ParseCapability normalizes free-text requirement labels from older records
// into tagged capabilities. Unrecognized labels pass through untouched so they
// can only ever fail a match, not accidentally pass one.
func ParseCapability(s string) Capability {
	switch s {
	case "wheelchair", "wheelchair ramp", string(CapWheelchairRamp):
		return CapWheelchairRamp
	case "walking assistance", string(CapWalkingAssistance):
		return CapWalkingAssistance
	case "service animal", string(CapServiceAnimal):
		return CapServiceAnimal
	case string(CapStretcher):
		return CapStretcher
	}
	return Capability(s)
}

type CapabilitySet []Capability

func (s CapabilitySet) Has(c Capability) bool {
	for _, v := range s {
		if v == c {
			return true
		}
	}
	return false
}

// HasAll reports whether every required capability is present.
func (s CapabilitySet) HasAll(required CapabilitySet) bool {
	for _, c := range required {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

func (s CapabilitySet) Strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = string(c)
	}
	return out
}

func FromStrings(vals []string) CapabilitySet {
	out := make(CapabilitySet, 0, len(vals))
	for _, v := range vals {
		out = append(out, ParseCapability(v))
	}
	return out
}

type Driver struct {
	ID           types.ID      `json:"id"`
	Capabilities CapabilitySet `json:"capabilities"`
	Capacity     int           `json:"capacity"`
	Available    bool          `json:"available"`
	RegisteredAt time.Time     `json:"registered_at"`
}
