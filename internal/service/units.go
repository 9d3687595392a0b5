package service

import (
	"fmt"
	"strings"
)

type unitKind string

const (
	unitKindMass   unitKind = "mass"
	unitKindLength unitKind = "length"
	unitKindVolume unitKind = "volume"
)

type unitDef struct {
	kind       unitKind
	toBaseUnit float64
}

var unitTable = map[string]unitDef{
	// mass (base = kg)
	"g":   {kind: unitKindMass, toBaseUnit: 0.001},
	"kg":  {kind: unitKindMass, toBaseUnit: 1},
	"lb":  {kind: unitKindMass, toBaseUnit: 0.45359237},
	"lbs": {kind: unitKindMass, toBaseUnit: 0.45359237},

	// length (base = m)
	"m":  {kind: unitKindLength, toBaseUnit: 1},
	"cm": {kind: unitKindLength, toBaseUnit: 0.01},
	"in": {kind: unitKindLength, toBaseUnit: 0.0254},
	"ft": {kind: unitKindLength, toBaseUnit: 0.3048},

	// volume (base = ml)
	"ml":    {kind: unitKindVolume, toBaseUnit: 1},
	"l":     {kind: unitKindVolume, toBaseUnit: 1000},
	"cup":   {kind: unitKindVolume, toBaseUnit: 236.5882365},
	"fl-oz": {kind: unitKindVolume, toBaseUnit: 29.5735295625},
}

// ToKilograms converts a body weight. An empty unit means kg.
func ToKilograms(value float64, unit string) (float64, error) {
	return convert(value, unit, "kg", unitKindMass)
}

// ToMeters converts a height. An empty unit means m.
func ToMeters(value float64, unit string) (float64, error) {
	return convert(value, unit, "m", unitKindLength)
}

// ToMilliliters converts a water amount. An empty unit means ml.
func ToMilliliters(value float64, unit string) (float64, error) {
	return convert(value, unit, "ml", unitKindVolume)
}

func convert(value float64, unit, fallback string, kind unitKind) (float64, error) {
	if value < 0 {
		return 0, fmt.Errorf("amount must be >= 0")
	}
	if strings.TrimSpace(unit) == "" {
		unit = fallback
	}
	def, ok := resolveUnit(unit)
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q", unit)
	}
	if def.kind != kind {
		return 0, fmt.Errorf("unit %q is not a %s unit", unit, kind)
	}
	return value * def.toBaseUnit, nil
}

func resolveUnit(unit string) (unitDef, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	def, ok := unitTable[u]
	return def, ok
}
