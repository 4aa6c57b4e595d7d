// Package thresholds holds the greenhouse automation setpoints. The set is a
// singleton: one row in the durable store, one cached copy in memory, mutated
// only through the Store so every change is persisted before anything else
// sees it.
package thresholds

import (
	"fmt"
	"time"
)

// Set is the full collection of automation setpoints.
//
// LastSyncedAt is nil until the edge controller has acknowledged at least one
// push of these values; it records the last successful relay sync, not the
// last edit.
type Set struct {
	TempMin         float64 `json:"temp_min"`
	TempMax         float64 `json:"temp_max"`
	HumidityMin     float64 `json:"humidity_min"`
	HumidityMax     float64 `json:"humidity_max"`
	SoilMoistureMin float64 `json:"soil_moisture_min"`
	SoilMoistureMax float64 `json:"soil_moisture_max"`
	LightMin        float64 `json:"light_min"`
	LightMax        float64 `json:"light_max"`
	WaterLevelMin   float64 `json:"water_level_min"`

	LastUpdatedBy string     `json:"last_updated_by,omitempty"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Defaults returns the documented factory setpoints.
func Defaults() Set {
	return Set{
		TempMin:         18,
		TempMax:         30,
		HumidityMin:     40,
		HumidityMax:     80,
		SoilMoistureMin: 30,
		SoilMoistureMax: 70,
		LightMin:        200,
		LightMax:        800,
		WaterLevelMin:   20,
	}
}

// FieldNames lists the settable fields in a stable order, matching the JSON
// names accepted by partial updates.
func FieldNames() []string {
	return []string{
		"temp_min", "temp_max",
		"humidity_min", "humidity_max",
		"soil_moisture_min", "soil_moisture_max",
		"light_min", "light_max",
		"water_level_min",
	}
}

// apply sets one field by its JSON name. Unknown names are rejected so a
// typo in a client payload cannot be silently dropped.
func (s *Set) apply(field string, value float64) error {
	switch field {
	case "temp_min":
		s.TempMin = value
	case "temp_max":
		s.TempMax = value
	case "humidity_min":
		s.HumidityMin = value
	case "humidity_max":
		s.HumidityMax = value
	case "soil_moisture_min":
		s.SoilMoistureMin = value
	case "soil_moisture_max":
		s.SoilMoistureMax = value
	case "light_min":
		s.LightMin = value
	case "light_max":
		s.LightMax = value
	case "water_level_min":
		s.WaterLevelMin = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}
