// Package alert stores device and backend alerts. Alerts are short-lived
// operational signals (7-day retention); ERROR and CRITICAL levels are also
// pushed to live viewers as system_alert events.
package alert

import (
	"errors"
	"time"
)

// Level is the alert severity.
type Level string

// Alert severity levels, ordered from least to most severe.
const (
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
)

// Source identifies which part of the installation raised the alert.
type Source string

// Alert sources.
const (
	SourcePi      Source = "pi"
	SourceArduino Source = "arduino"
	SourceBackend Source = "backend"
)

// Sentinel errors for the alert package.
var (
	ErrNotFound      = errors.New("alert not found")
	ErrInvalidLevel  = errors.New("invalid alert level")
	ErrInvalidSource = errors.New("invalid alert source")
)

// IsValidLevel checks whether the level belongs to the closed set.
func IsValidLevel(l Level) bool {
	switch l {
	case LevelInfo, LevelWarning, LevelError, LevelCritical:
		return true
	}
	return false
}

// IsValidSource checks whether the source belongs to the closed set.
func IsValidSource(s Source) bool {
	switch s {
	case SourcePi, SourceArduino, SourceBackend:
		return true
	}
	return false
}

// Broadcast reports whether the level is severe enough for the live
// system_alert stream. INFO and WARNING stay in the stored list only.
func (l Level) Broadcast() bool {
	return l == LevelError || l == LevelCritical
}

// Alert is one stored alert.
type Alert struct {
	ID             string    `json:"id"`
	Level          Level     `json:"level"`
	Source         Source    `json:"source"`
	Message        string    `json:"message"`
	Acknowledged   bool      `json:"acknowledged"`
	AcknowledgedBy string    `json:"acknowledged_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
