package config

import "time"

// DomainConfig holds the configurable business rules of the registry
type DomainConfig struct {
	// Enrollment constraints
	MinStudentAge     int
	MaxStudentAge     int
	AgeDriftTolerance int

	// Record constraints
	MaxNameLength          int
	MaxPickupAddresses     int
	MaxParentsPerStudent   int
	MinParentsPerStudent   int
	MaxNoteLength          int
	MaxSpecialInstructions int

	// Query limits
	MaxListPageSize int
	DefaultPageSize int

	// Time constraints
	GeocodeTimeout time.Duration
	MirrorTimeout  time.Duration

	// Feature flags
	RequireParentContact bool
	AllowFutureBirthdate bool
}

// DefaultDomainConfig returns the default registry rules
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinStudentAge:     3,
		MaxStudentAge:     20,
		AgeDriftTolerance: 1,

		MaxNameLength:          100,
		MaxPickupAddresses:     5,
		MaxParentsPerStudent:   4,
		MinParentsPerStudent:   1,
		MaxNoteLength:          2000,
		MaxSpecialInstructions: 2000,

		MaxListPageSize: 100,
		DefaultPageSize: 20,

		GeocodeTimeout: 10 * time.Second,
		MirrorTimeout:  5 * time.Second,

		RequireParentContact: false,
		AllowFutureBirthdate: false,
	}
}
