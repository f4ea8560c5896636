package model

import "time"

// Frequency is the detected cadence of a recurring charge.
type Frequency string

const (
	// FrequencyWeekly is a mean gap of 5-10 days between charges.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly is a mean gap of 25-35 days between charges.
	FrequencyMonthly Frequency = "monthly"
	// FrequencyYearly is a mean gap of 350-380 days between charges.
	FrequencyYearly Frequency = "yearly"
)

// RecurringTransaction is one row per distinct recurring merchant,
// maintained by the recurring pattern detector. Hidden rows are
// deactivated rather than deleted so detection history survives.
type RecurringTransaction struct {
	LastDate     time.Time
	CreatedAt    time.Time
	ID           string
	MerchantName string
	Frequency    Frequency
	Amount       float64 // Mean absolute amount across the detected group
	IsActive     bool
}
