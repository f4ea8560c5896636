package model

import "time"

// MappingSource indicates how a merchant mapping was created.
type MappingSource string

const (
	// MappingSourceAuto indicates the mapping was created automatically.
	MappingSourceAuto MappingSource = "AUTO"
	// MappingSourceManual indicates the mapping was created by an explicit user edit.
	MappingSourceManual MappingSource = "MANUAL"
	// MappingSourceAutoConfirmed indicates an auto-created mapping the user has since edited.
	MappingSourceAutoConfirmed MappingSource = "AUTO_CONFIRMED"
)

// MerchantMapping is a learned mapping from raw merchant text to a
// preferred display name and default category. Once present it supersedes
// rule-based categorization for that merchant.
type MerchantMapping struct {
	LastUpdated time.Time
	CategoryID  *int
	Merchant    string // Normalized (lowercased, trimmed) original merchant text
	DisplayName string
	Source      MappingSource
	UseCount    int
}
