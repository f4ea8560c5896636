package model

// Category represents a spending category. Reference data, managed by
// the categories command and seeded by migrations.
type Category struct {
	Name      string
	Icon      string
	Color     string
	ID        int
	IsDefault bool
	IsActive  bool
}
