package domain

import (
	"fmt"
	"time"
)

const (
	MinExpectedDurationDays = 1
	MaxExpectedDurationDays = 3650

	CategoryBattery   = "battery"
	CategoryHVAC      = "hvac"
	CategoryAppliance = "appliance"
	CategorySafety    = "safety"
	CategoryOther     = "other"
)

// MaintenanceItem is a household item tracked by a single owner.
type MaintenanceItem struct {
	ID                   string
	OwnerID              string
	Name                 string
	Category             string
	ItemType             string
	DateLastServiced     time.Time
	ExpectedDurationDays int
	Image                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ItemFields is a partial update of a maintenance item. Nil fields are left untouched.
type ItemFields struct {
	Name                 *string
	Category             *string
	ItemType             *string
	DateLastServiced     *time.Time
	ExpectedDurationDays *int
	Image                *string
}

func (f ItemFields) IsEmpty() bool {
	return f.Name == nil && f.Category == nil && f.ItemType == nil &&
		f.DateLastServiced == nil && f.ExpectedDurationDays == nil && f.Image == nil
}

func ValidateDuration(days int) error {
	if days < MinExpectedDurationDays || days > MaxExpectedDurationDays {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, days)
	}
	return nil
}
