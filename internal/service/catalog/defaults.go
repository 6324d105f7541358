package catalog

import "github.com/KasumiMercury/voltahome/internal/domain"

// DefaultCategories returns the built-in lifetime table.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:         domain.CategoryBattery,
			FallbackDays: 180,
			Entries: []Entry{
				{ItemType: "AA", Days: 180},
				{ItemType: "AAA", Days: 120},
				{ItemType: "9V", Days: 365},
				{ItemType: "CR2032", Days: 730},
				{ItemType: "C", Days: 300},
				{ItemType: "D", Days: 400},
				{ItemType: "CR123A", Days: 365},
				{ItemType: "Other", Days: 180},
			},
		},
		{
			Name: domain.CategoryHVAC,
			Entries: []Entry{
				{ItemType: "hvac-filter-1in", Days: 90},
				{ItemType: "hvac-filter-4in", Days: 180},
				{ItemType: "humidifier-pad", Days: 365},
			},
		},
		{
			Name: domain.CategoryAppliance,
			Entries: []Entry{
				{ItemType: "fridge-water-filter", Days: 180},
				{ItemType: "dishwasher-filter", Days: 90},
				{ItemType: "range-hood-filter", Days: 90},
			},
		},
		{
			Name:         domain.CategorySafety,
			FallbackDays: 365,
			Entries: []Entry{
				{ItemType: "smoke-detector-9v", Days: 365},
				{ItemType: "co-detector", Days: 2555},
				{ItemType: "fire-extinguisher-inspection", Days: 365},
			},
		},
	}
}
