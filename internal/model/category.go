package model

// Category classifies a contaminant into a regulatory group.
type Category string

// Contaminant categories.
const (
	CategoryLeadCopper      Category = "Lead and Copper"
	CategoryColiform        Category = "Coliform Bacteria"
	CategoryTurbidity       Category = "Turbidity"
	CategoryOrganicCarbon   Category = "Total Organic Carbon"
	CategoryDisinfection    Category = "Disinfection By-Products"
	CategoryRadioactive     Category = "Radioactive Contaminants"
	CategoryVolatileOrganic Category = "Volatile Organic Contaminants"
	CategoryInorganic       Category = "Inorganic Contaminants"
	CategoryOther           Category = "Other"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{
		CategoryLeadCopper,
		CategoryColiform,
		CategoryTurbidity,
		CategoryOrganicCarbon,
		CategoryDisinfection,
		CategoryRadioactive,
		CategoryVolatileOrganic,
		CategoryInorganic,
		CategoryOther,
	}
}

// String returns the display name.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}
