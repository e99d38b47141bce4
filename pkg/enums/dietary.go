package enums

import "fmt"

// Dietary classifies a meal.
type Dietary string

const (
	DietaryVeg    Dietary = "Veg"
	DietaryNonVeg Dietary = "Non-Veg"
	DietaryVegan  Dietary = "Vegan"
)

var validDietary = []Dietary{
	DietaryVeg,
	DietaryNonVeg,
	DietaryVegan,
}

// IsValid reports whether the value is a known Dietary.
func (d Dietary) IsValid() bool {
	for _, candidate := range validDietary {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDietary converts raw input into a Dietary.
func ParseDietary(value string) (Dietary, error) {
	for _, candidate := range validDietary {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dietary value %q", value)
}
