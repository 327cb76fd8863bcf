package enums

import (
	"fmt"
	"strings"
)

// ProductCategory maps to the product_category enum in Postgres.
type ProductCategory string

const (
	ProductCategoryProtein     ProductCategory = "protein"
	ProductCategoryPreWorkout  ProductCategory = "pre_workout"
	ProductCategoryCreatine    ProductCategory = "creatine"
	ProductCategoryVitamins    ProductCategory = "vitamins"
	ProductCategoryAminoAcids  ProductCategory = "amino_acids"
	ProductCategoryWellness    ProductCategory = "wellness"
	ProductCategoryAccessories ProductCategory = "accessories"
)

var validProductCategories = []ProductCategory{
	ProductCategoryProtein,
	ProductCategoryPreWorkout,
	ProductCategoryCreatine,
	ProductCategoryVitamins,
	ProductCategoryAminoAcids,
	ProductCategoryWellness,
	ProductCategoryAccessories,
}

// String implements fmt.Stringer.
func (p ProductCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductCategory.
func (p ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory. Matching
// is case-insensitive since clients send both "PROTEIN" and "protein".
func ParseProductCategory(value string) (ProductCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validProductCategories {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
