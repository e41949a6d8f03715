package domain

import "strings"

// Category is the grocery product type the classifier may assign to an image
type Category string

const (
	CategoryBeverage  Category = "beverage"
	CategoryDairy     Category = "dairy"
	CategoryCereal    Category = "cereal"
	CategoryVegetable Category = "vegetable"
	CategorySnack     Category = "snack"
	CategoryBakery    Category = "bakery"
	CategoryMeat      Category = "meat"
	CategorySeafood   Category = "seafood"
	CategoryUnknown   Category = "unknown"
)

// knownCategories is the single list both the classifier prompt and ParseCategory read.
var knownCategories = []Category{
	CategoryBeverage,
	CategoryDairy,
	CategoryCereal,
	CategoryVegetable,
	CategorySnack,
	CategoryBakery,
	CategoryMeat,
	CategorySeafood,
}

// KnownCategories returns the recognised categories, excluding unknown
func KnownCategories() []Category {
	out := make([]Category, len(knownCategories))
	copy(out, knownCategories)
	return out
}

// ParseCategory trims and lower-cases s and returns the matching category.
// Anything that is not exactly a known category collapses to CategoryUnknown.
func ParseCategory(s string) Category {
	candidate := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range knownCategories {
		if c == candidate {
			return c
		}
	}
	return CategoryUnknown
}

// String implements fmt.Stringer
func (c Category) String() string {
	return string(c)
}
