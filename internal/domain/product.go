package domain

import "time"

// Product field defaults applied when the model omits a value
const (
	DefaultProductName       = "Unknown product"
	DefaultBrandName         = "Unknown brand"
	DefaultProductConfidence = 0.8
)

// ProductRecord is one product recognised in a shelf image
type ProductRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Brand      string    `json:"brand"`
	Confidence float64   `json:"confidence"` // advisory, as reported by the model
	ImageURL   string    `json:"imageUrl"`
	Nutrition  Nutrition `json:"nutrition"`
	Timestamp  time.Time `json:"timestamp"`
}

// Scan is a completed pipeline run kept for the lifetime of a session
type Scan struct {
	ID        string          `json:"id"`
	Category  Category        `json:"category"`
	Products  []ProductRecord `json:"products"`
	CreatedAt time.Time       `json:"createdAt"`
}
