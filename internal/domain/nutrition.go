package domain

// Nutrition holds the per-product nutrition facts shown next to a scan.
// Every field is optional; the extraction stage never fills them in.
type Nutrition struct {
	Calories    *float64 `json:"calories,omitempty"`
	Protein     *float64 `json:"protein,omitempty"` // grams
	Carbs       *float64 `json:"carbs,omitempty"`   // grams
	Fat         *float64 `json:"fat,omitempty"`     // grams
	Sugar       *float64 `json:"sugar,omitempty"`   // grams
	Sodium      *float64 `json:"sodium,omitempty"`  // milligrams
	Fiber       *float64 `json:"fiber,omitempty"`   // grams
	ServingSize *string  `json:"servingSize,omitempty"`
}
