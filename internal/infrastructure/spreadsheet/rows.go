// Package spreadsheet renders product records as CSV or XLSX files.
package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shelfscan/backend/internal/domain"
)

// DefaultFileName is the download name used when the caller gives none
const DefaultFileName = "scanned-products"

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts csv or xlsx, case-insensitively; empty means csv
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns base with the format extension appended
func (f Format) FileName(base string) string {
	if base == "" {
		base = DefaultFileName
	}
	return base + "." + string(f)
}

// Write renders the records in the given format
func Write(format Format, products []domain.ProductRecord) ([]byte, error) {
	switch format {
	case FormatCSV:
		return WriteCSV(products)
	case FormatXLSX:
		return WriteXLSX(products)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
}

// Header is the fixed column set of every export
var Header = []string{
	"Product Name",
	"Brand",
	"Calories",
	"Protein (g)",
	"Carbs (g)",
	"Fat (g)",
	"Sugar (g)",
	"Sodium (mg)",
	"Fiber (g)",
	"Serving Size",
	"Scan Date",
}

// Row renders one record in Header order; absent nutrition values are empty
func Row(p domain.ProductRecord) []string {
	n := p.Nutrition
	return []string{
		p.Name,
		p.Brand,
		formatNumber(n.Calories),
		formatNumber(n.Protein),
		formatNumber(n.Carbs),
		formatNumber(n.Fat),
		formatNumber(n.Sugar),
		formatNumber(n.Sodium),
		formatNumber(n.Fiber),
		formatString(n.ServingSize),
		formatTime(p.Timestamp),
	}
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
