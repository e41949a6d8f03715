package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/shelfscan/backend/internal/domain"
)

// WriteCSV renders the records as a comma separated file with a header row
func WriteCSV(products []domain.ProductRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range products {
		if err := w.Write(Row(p)); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
