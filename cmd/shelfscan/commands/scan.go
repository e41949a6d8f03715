package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfscan/backend/cmd/shelfscan/ui"
	"github.com/shelfscan/backend/internal/domain"
	"github.com/shelfscan/backend/internal/infrastructure/spreadsheet"
	"github.com/shelfscan/backend/internal/usecase"
)

type scanOptions struct {
	*rootOptions
	productType string
	out         string
	format      string
}

func newScanCmd(root *rootOptions) *cobra.Command {
	opts := &scanOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "scan <image-path|url>",
		Short: "List the products visible in a shelf photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.productType, "type", "t", "", "product category (detected when omitted)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the products to this file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "export format: csv or xlsx (defaults to the --out extension)")
	return cmd
}

func (o *scanOptions) run(cmd *cobra.Command, arg string) error {
	format, err := o.exportFormat()
	if err != nil {
		return err
	}

	image, err := loadImage(arg)
	if err != nil {
		return err
	}

	classifier, extractor, logger, err := o.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	pipeline := usecase.NewPipeline(classifier, extractor, logger)
	spin := ui.NewSpinner(cmd.ErrOrStderr(), "Scanning shelf image...")
	pipeline.SetStateListener(spin.Follow)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := pipeline.Scan(ctx, image, domain.Category(o.productType))
	if errors.Is(err, domain.ErrNoProductsDetected) {
		ui.Warning(cmd.ErrOrStderr(), "No products detected. Try a clearer photo or a different category.")
		return reported(err)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ui.Success(out, "Found %d %s product(s)", len(result.Products), result.Category)
	rows := make([][]string, 0, len(result.Products))
	for _, p := range result.Products {
		rows = append(rows, []string{p.Name, p.Brand, fmt.Sprintf("%.0f%%", p.Confidence*100)})
	}
	ui.Table(out, []string{"PRODUCT", "BRAND", "CONFIDENCE"}, rows)

	if o.out == "" {
		return nil
	}

	data, err := spreadsheet.Write(format, result.Products)
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.out, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	ui.Success(out, "Exported to %s", o.out)
	return nil
}

// exportFormat resolves --format, falling back to the --out extension
func (o *scanOptions) exportFormat() (spreadsheet.Format, error) {
	if o.format == "" && o.out != "" {
		return spreadsheet.ParseFormat(strings.TrimPrefix(filepath.Ext(o.out), "."))
	}
	return spreadsheet.ParseFormat(o.format)
}
