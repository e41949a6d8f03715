package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfscan/backend/cmd/shelfscan/ui"
)

func newDetectCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <image-path|url>",
		Short: "Print the product category of a shelf photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadImage(args[0])
			if err != nil {
				return err
			}

			classifier, _, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			spin := ui.NewSpinner(cmd.ErrOrStderr(), "Detecting product type...")
			spin.Follow(true)
			category := classifier.Classify(ctx, image)
			spin.Follow(false)

			fmt.Fprintln(cmd.OutOrStdout(), category)
			return nil
		},
	}
}
