package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"streetview-download/internal/downloads"
	"streetview-download/internal/streetview"
	"streetview-download/internal/utils/naming"
)

var viewCmd = &cobra.Command{
	Use:   "view <url>",
	Short: "Download the projected view a share URL renders",
	Long: `Download the view a Street View share URL shows in the browser: the
panorama projected at the URL's yaw, pitch and field of view, rather
than the full equirectangular image.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	settings := loadUserSettings()
	viewCmd.Flags().IntP("width", "W", streetview.DefaultViewWidth, "view width in pixels")
	viewCmd.Flags().IntP("height", "H", streetview.DefaultViewHeight, "view height in pixels")
	viewCmd.Flags().StringP("output", "o", "", "output file (default derives from the URL coordinates)")
	viewCmd.Flags().StringP("format", "f", settings.Format, "output format (jpeg|png)")
}

func runView(cmd *cobra.Command, args []string) error {
	info, err := streetview.ParseURL(args[0])
	if err != nil {
		return err
	}

	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	format, _ := cmd.Flags().GetString("format")
	if err := validateFormat(format); err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = defaultOutputPath(naming.ViewFilename(info.Latitude, info.Longitude, info.PanoramaID, outputExtension(format)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	img, err := newClient().FetchView(ctx, info, width, height)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := downloads.SaveImage(output, img, format); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s (%dx%d)\n", output, width, height)
	return nil
}
