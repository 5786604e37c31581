package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"streetview-download/internal/downloads"
	"streetview-download/internal/streetview"
	"streetview-download/internal/utils/naming"
)

var downloadCmd = &cobra.Command{
	Use:   "download <url-or-panorama-id>",
	Short: "Download a panorama and save it as a single image",
	Long: `Download all tiles of a Street View panorama, assemble them into one
image and crop the black padding. The argument is either a full share URL
or a bare 22-character panorama ID.

Zoom levels range from 0 (a single tile) to 5 (up to 16384x8192 pixels).
A region limits the download to a rectangle of the tile grid, given as
'x0,y0,x1,y1' with the bottom-right corner exclusive.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	settings := loadUserSettings()
	downloadCmd.Flags().IntP("zoom", "z", settings.DefaultZoom, "zoom level (0-5, higher is sharper)")
	downloadCmd.Flags().StringP("output", "o", "", "output file (default derives from the panorama ID or URL)")
	downloadCmd.Flags().StringP("format", "f", settings.Format, "output format (jpeg|png)")
	downloadCmd.Flags().String("region", "", "tile region to download as 'x0,y0,x1,y1'")
	downloadCmd.Flags().Bool("no-crop", !settings.CropBlackEdges, "keep the black padding instead of cropping it")
	downloadCmd.Flags().Int("batches", settings.Batches, "number of concurrent tile batches")
	downloadCmd.Flags().Bool("serial", false, "download tiles one at a time")

	viper.BindPFlag("download.zoom", downloadCmd.Flags().Lookup("zoom"))
	viper.BindPFlag("download.format", downloadCmd.Flags().Lookup("format"))
	viper.BindPFlag("download.batches", downloadCmd.Flags().Lookup("batches"))
}

func runDownload(cmd *cobra.Command, args []string) error {
	// A share URL pins down the panorama ID; anything else is treated as
	// a bare ID and validated by the pipeline.
	id := args[0]
	var urlInfo *streetview.URLInfo
	if info, err := streetview.ParseURL(id); err == nil {
		urlInfo = info
		id = info.PanoramaID
	}

	zoom := viper.GetInt("download.zoom")
	settings, err := streetview.NewSettings(zoom)
	if err != nil {
		return err
	}
	if region, _ := cmd.Flags().GetString("region"); region != "" {
		settings, err = streetview.ParseRegion(zoom, region)
		if err != nil {
			return err
		}
	}

	format := viper.GetString("download.format")
	if err := validateFormat(format); err != nil {
		return err
	}

	batches := viper.GetInt("download.batches")
	if serial, _ := cmd.Flags().GetBool("serial"); serial {
		batches = 1
	}
	noCrop, _ := cmd.Flags().GetBool("no-crop")

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		name := id + outputExtension(format)
		if urlInfo != nil {
			name = naming.PanoramaFilename(urlInfo.Latitude, urlInfo.Longitude, zoom, id, outputExtension(format))
		}
		output = defaultOutputPath(name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := progressbar.New(settings.Tiles())
	downloader, err := downloads.NewDownloader(downloads.Config{
		Client:         newClient(),
		Cache:          newTileCache(),
		Batches:        batches,
		CropBlackEdges: !noCrop,
		OnProgress: func(p downloads.Progress) {
			if p.State == downloads.StateFetching {
				bar.Set(p.Downloaded)
			}
		},
	})
	if err != nil {
		return err
	}

	start := time.Now()
	img, err := downloader.Download(ctx, id, settings)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr())
		return err
	}
	bar.Finish()
	fmt.Fprintln(cmd.ErrOrStderr())

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := downloads.SaveImage(output, img, format); err != nil {
		return err
	}

	bounds := img.Bounds()
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s (%dx%d) in %s\n",
		output, bounds.Dx(), bounds.Dy(), time.Since(start).Round(time.Millisecond))

	t := newTracker()
	t.Track("download_complete", map[string]interface{}{
		"source": "cli",
		"zoom":   settings.Zoom(),
		"tiles":  settings.Tiles(),
		"format": format,
	})
	t.Close()
	return nil
}

func validateFormat(format string) error {
	switch format {
	case downloads.FormatJPEG, downloads.FormatPNG:
		return nil
	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}
}

func outputExtension(format string) string {
	if format == downloads.FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// defaultOutputPath places name in the configured output directory, falling
// back to the working directory.
func defaultOutputPath(name string) string {
	if dir := loadUserSettings().OutputDir; dir != "" {
		return filepath.Join(dir, name)
	}
	return name
}
