package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/semaphore"

	"streetview-download/internal/downloads"
	"streetview-download/internal/ratelimit"
	"streetview-download/internal/streetview"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk <id-file>",
	Short: "Download every panorama listed in a file",
	Long: `Download a list of panoramas, a fixed number at a time. The file
holds one share URL or panorama ID per line; blank lines and lines
starting with # are skipped. Images are named after their panorama ID.

When the tile endpoint starts throttling, downloads pause and resume
with an escalating backoff instead of burning through the list.`,
	Args: cobra.ExactArgs(1),
	RunE: runBulk,
}

func init() {
	rootCmd.AddCommand(bulkCmd)

	settings := loadUserSettings()
	bulkCmd.Flags().IntP("zoom", "z", settings.DefaultZoom, "zoom level (0-5, higher is sharper)")
	bulkCmd.Flags().StringP("output-dir", "o", settings.OutputDir, "directory for downloaded panoramas")
	bulkCmd.Flags().StringP("format", "f", settings.Format, "output format (jpeg|png)")
	bulkCmd.Flags().Bool("no-crop", !settings.CropBlackEdges, "keep the black padding instead of cropping it")
	bulkCmd.Flags().Int("parallel", 2, "number of panoramas downloaded at once")

	viper.BindPFlag("bulk.zoom", bulkCmd.Flags().Lookup("zoom"))
	viper.BindPFlag("bulk.parallel", bulkCmd.Flags().Lookup("parallel"))
}

func runBulk(cmd *cobra.Command, args []string) error {
	ids, err := readPanoramaList(args[0])
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no panorama IDs in %s", args[0])
	}

	zoom := viper.GetInt("bulk.zoom")
	settings, err := streetview.NewSettings(zoom)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if err := validateFormat(format); err != nil {
		return err
	}
	noCrop, _ := cmd.Flags().GetBool("no-crop")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	if outputDir == "" {
		outputDir = "."
	}
	parallel := viper.GetInt("bulk.parallel")
	if parallel < 1 {
		parallel = 1
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	downloader, err := downloads.NewDownloader(downloads.Config{
		Client:         newClient(),
		Cache:          newTileCache(),
		CropBlackEdges: !noCrop,
	})
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	limiter := ratelimit.NewLimiter(nil)
	limiter.SetOnLimit(func(event ratelimit.Event) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Rate limited by upstream (HTTP %d), pausing until %s\n",
			event.StatusCode, event.ResumeAt.Format(time.Kitchen))
	})

	var abortOnce sync.Once
	var abortErr error
	abort := func(err error) {
		abortOnce.Do(func() {
			abortErr = err
			cancel()
		})
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Downloading %d panoramas at zoom %d\n", len(ids), zoom)

	sem := semaphore.NewWeighted(int64(parallel))
	var wg sync.WaitGroup
	var failed atomic.Int64
	for i, id := range ids {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			defer sem.Release(1)

			img, err := downloader.Download(ctx, id, settings)
			if err != nil {
				var statusErr *streetview.StatusError
				if errors.As(err, &statusErr) && ratelimit.IsLimitStatus(statusErr.Code) {
					if _, limitErr := limiter.Record(statusErr.Code); limitErr != nil {
						abort(limitErr)
					}
				}
				failed.Add(1)
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s failed: %v\n", i+1, len(ids), id, err)
				return
			}
			limiter.Clear()

			output := filepath.Join(outputDir, id+outputExtension(format))
			if err := downloads.SaveImage(output, img, format); err != nil {
				failed.Add(1)
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s failed: %v\n", i+1, len(ids), id, err)
				return
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] saved %s\n", i+1, len(ids), output)
		}(i, id)
	}
	wg.Wait()

	failures := int(failed.Load())
	t := newTracker()
	t.Track("download_complete", map[string]interface{}{
		"source":  "bulk",
		"zoom":    zoom,
		"total":   len(ids),
		"success": len(ids) - failures,
		"failed":  failures,
		"format":  format,
	})
	t.Close()

	if abortErr != nil {
		return abortErr
	}
	if err := sigCtx.Err(); err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d panoramas failed", failures, len(ids))
	}
	return nil
}

// readPanoramaList reads one panorama per line, accepting both share URLs
// and bare IDs.
func readPanoramaList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open panorama list: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if info, err := streetview.ParseURL(line); err == nil {
			line = info.PanoramaID
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read panorama list: %w", err)
	}
	return ids, nil
}
