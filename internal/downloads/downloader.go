package downloads

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"streetview-download/internal/streetview"
)

// DefaultBatches is the number of concurrent tile batches per download.
const DefaultBatches = 8

// State represents the current phase of a panorama download.
type State string

const (
	StatePending    State = "pending"
	StateFetching   State = "fetching"
	StateAssembling State = "assembling"
	StateCropping   State = "cropping"
	StateDone       State = "done"
	StateCancelled  State = "cancelled"
	StateFailed     State = "failed"
)

// Progress reports the state of a running download.
type Progress struct {
	State      State `json:"state"`
	Downloaded int   `json:"downloaded"`
	Total      int   `json:"total"`
	Percent    int   `json:"percent"`
}

// TileGrid holds raw tile bytes indexed [row][column] relative to the
// requested region's top-left corner.
type TileGrid [][][]byte

func newTileGrid(width, height int) TileGrid {
	grid := make(TileGrid, height)
	for row := range grid {
		grid[row] = make([][]byte, width)
	}
	return grid
}

// TileCache is the cache surface used by the downloader. Implementations
// must be safe for concurrent use.
type TileCache interface {
	Get(panoramaID string, zoom, x, y int) ([]byte, bool)
	Set(panoramaID string, zoom, x, y int, data []byte)
}

// Config carries the downloader dependencies.
type Config struct {
	// Client fetches tiles. Required.
	Client *streetview.Client

	// Cache is consulted before each fetch and filled afterwards. Optional.
	Cache TileCache

	// Batches is the number of concurrent tile batches. Zero means
	// DefaultBatches; one disables concurrency and cancellation checks.
	Batches int

	// CropBlackEdges trims uninformative black edges from the assembled
	// panorama.
	CropBlackEdges bool

	// OnProgress receives state and tile-count updates. Optional.
	OnProgress func(Progress)
}

// Downloader fetches panorama tiles and assembles them into a single image.
type Downloader struct {
	client         *streetview.Client
	cache          TileCache
	batches        int
	cropBlackEdges bool
	onProgress     func(Progress)
}

// NewDownloader creates a downloader with injected dependencies.
func NewDownloader(cfg Config) (*Downloader, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("downloader requires a client")
	}
	if cfg.Batches <= 0 {
		cfg.Batches = DefaultBatches
	}

	return &Downloader{
		client:         cfg.Client,
		cache:          cfg.Cache,
		batches:        cfg.Batches,
		cropBlackEdges: cfg.CropBlackEdges,
		onProgress:     cfg.OnProgress,
	}, nil
}

// Download runs the full pipeline: fetch all tiles in the region, assemble
// them into one bitmap and, when configured, crop trailing black edges.
// A panorama whose image is entirely black yields ErrNoPanoramaData.
func (d *Downloader) Download(ctx context.Context, panoramaID string, settings streetview.Settings) (*image.RGBA, error) {
	if err := streetview.ValidatePanoramaID(panoramaID); err != nil {
		return nil, err
	}
	if settings.IsZero() {
		settings = streetview.DefaultSettings()
	}
	total := settings.Tiles()
	d.emitProgress(Progress{State: StatePending, Total: total})

	grid, err := d.DownloadTiles(ctx, panoramaID, settings)
	if err != nil {
		return nil, d.fail(err, total)
	}

	d.emitProgress(Progress{State: StateAssembling, Downloaded: total, Total: total, Percent: 100})
	img, err := AssembleTiles(ctx, grid)
	if err != nil {
		return nil, d.fail(err, total)
	}

	if d.cropBlackEdges {
		d.emitProgress(Progress{State: StateCropping, Downloaded: total, Total: total, Percent: 100})
		img, err = CropBlackEdges(ctx, img)
		if err != nil {
			return nil, d.fail(err, total)
		}
		if img.Bounds().Empty() {
			return nil, d.fail(ErrNoPanoramaData, total)
		}
	}

	d.emitProgress(Progress{State: StateDone, Downloaded: total, Total: total, Percent: 100})
	return img, nil
}

// DownloadTiles fetches every tile in the region and returns the raw grid.
// Tiles are split into batches downloaded concurrently; within a batch tiles
// are fetched one at a time. A single-tile region, or Batches set to one,
// downloads serially without cancellation checks.
func (d *Downloader) DownloadTiles(ctx context.Context, panoramaID string, settings streetview.Settings) (TileGrid, error) {
	if err := streetview.ValidatePanoramaID(panoramaID); err != nil {
		return nil, err
	}
	if settings.IsZero() {
		settings = streetview.DefaultSettings()
	}

	coords := enumerateCoordinates(settings)
	total := len(coords)
	grid := newTileGrid(settings.Width(), settings.Height())
	topLeft := settings.TopLeft()
	zoom := settings.Zoom()

	var downloaded int64
	store := func(coord streetview.Coordinate, data []byte) {
		grid[coord.Y-topLeft.Y][coord.X-topLeft.X] = data
		count := int(atomic.AddInt64(&downloaded, 1))
		d.emitProgress(Progress{
			State:      StateFetching,
			Downloaded: count,
			Total:      total,
			Percent:    count * 100 / total,
		})
	}

	if total == 1 || d.batches == 1 {
		log.Printf("[Downloader] downloading %d tiles serially (zoom %d)", total, zoom)
		for _, coord := range coords {
			data, err := d.fetchTile(context.Background(), panoramaID, coord, zoom)
			if err != nil {
				return nil, err
			}
			store(coord, data)
		}
		return grid, nil
	}

	log.Printf("[Downloader] downloading %d tiles in %d batches (zoom %d)", total, d.batches, zoom)
	group, gctx := errgroup.WithContext(ctx)
	for _, batch := range splitBatches(coords, d.batches) {
		if len(batch) == 0 {
			continue
		}
		batch := batch
		group.Go(func() error {
			for _, coord := range batch {
				if err := gctx.Err(); err != nil {
					return err
				}
				data, err := d.fetchTile(gctx, panoramaID, coord, zoom)
				if err != nil {
					return err
				}
				store(coord, data)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return grid, nil
}

// fetchTile returns a tile from the cache when present, fetching and caching
// it otherwise.
func (d *Downloader) fetchTile(ctx context.Context, panoramaID string, coord streetview.Coordinate, zoom int) ([]byte, error) {
	if d.cache != nil {
		if data, ok := d.cache.Get(panoramaID, zoom, coord.X, coord.Y); ok {
			return data, nil
		}
	}

	data, err := d.client.FetchTile(ctx, panoramaID, coord, zoom)
	if err != nil {
		return nil, err
	}
	if d.cache != nil {
		d.cache.Set(panoramaID, zoom, coord.X, coord.Y, data)
	}
	return data, nil
}

func (d *Downloader) emitProgress(p Progress) {
	if d.onProgress != nil {
		d.onProgress(p)
	}
}

// fail emits the terminal state for err and passes it through.
func (d *Downloader) fail(err error, total int) error {
	state := StateFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		state = StateCancelled
	}
	d.emitProgress(Progress{State: state, Total: total})
	return err
}
