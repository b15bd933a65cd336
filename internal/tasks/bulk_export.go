package tasks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/tracklist/internal/formatter"
	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/shared"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format      formatter.Format // Export format: json, csv, markdown, txt
	OutputDir   string           // Base output directory (default: tracklist_export_{epoch})
	PlaylistIDs []string         // Restrict the export to these playlists (default: all of the owner's)
	NumWorkers  int              // Concurrent workers (default: 5)
	RateLimit   float64          // Cover lookups per second (default: 5)
	Covers      bool             // Look up album art for Markdown exports
	Client      *http.Client     // Client for cover downloads
}

// BulkExportResult summarises a bulk export run.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	Files        []string `json:"files"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// PlaylistExportJob is a fetched playlist waiting to be written.
type PlaylistExportJob struct {
	PlaylistID string
	Basename   string
	Export     *models.PlaylistExport
}

// BulkExport exports the owner's playlists concurrently with progress tracking.
//
// Playlists are fetched one at a time and written by a pool of workers. A playlist that fails
// is recorded in the result and does not stop the others. Cover lookups go through a rate limiter.
func (e *PlaylistEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ownerID string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.playlists == nil {
		return nil, fmt.Errorf("%w: playlist store not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("tracklist_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	ids := opts.PlaylistIDs
	if len(ids) == 0 {
		e.sendProgress(prog, fetchingPlaylistsUpdate())
		owned, err := e.playlists.ListPlaylists(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list playlists: %w", err)
		}
		for _, p := range owned {
			ids = append(ids, p.ID())
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan PlaylistExportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, limiter, opts)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)

		used := make(map[string]bool)
		for i, playlistID := range ids {
			if ctx.Err() != nil {
				return
			}

			export, err := e.playlists.ExportPlaylist(ctx, playlistID)
			if err != nil {
				results <- PlaylistExportResult{
					PlaylistID:   playlistID,
					PlaylistName: fmt.Sprintf("Unknown (%s)", playlistID),
					Error:        fmt.Errorf("failed to fetch playlist: %w", err),
				}
				continue
			}

			if owner := export.Owner; ownerID != "" && owner != ownerID {
				results <- PlaylistExportResult{
					PlaylistID:   playlistID,
					PlaylistName: fmt.Sprintf("Unknown (%s)", playlistID),
					Error:        fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID),
				}
				continue
			}

			base := formatter.Basename(export)
			if used[base] {
				base = base + "-" + export.ID
			}
			used[base] = true

			jobs <- PlaylistExportJob{PlaylistID: playlistID, Basename: base, Export: export}
			e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), export.Name))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorMessage = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (e *PlaylistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	limiter *rate.Limiter,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- e.exportSinglePlaylist(ctx, job, limiter, opts)
	}
}

// exportSinglePlaylist exports a single playlist to the appropriate format.
func (e *PlaylistEngine) exportSinglePlaylist(
	ctx context.Context,
	j PlaylistExportJob,
	limiter *rate.Limiter,
	opts BulkExportOpts,
) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   j.PlaylistID,
		PlaylistName: j.Export.Name,
		Files:        []string{},
	}
	base := filepath.Join(opts.OutputDir, j.Basename)

	switch opts.Format {
	case formatter.FormatCSV:
		csvRes, err := formatter.WriteCSVExport(j.Export, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.TracksFile, csvRes.MetadataFile}

	case formatter.FormatMarkdown:
		var imageURL string
		if opts.Covers {
			imageURL = e.coverImage(ctx, limiter, j.Export)
		}

		mdRes, err := formatter.WriteMarkdownExport(ctx, j.Export, formatter.MarkdownOpts{
			OutputDir: base,
			ImageURL:  imageURL,
			Client:    opts.Client,
		})
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		for _, w := range mdRes.Warnings {
			e.logger.Warn("cover image skipped", "playlist", j.Export.Name, "error", w)
		}
		result.Files = mdRes.Files

	case formatter.FormatText:
		path, err := formatter.WriteTextExport(j.Export, base+"_tracks.txt")
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	default:
		path, err := formatter.WriteJSONExport(j.Export, base+".json")
		if err != nil {
			result.Error = err
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}

// coverImage returns the album art of the playlist's first track, or "" when none is found.
func (e *PlaylistEngine) coverImage(ctx context.Context, limiter *rate.Limiter, export *models.PlaylistExport) string {
	if e.metadata == nil || len(export.Tracks) == 0 {
		return ""
	}
	if err := limiter.Wait(ctx); err != nil {
		return ""
	}

	first := export.Tracks[0]
	info, err := e.metadata.TrackInfo(ctx, first.Title, first.Artist)
	if err != nil {
		e.logger.Debug("no cover for playlist", "playlist", export.Name, "error", err)
		return ""
	}
	return info.AlbumArtURL
}
