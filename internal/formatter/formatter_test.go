package formatter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tracklist/internal/models"
	th "github.com/desertthunder/tracklist/internal/testing"
)

func testExport() *models.PlaylistExport {
	added := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &models.PlaylistExport{
		ID:    "test123",
		Name:  "Road Trip",
		Owner: "user1",
		Tracks: []models.PlaylistEntry{
			{TrackID: "track1", Title: "Yesterday", Artist: "The Beatles", Rating: 8, AddedAt: added},
			{TrackID: "track2", Title: "Bohemian Rhapsody", Artist: "Queen", Rating: 10, AddedAt: added.Add(time.Minute)},
		},
		ExportedAt: added.Add(time.Hour),
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Position,Title,Artist,Rating,Added") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Yesterday,The Beatles,8,2024-05-01T12:00:00Z") {
			t.Errorf("CSV missing first track, got: %s", output)
		}
		if !strings.Contains(output, "2,Bohemian Rhapsody,Queen,10,") {
			t.Errorf("CSV missing second track, got: %s", output)
		}
	})

	t.Run("ExportToCSV Quotes Commas", func(t *testing.T) {
		export := testExport()
		export.Tracks[0].Title = "Hello, Goodbye"

		data, err := ExportToCSV(export)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if !strings.Contains(string(data), `"Hello, Goodbye"`) {
			t.Errorf("expected quoted title, got: %s", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testExport(), "cover.jpg")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Road Trip",
			"![Cover](cover.jpg)",
			"**Tracks**: 2",
			"**Average rating**: 9.0/10",
			"1. The Beatles - Yesterday (8/10)",
			"2. Queen - Bohemian Rhapsody (10/10)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Empty", func(t *testing.T) {
		export := testExport()
		export.Tracks = nil

		data, err := ExportToMarkdown(export, "")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)
		if strings.Contains(output, "Cover") || strings.Contains(output, "Average rating") {
			t.Errorf("unexpected cover or average in empty export: %s", output)
		}
		if !strings.Contains(output, "_This playlist is empty._") {
			t.Errorf("expected empty marker, got: %s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Playlist: Road Trip") {
			t.Errorf("Text missing playlist name")
		}
		if !strings.Contains(output, "1. The Beatles - Yesterday [8]") {
			t.Errorf("Text missing track listing, got: %s", output)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(testExport())
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, `"track_count": 2`) || !strings.Contains(output, `"average_rating": 9`) {
			t.Errorf("metadata missing summary, got: %s", output)
		}
		if strings.Contains(output, "Yesterday") {
			t.Errorf("metadata should not include tracks")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatJSON},
		{in: "json", want: FormatJSON},
		{in: "csv", want: FormatCSV},
		{in: "md", want: FormatMarkdown},
		{in: "markdown", want: FormatMarkdown},
		{in: "text", want: FormatText},
		{in: "txt", want: FormatText},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBasename(t *testing.T) {
	export := testExport()
	if got := Basename(export); got != "road-trip" {
		t.Errorf("expected road-trip, got %q", got)
	}

	export.Name = "!!!"
	if got := Basename(export); got != "test123" {
		t.Errorf("expected ID fallback, got %q", got)
	}
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			t.Chdir(t.TempDir())

			result, err := WriteCSVExport(testExport(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.TracksFile != "road-trip_tracks.csv" {
				t.Errorf("Expected tracks file 'road-trip_tracks.csv', got '%s'", result.TracksFile)
			}
			if result.MetadataFile != "road-trip_metadata.json" {
				t.Errorf("Expected metadata file 'road-trip_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.TracksFile)
			th.AssertFileExists(t, result.MetadataFile)

			if content := th.MustReadFile(t, result.MetadataFile); !strings.Contains(content, "Road Trip") {
				t.Errorf("Metadata JSON missing name")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom_export")

			result, err := WriteCSVExport(testExport(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.TracksFile != base+"_tracks.csv" {
				t.Errorf("unexpected tracks file %q", result.TracksFile)
			}
			th.AssertFileExists(t, result.TracksFile)
		})

		t.Run("UnwritableDirectory", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "missing", "dir", "export")
			if _, err := WriteCSVExport(testExport(), base); err == nil {
				t.Error("expected error for missing directory")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithCover", func(t *testing.T) {
			client := &http.Client{Transport: th.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("jpegbytes")),
			}, nil)}
			dir := filepath.Join(t.TempDir(), "road-trip")

			result, err := WriteMarkdownExport(context.Background(), testExport(), MarkdownOpts{
				OutputDir: dir,
				ImageURL:  "https://lastfm.example/cover.jpg",
				Client:    client,
			})
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.CoverImage != filepath.Join(dir, "cover.jpg") {
				t.Errorf("unexpected cover path %q", result.CoverImage)
			}
			if len(result.Files) != 2 {
				t.Errorf("expected cover and README, got %v", result.Files)
			}
			if got := th.MustReadFile(t, result.CoverImage); got != "jpegbytes" {
				t.Errorf("unexpected cover contents %q", got)
			}
			if readme := th.MustReadFile(t, filepath.Join(dir, "README.md")); !strings.Contains(readme, "![Cover](cover.jpg)") {
				t.Errorf("README does not reference cover")
			}
		})

		t.Run("CoverFailureIsWarning", func(t *testing.T) {
			client := &http.Client{Transport: th.NewMockRoundTripper(nil, errors.New("network down"))}
			dir := filepath.Join(t.TempDir(), "road-trip")

			result, err := WriteMarkdownExport(context.Background(), testExport(), MarkdownOpts{
				OutputDir: dir,
				ImageURL:  "https://lastfm.example/cover.jpg",
				Client:    client,
			})
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != "" {
				t.Errorf("expected no cover, got %q", result.CoverImage)
			}
			if len(result.Warnings) != 1 {
				t.Errorf("expected one warning, got %v", result.Warnings)
			}
			th.AssertFileExists(t, filepath.Join(dir, "README.md"))
		})

		t.Run("WithDefaultDirectory", func(t *testing.T) {
			t.Chdir(t.TempDir())

			result, err := WriteMarkdownExport(context.Background(), testExport(), MarkdownOpts{})
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.Directory != "road-trip" {
				t.Errorf("Expected directory 'road-trip', got '%s'", result.Directory)
			}
			th.AssertFileExists(t, filepath.Join("road-trip", "README.md"))
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		t.Chdir(t.TempDir())

		path, err := WriteTextExport(testExport(), "")
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if path != "road-trip_tracks.txt" {
			t.Errorf("Expected 'road-trip_tracks.txt', got '%s'", path)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")

		got, err := WriteJSONExport(testExport(), path)
		if err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}
		content := th.MustReadFile(t, got)
		if !strings.Contains(content, `"title": "Yesterday"`) || !strings.Contains(content, `"rating": 10`) {
			t.Errorf("JSON missing tracks, got: %s", content)
		}
	})

	t.Run("WriteBulkExportManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export_manifest.json")

		if err := WriteBulkExportManifest(map[string]int{"exported": 2}, FormatCSV, path); err != nil {
			t.Fatalf("WriteBulkExportManifest failed: %v", err)
		}
		content := th.MustReadFile(t, path)
		if !strings.Contains(content, `"format": "csv"`) || !strings.Contains(content, `"exported": 2`) {
			t.Errorf("manifest missing fields, got: %s", content)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		resp    *http.Response
		err     error
		wantErr bool
	}{
		{name: "EmptyURL", url: "", wantErr: true},
		{name: "TransportError", url: "https://x.example/a.jpg", err: errors.New("boom"), wantErr: true},
		{
			name:    "NotFound",
			url:     "https://x.example/a.jpg",
			resp:    &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(""))},
			wantErr: true,
		},
		{
			name: "OK",
			url:  "https://x.example/a.jpg",
			resp: &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("img"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &http.Client{Transport: th.NewMockRoundTripper(tt.resp, tt.err)}
			data, err := DownloadImage(context.Background(), client, tt.url)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != "img" {
				t.Errorf("unexpected data %q", data)
			}
		})
	}
}
