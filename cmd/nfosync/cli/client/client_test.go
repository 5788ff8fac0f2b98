package client

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mwantia/nfosync/pkg/db/models"
	"github.com/mwantia/nfosync/pkg/library"
	"github.com/mwantia/nfosync/pkg/scanner"
)

func TestEncodeFormats(t *testing.T) {
	report := &scanner.Report{
		ID:        "scan-1",
		State:     scanner.StateCompleted,
		Processed: 2,
		Errors: []scanner.ItemError{
			{Code: "B02", Path: "/lib/B02.nfo", Err: errors.New("broken")},
		},
	}

	tests := []struct {
		format   string
		contains []string
	}{
		{"yaml", []string{"id: scan-1", "processed: 2", "error: broken"}},
		{"json", []string{`"id": "scan-1"`, `"processed": 2`, `"error": "broken"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encode(&buf, tt.format, report); err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, out)
				}
			}
		})
	}
}

func TestEncodeItemKeysMatchAcrossFormats(t *testing.T) {
	full := &library.FullMetadata{
		Cached: &models.MediaItem{
			Code:      "A01",
			Title:     "Alpha",
			VideoPath: "/lib/A01.mp4",
			VideoType: "mp4",
			HasVideo:  true,
			Genres:    []models.Genre{{ID: 1, Name: "Drama"}},
		},
	}

	tests := []struct {
		format   string
		contains []string
	}{
		{"yaml", []string{"video_type: mp4", "has_video: true", "sidecar_mod_time:", "created_at:", "name: Drama"}},
		{"json", []string{`"video_type": "mp4"`, `"has_video": true`, `"sidecar_mod_time":`, `"created_at":`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encode(&buf, tt.format, full); err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, out)
				}
			}
			if strings.Contains(out, "videotype") || strings.Contains(out, "createdat") {
				t.Errorf("Expected snake_case keys only, got:\n%s", out)
			}
		})
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := encode(&buf, "xml", struct{}{}); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestDescribeLookupError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "unknown code",
			err:      &library.NotFoundError{Code: "Z99", Err: library.ErrItemNotFound},
			expected: "item 'Z99' not found",
		},
		{
			name:     "sidecar gone",
			err:      &library.NotFoundError{Code: "A01", Path: "/lib/A01.nfo", Err: library.ErrSourceMissing},
			expected: "item 'A01' not found: sidecar '/lib/A01.nfo' no longer exists",
		},
		{
			name:     "other",
			err:      errors.New("disk on fire"),
			expected: "disk on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := "Z99"
			var nerr *library.NotFoundError
			if errors.As(tt.err, &nerr) {
				code = nerr.Code
			}
			if got := describeLookupError(code, tt.err).Error(); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}
