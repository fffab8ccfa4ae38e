// package formatter provides functions to export playlists and conversion
// reports to various formats (CSV, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/NinoBlz/dzx/internal/services"
	"github.com/NinoBlz/dzx/internal/shared"
	"github.com/NinoBlz/dzx/internal/tasks"
)

// TracksToCSV converts a track list to CSV format with columns: ID, Title, Artist, Album, Duration
func TracksToCSV(tracks []services.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(track.Duration),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToText converts a track list to plain text format
func TracksToText(name string, tracks []services.Track) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", name))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(tracks)))

	for i, track := range tracks {
		duration := ""
		if track.Duration > 0 {
			duration = fmt.Sprintf(" [%s]", shared.FormatDuration(track.Duration))
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, track.Artist, track.Title, duration))
	}

	return buf.Bytes()
}

// PlaylistsToText renders a playlist listing as numbered plain text.
func PlaylistsToText(playlists []services.Playlist) []byte {
	var buf bytes.Buffer

	for i, pl := range playlists {
		buf.WriteString(fmt.Sprintf("%d. %s (%d tracks, %s) [%s]\n",
			i+1, pl.Name, pl.TrackCount, shared.VisibilityString(pl.Public), pl.ID))
	}

	return buf.Bytes()
}

// ReportToText renders a conversion report as plain text, listing every
// unresolved track so the user can add them by hand.
func ReportToText(report *tasks.ConversionReport) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Conversion: %s → %s\n", report.SourceName, report.DestName))
	buf.WriteString(fmt.Sprintf("Status: %s\n", report.Status))

	if report.PlaylistID != "" {
		buf.WriteString(fmt.Sprintf("Playlist: %s (ID: %s)\n", report.PlaylistName, report.PlaylistID))
	}

	buf.WriteString(fmt.Sprintf("Tracks: %d/%d resolved (%.0f%%)\n",
		report.ResolvedCount, report.TotalTracks, report.MatchPercentage()))

	if report.FallbackCount > 0 {
		buf.WriteString(fmt.Sprintf("Fallback matches: %d\n", report.FallbackCount))
	}

	if len(report.Unresolved) > 0 {
		buf.WriteString("\nNot found:\n")
		for _, name := range report.Unresolved {
			buf.WriteString(fmt.Sprintf("  ✗ %s\n", name))
		}
	}

	return buf.Bytes()
}

// ReportToJSON generates a JSON representation of a conversion report.
func ReportToJSON(report *tasks.ConversionReport) ([]byte, error) {
	out := struct {
		Status        string   `json:"status"`
		Source        string   `json:"source"`
		Destination   string   `json:"destination"`
		PlaylistID    string   `json:"playlist_id,omitempty"`
		PlaylistName  string   `json:"playlist_name,omitempty"`
		TotalTracks   int      `json:"total_tracks"`
		ResolvedCount int      `json:"resolved_count"`
		FallbackCount int      `json:"fallback_count"`
		Unresolved    []string `json:"unresolved,omitempty"`
	}{
		Status:        report.Status.String(),
		Source:        report.SourceName,
		Destination:   report.DestName,
		PlaylistID:    report.PlaylistID,
		PlaylistName:  report.PlaylistName,
		TotalTracks:   report.TotalTracks,
		ResolvedCount: report.ResolvedCount,
		FallbackCount: report.FallbackCount,
		Unresolved:    report.Unresolved,
	}

	return shared.MarshalJSON(out, true)
}

// WriteTracksCSV exports a playlist's tracks to a CSV file.
//
// Defaults to {playlistID}_tracks.csv as the filename.
func WriteTracksCSV(playlistID string, tracks []services.Track, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_tracks.csv", playlistID)
	}

	csvData, err := TracksToCSV(tracks)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}
