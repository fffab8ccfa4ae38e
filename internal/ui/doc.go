// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist conversion:
//  1. [DirectionView] : Pick Spotify → Deezer or Deezer → Spotify
//  2. [PlaylistListView] : Browse and select a source playlist
//  3. [ConfirmView] : Confirm the conversion
//  4. [ConvertView] : Monitor real-time progress updates
//  5. [ResultView] : Display resolved counts and unmatched tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the ConversionEngine, providing non-blocking status reporting during conversions.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
