package ui

import (
	"fmt"

	"github.com/NinoBlz/dzx/internal/services"
	"github.com/NinoBlz/dzx/internal/shared"
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = directionItem{}
	_ list.Item = playlistItem{}
)

// directionItem is a conversion direction choice on the start screen.
type directionItem struct {
	label  string
	source services.Service
	dest   services.Service
}

func (i directionItem) FilterValue() string { return i.label }
func (i directionItem) Title() string       { return i.label }
func (i directionItem) Description() string {
	return fmt.Sprintf("Convert a %s playlist to %s", i.source.Name(), i.dest.Name())
}

// playlistItem wraps [services.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist services.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks • %s", i.playlist.TrackCount, shared.VisibilityString(i.playlist.Public))
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}
