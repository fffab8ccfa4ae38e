package main

import (
	"context"
	"fmt"

	"github.com/NinoBlz/dzx/internal/shared"
	"github.com/NinoBlz/dzx/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist conversion.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if r.deezer == nil {
		return fmt.Errorf("%w: Deezer service not initialized", shared.ErrServiceUnavailable)
	}
	if r.engine == nil {
		return fmt.Errorf("%w: conversion engine not initialized", shared.ErrServiceUnavailable)
	}

	if r.config.Credentials.Spotify.AccessToken == "" {
		return fmt.Errorf("%w: run 'dzx spotify auth' first", shared.ErrNotAuthenticated)
	}
	if r.config.Credentials.Deezer.AccessToken == "" {
		return fmt.Errorf("%w: run 'dzx deezer auth' first", shared.ErrNotAuthenticated)
	}

	if err := r.spotify.Authenticate(ctx, r.config.Credentials.Spotify.Map()); err != nil {
		return err
	}
	if err := r.deezer.Authenticate(ctx, r.config.Credentials.Deezer.Map()); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./dzx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, log.DebugLevel)
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.spotify, r.deezer, r.engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
