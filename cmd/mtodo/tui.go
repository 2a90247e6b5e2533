package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mtodo/mtodo/internal/config"
	"github.com/mtodo/mtodo/internal/debug"
	"github.com/mtodo/mtodo/internal/lockfile"
	"github.com/mtodo/mtodo/internal/tui"
	"github.com/mtodo/mtodo/internal/widget"
)

// runTUI opens the full-screen todo window.
func (a *app) runTUI(cmd *cobra.Command) error {
	if !isTerminal() {
		return errors.New("the todo window needs a terminal; use a subcommand (see --help) for scripting")
	}

	dataDir := config.DataDir()
	lock, err := lockfile.Acquire(filepath.Join(dataDir, "mtodo.lock"), true, 0)
	if err != nil {
		if errors.Is(err, lockfile.ErrLockBusy) {
			return fmt.Errorf("mtodo is already open in another terminal (%s)", dataDir)
		}
		return err
	}
	defer lock.Release()

	// stderr shares the screen with the UI, so diagnostics and exporter
	// output go to files in the data dir.
	if err := debug.SetLogFile(filepath.Join(dataDir, "debug.log")); err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	// #nosec G304 - path in the data directory
	otelOut, err := os.OpenFile(filepath.Join(dataDir, "telemetry.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open telemetry log: %w", err)
	}
	defer func() { _ = otelOut.Close() }()
	a.telemetryOut = otelOut

	if err := a.openStore(); err != nil {
		return err
	}

	theme, err := widget.LoadTheme(config.StyleFile(), config.IsDarkStyle())
	if err != nil {
		return err
	}

	var watcher *tui.Watcher
	if path := a.store.Path(); path != ":memory:" {
		watcher, err = tui.NewWatcher(path, tui.DefaultDebounce)
		if err != nil {
			debug.Logf("external change refresh disabled: %v", err)
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	height, width := config.WindowSize()
	model := tui.New(a.ctx, tui.Options{
		Actions: a.actions,
		Theme:   theme,
		Icon:    config.Icon(),
		Width:   width,
		Height:  height,
		Watcher: watcher,
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(a.ctx),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
