package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/realtime"
)

// Run launches the interactive board and blocks until the user quits.
// When bridgeOpts is non-nil a realtime bridge runs for the session and
// reports its notices to the status bar.
func Run(b *board.Board, opts Options, bridgeOpts []realtime.Option) error {
	m := NewModel(b, opts)
	defer m.Close()

	if bridgeOpts != nil {
		bridgeOpts = append(bridgeOpts, realtime.WithNotify(m.Notify))
		if opts.Scheduler != nil {
			bridgeOpts = append(bridgeOpts, realtime.WithScheduler(opts.Scheduler))
		}
		bridge := realtime.New(b, bridgeOpts...)
		if err := bridge.Start(); err != nil {
			logger.Warn("Realtime bridge unavailable", logger.F("error", err))
		} else {
			defer bridge.Stop()
		}
	}

	logger.Info("Launching TUI")
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", logger.F("error", err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	logger.Info("TUI exited normally")
	return nil
}
