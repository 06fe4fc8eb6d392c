package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vovakirdan/roomchat-go/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := newClient(settings, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout() }()

	model := tui.New(client, settings.Name, settings.Room)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	tui.Bridge(client, p.Send)

	logger.Info("starting interactive client", zap.String("server", settings.Server))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
