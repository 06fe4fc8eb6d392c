package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vovakirdan/roomchat-go/roomchat"
)

func runLineCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := newClient(settings, logger)
	if err != nil {
		return err
	}
	return runLine(ctx, client, settings.Name, settings.Room, cmd.InOrStdin(), cmd.OutOrStdout())
}

// printer serialises output from the client goroutines and the input loop.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printer) println(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func runLine(ctx context.Context, client *roomchat.Client, name, room string, in io.Reader, out io.Writer) error {
	p := &printer{out: out}

	onFrame := func(f roomchat.Frame) {
		switch f.Kind {
		case roomchat.KindImage:
			p.println("%s sent an image: %s", f.Sender, f.URL)
		case roomchat.KindChat:
			p.println("%s", f.Raw)
		default:
			p.println("%s", f.Text)
		}
	}
	client.OnChat(onFrame)
	client.OnPrivate(onFrame)
	client.OnSystem(onFrame)
	client.OnImage(onFrame)
	client.OnNotice(func(n roomchat.Notice) {
		if n.IsError {
			p.println("! %s", n.Text)
			return
		}
		p.println("* %s", n.Text)
	})

	if err := client.Connect(ctx, name, room); err != nil {
		if roomchat.IsValidationError(err) {
			return fmt.Errorf("connect: %w", err)
		}
		// The client keeps retrying; the notice is already printed.
		logger.Debug("first connection attempt failed", zap.Error(err))
	}
	defer func() { _ = client.Logout() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go readLines(ctx, in, lines)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := handleLine(ctx, client, p, line)
			var ce *roomchat.ChatError
			switch {
			case err == nil:
			case roomchat.IsValidationError(err) && errors.As(err, &ce):
				p.println("! %s", ce.Message)
			default:
				logger.Debug("command failed", zap.Error(err))
			}
			if quit {
				return nil
			}
		}
	}
}

func handleLine(ctx context.Context, client *roomchat.Client, p *printer, line string) (bool, error) {
	text := strings.TrimSpace(line)
	if text == "" {
		return false, nil
	}

	cmd, rest, _ := strings.Cut(text, " ")
	switch cmd {
	case "/quit":
		return true, nil
	case "/who":
		self := ""
		if s, ok := client.Session(); ok {
			self = s.DisplayName
		}
		r := client.Roster()
		p.println("Online Users (%d): %s", r.Len(), strings.Join(r.Render(self), ", "))
		return false, nil
	case "/msg":
		to, body, _ := strings.Cut(strings.TrimSpace(rest), " ")
		return false, client.SendPrivate(ctx, to, body)
	case "/img":
		path := strings.TrimSpace(rest)
		f, err := os.Open(path)
		if err != nil {
			return false, roomchat.NewError(roomchat.ErrorValidation, err.Error())
		}
		defer f.Close()
		return false, client.SendImage(ctx, filepath.Base(path), f)
	}
	return false, client.SendChat(ctx, text)
}

// readLines stops at EOF or, once the next line is read, when ctx is done.
func readLines(ctx context.Context, in io.Reader, dst chan<- string) {
	defer close(dst)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case dst <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}
