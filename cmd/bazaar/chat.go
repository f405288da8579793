package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bazaar/internal/api"
	"bazaar/internal/config"
	"bazaar/internal/domain"
	applog "bazaar/internal/log"
	"bazaar/internal/poll"
	"bazaar/internal/services"
)

func chatCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "chat <conversation-id>",
		Short: "Follow a conversation in the terminal and send lines as messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("BAZAAR_TOKEN")
			}
			if token == "" {
				return errors.New("a bearer token is required (--token or BAZAAR_TOKEN)")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			// keep the terminal for the conversation
			applog.Setup(os.Stderr, "warn")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			client := api.New(cfg.BackendURL, cfg.BackendTimeout)
			return runChat(ctx, services.Source(client.Conversations, token), args[0], cfg, os.Stdin, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "backend bearer token")
	return cmd
}

func runChat(ctx context.Context, src poll.Source, id string, cfg config.Config, in io.Reader, out io.Writer) error {
	th, err := poll.Open(ctx, src, id, cfg.PollInterval)
	if err != nil {
		return fmt.Errorf("open conversation: %s", api.UserMessage(err, err.Error()))
	}
	defer th.Close()

	updates, unsubscribe := th.Subscribe()
	defer unsubscribe()

	seen := map[string]bool{}
	printNew := func() {
		for _, m := range th.Snapshot().Messages {
			if !seen[m.ID] {
				seen[m.ID] = true
				printMessage(out, m)
			}
		}
	}
	printNew()

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go readLines(in, lines, done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-th.Done():
			return nil
		case <-updates:
			printNew()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if _, err := th.Send(ctx, line); err != nil {
				fmt.Fprintf(out, "! %s\n", sendError(err))
			}
		}
	}
}

// readLines forwards input lines until in is exhausted or done is closed.
func readLines(in io.Reader, lines chan<- string, done <-chan struct{}) {
	defer close(lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-done:
			return
		}
	}
}

func printMessage(out io.Writer, m domain.Message) {
	who := m.SenderName
	if who == "" {
		who = m.SenderID
	}
	fmt.Fprintf(out, "[%s] %s: %s\n", m.SentAt.Local().Format("15:04"), who, m.Content)
}

func sendError(err error) string {
	switch {
	case errors.Is(err, poll.ErrEmptyMessage):
		return "message is empty"
	case errors.Is(err, poll.ErrMessageTooLong):
		return "message is too long"
	}
	return api.UserMessage(err, "message not sent")
}
