package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/zarlcorp/zpersona/internal/mail"
)

func (a *App) inboxCmd() *cobra.Command {
	var watch, remove bool

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Open a live disposable mailbox",
		Long: `Create a mailbox on mail.tm and print its address and password. With
--watch, new messages are streamed until interrupted, with any
verification codes highlighted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c := a.mailClient()

			s, err := c.Open(ctx)
			if err != nil {
				return err
			}
			labelColor.Fprint(a.Stdout, "address:  ")
			fmt.Fprintln(a.Stdout, s.Account.Address)
			labelColor.Fprint(a.Stdout, "password: ")
			fmt.Fprintln(a.Stdout, s.Password)

			if !watch {
				return nil
			}
			if remove {
				defer func() {
					if err := c.DeleteAccount(context.WithoutCancel(ctx), s); err != nil {
						a.log.Warn("delete mailbox", "err", err)
					}
				}()
			}
			return a.watchInbox(ctx, c, s)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "stream new messages until interrupted")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the mailbox when --watch stops")
	return cmd
}

func (a *App) watchInbox(ctx context.Context, c *mail.Client, s *mail.Session) error {
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
	)

	show := func(m mail.Message) {
		mu.Lock()
		defer mu.Unlock()
		if seen[m.ID] {
			return
		}
		seen[m.ID] = true

		full, err := c.Message(ctx, s, m.ID)
		if err != nil {
			a.log.Warn("fetch message", "id", m.ID, "err", err)
			full = m
		}
		printMessage(a.Stdout, full)
	}

	msgs, err := c.Messages(ctx, s)
	if err != nil {
		return err
	}
	// oldest first so the newest ends up at the bottom
	for i := len(msgs) - 1; i >= 0; i-- {
		show(msgs[i])
	}

	dimColor.Fprintln(a.Stderr, "waiting for messages, ctrl-c to stop")
	return c.Subscribe(ctx, s, show)
}
