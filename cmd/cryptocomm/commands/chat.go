package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cryptocomm/internal/domain"
	"cryptocomm/internal/services/conversation"
)

func chatCmd() *cobra.Command {
	var reply string
	cmd := &cobra.Command{
		Use:   "chat <address|username>",
		Short: "Show the conversation with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := requireConnected(ctx); err != nil {
				return err
			}
			f, err := resolveCounterpart(ctx, args[0])
			if err != nil {
				return err
			}

			view := appCtx.Conversation
			if err := view.Open(ctx, f.Address); err != nil {
				return fmt.Errorf("load conversation: %w (retry with the same command)", err)
			}
			if reply != "" {
				if _, err := view.Send(ctx, reply, domain.KindText); err != nil {
					return err
				}
			}

			snap := view.Snapshot()
			if snap.State == conversation.Error {
				return fmt.Errorf("reload conversation: %w (retry with the same command)", snap.Err)
			}
			entries := view.Entries(ctx)
			fmt.Printf("Conversation with %s\n", displayName(f))
			if len(entries) == 0 {
				fmt.Println("No messages yet")
				return nil
			}
			for _, e := range entries {
				printEntry(e, f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reply, "reply", "", "send this message before printing the conversation")
	return cmd
}

func printEntry(e conversation.Entry, counterpart domain.Friend) {
	who := string(counterpart.Username)
	if who == "" {
		who = domain.ShortAddress(counterpart.Address)
	}
	if e.Mine {
		who = "me"
	}
	ts := time.Unix(e.Timestamp, 0).Format(time.DateTime)

	var body string
	switch e.Kind {
	case domain.KindFile:
		meta := "unknown"
		if e.Blob != nil && e.Blob.Known {
			parts := []string{}
			if e.Blob.MediaType != "" {
				parts = append(parts, e.Blob.MediaType)
			}
			if e.Blob.Size >= 0 {
				parts = append(parts, fmt.Sprintf("%d bytes", e.Blob.Size))
			}
			meta = strings.Join(parts, ", ")
		}
		body = fmt.Sprintf("[file] %s (%s)", e.Content, meta)
	default:
		body = e.Content
	}
	fmt.Printf("#%-5d %s  %-12s %s\n", e.Sequence, ts, who+":", body)
}
