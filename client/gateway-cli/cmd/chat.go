package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newChatCmd(opts *options) *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the agents through the gateway",
	}
	chatCmd.AddCommand(newChatSendCmd(opts))
	chatCmd.AddCommand(newChatHistoryCmd(opts))
	chatCmd.AddCommand(newChatClearCmd(opts))
	return chatCmd
}

func newChatSendCmd(opts *options) *cobra.Command {
	var (
		sessionID string
		agentID   string
		language  string
	)
	sendCmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send a chat message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				sessionID = uuid.NewString()
				fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", sessionID)
			}
			req := chatRequest{
				Message:   args[0],
				SessionID: sessionID,
				Language:  language,
				Agent:     agentID,
			}
			body, err := json.Marshal(req)
			if err != nil {
				return fmt.Errorf("error creating JSON payload: %w", err)
			}
			reply, err := opts.client().PostJSON(cmd.Context(), opts.url("/api/chat"), body)
			if err != nil {
				return err
			}
			return printReply(cmd.OutOrStdout(), reply)
		},
	}
	sendCmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id (generated when empty)")
	sendCmd.Flags().StringVarP(&agentID, "agent", "a", "", "target agent id")
	sendCmd.Flags().StringVarP(&language, "language", "l", "", "language code")
	return sendCmd
}

func newChatHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history [session-id]",
		Short: "Show the history of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := opts.client().Get(cmd.Context(), opts.url("/api/chat/history/"+url.PathEscape(args[0])))
			if err != nil {
				return err
			}
			return printReply(cmd.OutOrStdout(), reply)
		},
	}
}

func newChatClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [session-id]",
		Short: "Clear the history of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := opts.client().Delete(cmd.Context(), opts.url("/api/chat/history/"+url.PathEscape(args[0])))
			if err != nil {
				return err
			}
			return printReply(cmd.OutOrStdout(), reply)
		},
	}
}
