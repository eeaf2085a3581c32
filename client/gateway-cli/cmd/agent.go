package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newAgentCmd(opts *options) *cobra.Command {
	agentCmd := &cobra.Command{
		Use:     "agents",
		Aliases: []string{"agent"},
		Short:   "Interact with the agent registry and agents",
	}
	agentCmd.AddCommand(newAgentListCmd(opts))
	agentCmd.AddCommand(newAgentStatusCmd(opts))
	agentCmd.AddCommand(newAgentInvokeCmd(opts))
	return agentCmd
}

func newAgentListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the known agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := opts.client().Get(cmd.Context(), opts.url("/api/agents"))
			if err != nil {
				return err
			}
			return printReply(cmd.OutOrStdout(), reply)
		},
	}
}

func newAgentStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status [agent-id]",
		Short: "Show the status of an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := opts.client().Get(cmd.Context(), opts.url("/api/agents/"+url.PathEscape(args[0])+"/status"))
			if err != nil {
				return err
			}
			return printReply(cmd.OutOrStdout(), reply)
		},
	}
}

func newAgentInvokeCmd(opts *options) *cobra.Command {
	var params string
	invokeCmd := &cobra.Command{
		Use:   "invoke [agent-id] [action]",
		Short: "Invoke an action on an agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := invokeRequest{Action: args[1]}
			if params != "" {
				if !json.Valid([]byte(params)) {
					return fmt.Errorf("--params is not valid JSON")
				}
				req.Params = json.RawMessage(params)
			}
			body, err := json.Marshal(req)
			if err != nil {
				return fmt.Errorf("error creating JSON payload: %w", err)
			}
			reply, err := opts.client().PostJSON(cmd.Context(), opts.url("/api/agents/"+url.PathEscape(args[0])+"/invoke"), body)
			if err != nil {
				return err
			}
			return printReply(cmd.OutOrStdout(), reply)
		},
	}
	invokeCmd.Flags().StringVarP(&params, "params", "p", "", "action parameters as a JSON object")
	return invokeCmd
}
