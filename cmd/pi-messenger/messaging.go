package main

import (
	"github.com/spf13/cobra"
)

func joinCmd() *cobra.Command {
	var name, model string
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Register this process in the mesh",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("join", map[string]any{"name": name, "model": model})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Preferred agent name")
	cmd.Flags().StringVar(&model, "model", "", "Model identifier")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show this agent's presence record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("status", nil)
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every active agent in the mesh",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("list", nil)
		},
	}
}

func whoisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whois NAME",
		Short: "Show one agent's presence record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("whois", map[string]any{"name": args[0]})
		},
	}
	return cmd
}

func sendCmd() *cobra.Command {
	var replyTo string
	cmd := &cobra.Command{
		Use:   "send TO MESSAGE",
		Short: "Send a direct message to another agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{"to": args[0], "message": args[1]}
			if replyTo != "" {
				params["replyTo"] = replyTo
			}
			return runAction("send", params)
		},
	}
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "ID of the message being replied to")
	return cmd
}

func broadcastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "broadcast MESSAGE",
		Short: "Send a rate-limited message to every active agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("broadcast", map[string]any{"message": args[0]})
		},
	}
	return cmd
}

func reserveCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reserve PATH...",
		Short: "Reserve file paths against concurrent edits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("reserve", map[string]any{"paths": toAnySlice(args), "reason": reason})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why these paths are reserved")
	return cmd
}

func releaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release [PATH...]",
		Short: "Release file reservations (all, if no paths given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("release", map[string]any{"paths": toAnySlice(args)})
		},
	}
	return cmd
}

func renameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename NAME",
		Short: "Change this agent's display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("rename", map[string]any{"name": args[0]})
		},
	}
	return cmd
}

func setStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-status MESSAGE",
		Short: "Set a free-text custom status line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("set_status", map[string]any{"message": args[0]})
		},
	}
	return cmd
}

func specCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec PATH",
		Short: "Record the spec file this agent is working from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("spec", map[string]any{"spec": args[0]})
		},
	}
	return cmd
}

func feedCmd() *cobra.Command {
	var agent, since, until string
	var limit int
	var types []string
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Query the activity feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("feed", map[string]any{
				"agent": agent,
				"since": since,
				"until": until,
				"limit": limit,
				"types": toAnySlice(types),
			})
		},
	}
	cmd.Flags().StringVar(&agent, "agent", "", "Filter to one agent")
	cmd.Flags().StringVar(&since, "since", "", "RFC3339 lower time bound")
	cmd.Flags().StringVar(&until, "until", "", "RFC3339 upper time bound")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max events to return")
	cmd.Flags().StringSliceVar(&types, "type", nil, "Filter to one or more event types")
	return cmd
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
