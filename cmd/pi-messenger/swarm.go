package main

import (
	"github.com/spf13/cobra"
)

func swarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swarm SPEC",
		Short: "List outstanding task claims against a spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("swarm", map[string]any{"spec": args[0]})
		},
	}
	return cmd
}

func claimCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "claim SPEC TASK_ID",
		Short: "Claim a task within a spec for this agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("claim", map[string]any{"spec": args[0], "taskId": args[1], "reason": reason})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why this task is being claimed")
	return cmd
}

func unclaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unclaim SPEC TASK_ID",
		Short: "Give up a claimed task without completing it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("unclaim", map[string]any{"spec": args[0], "taskId": args[1]})
		},
	}
	return cmd
}

func completeCmd() *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "complete SPEC TASK_ID",
		Short: "Mark a claimed task complete",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("complete", map[string]any{"spec": args[0], "taskId": args[1], "notes": notes})
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Completion notes")
	return cmd
}
