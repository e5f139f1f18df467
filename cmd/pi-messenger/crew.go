package main

import (
	"github.com/spf13/cobra"
)

func epicCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "epic", Short: "Manage epics"}

	create := &cobra.Command{
		Use:  "create TITLE",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("epic.create", map[string]any{"title": args[0]})
		},
	}
	show := &cobra.Command{
		Use:  "show ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("epic.show", map[string]any{"id": args[0]})
		},
	}
	list := &cobra.Command{
		Use: "list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("epic.list", nil)
		},
	}
	close := &cobra.Command{
		Use:  "close ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("epic.close", map[string]any{"id": args[0]})
		},
	}
	setSpec := &cobra.Command{
		Use:  "set-spec ID CONTENT",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("epic.set_spec", map[string]any{"id": args[0], "content": args[1]})
		},
	}

	cmd.AddCommand(create, show, list, close, setSpec)
	return cmd
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Manage tasks within an epic"}

	var dependsOn []string
	create := &cobra.Command{
		Use:  "create EPIC_ID TITLE",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("task.create", map[string]any{"epic": args[0], "title": args[1], "dependsOn": toAnySlice(dependsOn)})
		},
	}
	create.Flags().StringSliceVar(&dependsOn, "depends-on", nil, "Task IDs this task depends on")

	show := &cobra.Command{
		Use:  "show ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("task.show", map[string]any{"id": args[0]})
		},
	}
	list := &cobra.Command{
		Use:  "list EPIC_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("task.list", map[string]any{"epic": args[0]})
		},
	}
	start := &cobra.Command{
		Use:  "start ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("task.start", map[string]any{"id": args[0]})
		},
	}
	var summary string
	done := &cobra.Command{
		Use:  "done ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("task.done", map[string]any{"id": args[0], "summary": summary})
		},
	}
	done.Flags().StringVar(&summary, "summary", "", "What was done")

	var reason string
	block := &cobra.Command{
		Use:  "block ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("task.block", map[string]any{"id": args[0], "reason": reason})
		},
	}
	block.Flags().StringVar(&reason, "reason", "", "Why the task is blocked")

	unblock := &cobra.Command{
		Use:  "unblock ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("task.unblock", map[string]any{"id": args[0]})
		},
	}
	ready := &cobra.Command{
		Use:  "ready EPIC_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("task.ready", map[string]any{"epic": args[0]})
		},
	}
	var cascade bool
	reset := &cobra.Command{
		Use:  "reset ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("task.reset", map[string]any{"id": args[0], "cascade": cascade})
		},
	}
	reset.Flags().BoolVar(&cascade, "cascade", false, "Also reset tasks depending on this one")

	cmd.AddCommand(create, show, list, start, done, block, unblock, ready, reset)
	return cmd
}

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "checkpoint", Short: "Save and restore epic/task snapshots"}

	save := &cobra.Command{
		Use:  "save EPIC_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("checkpoint.save", map[string]any{"epic": args[0]})
		},
	}
	restore := &cobra.Command{
		Use:  "restore ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("checkpoint.restore", map[string]any{"id": args[0]})
		},
	}
	del := &cobra.Command{
		Use:  "delete ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("checkpoint.delete", map[string]any{"id": args[0]})
		},
	}
	list := &cobra.Command{
		Use:  "list EPIC_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("checkpoint.list", map[string]any{"epic": args[0]})
		},
	}

	cmd.AddCommand(save, restore, del, list)
	return cmd
}

func crewCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "crew", Short: "Crew-wide housekeeping"}

	status := &cobra.Command{
		Use: "status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("crew.status", nil)
		},
	}
	validate := &cobra.Command{
		Use:  "validate EPIC_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("crew.validate", map[string]any{"id": args[0]})
		},
	}
	agents := &cobra.Command{
		Use: "agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("crew.agents", nil)
		},
	}
	install := &cobra.Command{
		Use: "install",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("crew.install", nil)
		},
	}
	uninstall := &cobra.Command{
		Use: "uninstall",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("crew.uninstall", nil)
		},
	}
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove stale worker artifact directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("crew.cleanup", nil)
		},
	}

	cmd.AddCommand(status, validate, agents, install, uninstall, cleanup)
	return cmd
}

func planCmd() *cobra.Command {
	var idea string
	cmd := &cobra.Command{
		Use:   "plan TARGET",
		Short: "Scout a target and turn the findings into an epic and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("plan", map[string]any{"target": args[0], "idea": idea})
		},
	}
	cmd.Flags().StringVar(&idea, "idea", "", "Extra context for the scout")
	return cmd
}

func workCmd() *cobra.Command {
	var autonomous bool
	var concurrency int
	cmd := &cobra.Command{
		Use:   "work EPIC_ID",
		Short: "Report or drive an epic's ready-set of tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("work", map[string]any{"target": args[0], "autonomous": autonomous, "concurrency": concurrency})
		},
	}
	cmd.Flags().BoolVar(&autonomous, "autonomous", false, "Actually run the orchestration loop instead of reporting")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Worker concurrency override")
	return cmd
}

func reviewCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "review TASK_ID",
		Short: "Run a one-off review pass and report the verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("review", map[string]any{"target": args[0], "type": kind})
		},
	}
	cmd.Flags().StringVar(&kind, "type", "impl", "Review kind: plan or impl")
	return cmd
}
