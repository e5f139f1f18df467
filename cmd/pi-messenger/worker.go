package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// crewWorkerCmd is the child process crew.DefaultCmdFactory re-execs this
// binary as. It is not meant to be invoked by a human: it reads one prompt
// line from stdin and writes its report to stdout, where the parent
// Executor captures it as the task's output.
func crewWorkerCmd() *cobra.Command {
	var taskID, agent string
	cmd := &cobra.Command{
		Use:    "crew-worker",
		Short:  "Internal: run one crew work item (spawned by the orchestrator)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrewWorker(taskID, agent)
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "Task ID being worked")
	cmd.Flags().StringVar(&agent, "agent", "", "Agent role performing the work")
	return cmd
}

// runCrewWorker is deliberately minimal: real agent coordination harnesses
// replace this binary's stdout with an LLM driver; this fallback just
// echoes the prompt back as a single-line acknowledgement plus a default
// NEEDS_WORK verdict, so plan/work/review exercise the full executor and
// orchestration loop even with no external agent wired in.
func runCrewWorker(taskID, agent string) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var prompt string
	if scanner.Scan() {
		prompt = scanner.Text()
	}

	fmt.Printf("- reviewed task %s as %s: %s\n", taskID, agent, prompt)
	fmt.Println("NEEDS_WORK")
	return nil
}
