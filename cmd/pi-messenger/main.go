package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	goruntime "runtime"

	"github.com/spf13/cobra"

	"github.com/pi-agent/pi-messenger/internal/mesh"
)

var (
	// Build info (set via ldflags).
	Version = "dev"
	Build   = "unknown"
)

var (
	flagRepo string
	flagJSON bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pi-messenger",
		Short: "Daemonless file-based agent coordination",
		Long: `pi-messenger coordinates multiple agents working in the same
repository without a daemon: presence, messaging, file reservations, and
swarm task claims all live as plain files under .pi/messenger/, read and
written directly by every invocation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagRepo, "repo", ".", "Repository path")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "JSON output for scripting")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("pi-messenger v{{.Version}} (build: " + Build + ", " + goruntime.Version() + ")\n")

	rootCmd.AddCommand(joinCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(whoisCmd())
	rootCmd.AddCommand(sendCmd())
	rootCmd.AddCommand(broadcastCmd())
	rootCmd.AddCommand(reserveCmd())
	rootCmd.AddCommand(releaseCmd())
	rootCmd.AddCommand(renameCmd())
	rootCmd.AddCommand(setStatusCmd())
	rootCmd.AddCommand(specCmd())
	rootCmd.AddCommand(feedCmd())
	rootCmd.AddCommand(swarmCmd())
	rootCmd.AddCommand(claimCmd())
	rootCmd.AddCommand(unclaimCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(epicCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(checkpointCmd())
	rootCmd.AddCommand(crewCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(workCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(crewWorkerCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		cobra.CheckErr(err)
	}
}

// runAction opens a Mesh rooted at --repo, dispatches one action, prints the
// result, and returns a non-nil error (for cobra's exit-code handling) when
// the action reported a failure.
func runAction(action string, params map[string]any) error {
	repoPath, err := filepath.Abs(flagRepo)
	if err != nil {
		return fmt.Errorf("resolve repo path: %w", err)
	}
	m, err := mesh.New(repoPath)
	if err != nil {
		return fmt.Errorf("open mesh: %w", err)
	}
	defer func() { _ = m.Close() }()

	r := m.Dispatch(context.Background(), action, params)
	printResult(r)
	if r.Details["error"] != nil {
		return fmt.Errorf("%v", r.Details["error"])
	}
	return nil
}

func printResult(r mesh.Result) {
	if flagJSON {
		data, err := json.MarshalIndent(r.Details, "", "  ")
		if err != nil {
			fmt.Println(r.Text)
			return
		}
		fmt.Println(string(data))
		return
	}
	fmt.Println(r.Text)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show pi-messenger version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagJSON {
				data, _ := json.MarshalIndent(map[string]string{
					"version":    Version,
					"build":      Build,
					"go_version": goruntime.Version(),
				}, "", "  ")
				fmt.Println(string(data))
				return nil
			}
			fmt.Printf("pi-messenger v%s (build: %s, %s)\n", Version, Build, goruntime.Version())
			return nil
		},
	}
}
