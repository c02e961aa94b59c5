// Formdemo is a small multi-step terminal form built on the forme
// engine: a name/email step with live validation and a completion-aware
// tag input, then a confirmation step reachable only after the first
// step's values pass validation.
//
// Usage:
//
//	formdemo run [flags]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"forme"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "formdemo",
	Short: "Run a small multi-step terminal form",
}

var logLevel string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "structured log level (debug|info|warn|error), empty disables logging")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the demo form in the current terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := forme.NewLogger(logLevel)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer logger.Sync()

		flow := buildFlow()
		state := forme.NewAppState(flow)
		term := forme.NewStdTerminal()
		rt := forme.NewRuntime(term, state, logger)
		return rt.Run()
	},
}

func buildFlow() *forme.Flow {
	name := forme.NewTextInput("name")
	name.WithValidators(forme.VRequired, forme.VMinLen(2))

	email := forme.NewTextInput("email")
	email.WithValidators(forme.VRequired, forme.VEmail)

	tags := forme.NewTextInput("tags")
	tags.WithCandidates(func() []string {
		return []string{"golang", "terminal", "forms", "concurrency", "cli"}
	})

	profile := &forme.Step{
		ID:     "profile",
		Prompt: "Tell us about yourself",
		Hint:   "Tab/Shift+Tab to move between fields, Enter to continue",
		Roots:  []forme.Widget{name, email, tags},
	}

	subscribe := forme.NewCheckbox("subscribe", "Subscribe to the newsletter")
	confirmBody := forme.NewOutputText("confirm-body", "Press Enter to finish.")

	confirm := &forme.Step{
		ID:     "confirm",
		Prompt: "Confirm",
		Roots:  []forme.Widget{subscribe, confirmBody},
	}

	return forme.NewFlow(profile, confirm)
}
