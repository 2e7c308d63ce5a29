package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckDetails bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that ideasurge can reach its stores and backend settings",
	Long: `Check the health of ideasurge by verifying:
  • Configuration loading
  • Store directory access
  • Session state readability
  • Idea repository connectivity
  • Backend credentials

This command is useful for debugging configuration issues, especially in CI/CD environments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealthcheck(cmd, cmd.OutOrStdout())
	},
}

func runHealthcheck(cmd *cobra.Command, out io.Writer) error {
	fmt.Fprintln(out, sectionStyle.Render("🔍 ideasurge Health Check"))
	fmt.Fprintln(out)

	// Step 1: Configuration
	fmt.Fprintln(out, infoStyle.Render("Step 1: Validating configuration..."))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Invalid configuration:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
	if healthcheckDetails {
		fmt.Fprintf(out, "   Endpoint: %s\n", cfg.LLM.Endpoint)
		fmt.Fprintf(out, "   Provider: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.ModelID)
		fmt.Fprintf(out, "   Database: %s\n", cfg.Database.Driver)
	}
	fmt.Fprintln(out)

	// Step 2: Store directory
	fmt.Fprintln(out, infoStyle.Render("Step 2: Checking store directory..."))
	paths, err := internal.DetectStorePaths(cfg.StoreDir)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Failed to resolve store directory:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	if err := paths.DirWritable(); err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Store directory is not writable:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Fprintln(out, successStyle.Render("✅ Store directory writable"))
	if healthcheckDetails {
		fmt.Fprintf(out, "   Directory: %s\n", paths.Dir)
	}
	fmt.Fprintln(out)

	// Step 3: Session state
	fmt.Fprintln(out, infoStyle.Render("Step 3: Loading session state..."))
	if !paths.SessionFileExists() {
		fmt.Fprintln(out, warningStyle.Render("⚠️  No session state yet"))
		if healthcheckDetails {
			fmt.Fprintf(out, "   Expected: %s\n", paths.SessionFile)
			fmt.Fprintln(out, "   It is written after the first search")
		}
	} else {
		state, err := internal.NewFileSessionStore(paths.Dir).Load()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to load session state:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		deepDives := 0
		for _, dds := range state.DeepDives {
			deepDives += len(dds)
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Session: %d idea(s), %d picked, %d deep dive(s)",
			len(state.Ideas), len(state.Picked), deepDives)))
	}
	fmt.Fprintln(out)

	// Step 4: Repository
	fmt.Fprintln(out, infoStyle.Render("Step 4: Testing idea repository..."))
	repo, err := internal.OpenRepository(cmd.Context(), cfg.Database)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Failed to open idea repository"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Error details:")
		fmt.Fprintln(out, err)
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = repo.Close() }()
	if err := repo.Ping(cmd.Context()); err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Idea repository not reachable:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	recycled, err := repo.ListByStatus(cmd.Context(), internal.StatusRecycled)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Failed to query idea repository:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	picked, err := repo.ListByStatus(cmd.Context(), internal.StatusPicked)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Failed to query idea repository:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Repository: %d recycled, %d picked", len(recycled), len(picked))))
	if healthcheckDetails && cfg.Database.Driver == "sqlite" {
		fmt.Fprintf(out, "   Database: %s\n", cfg.Database.Path)
	}
	fmt.Fprintln(out)

	// Step 5: Backend credentials
	fmt.Fprintln(out, infoStyle.Render("Step 5: Checking backend credentials..."))
	keyed := cfg.LLM.APIKey != ""
	if keyed {
		fmt.Fprintln(out, successStyle.Render("✅ API key configured"))
	} else {
		fmt.Fprintln(out, warningStyle.Render("⚠️  No API key configured"))
		fmt.Fprintln(out, "   Set IDEASURGE_LLM__API_KEY or llm.api_key to run searches")
	}
	if cfg.LLM.ExaAPIKey == "" && healthcheckDetails {
		fmt.Fprintln(out, "   No Exa key: the backend's own search key will be used")
	}
	fmt.Fprintln(out)

	// Summary
	fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
	fmt.Fprintln(out)
	if keyed {
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
	} else {
		fmt.Fprintln(out, warningStyle.Render("⚠️  Stores available but searches need an API key"))
		fmt.Fprintln(out, "   • Replays with --input still work")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckDetails, "details", false, "Show detailed diagnostic information")
}
