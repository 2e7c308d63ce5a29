package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// executeCommand runs the CLI with args and returns what it wrote to its
// output and error streams. Flag values and Changed marks are reset first,
// since cobra keeps them on the command tree between runs.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetCommandState(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetCommandState(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommandState(sub)
	}
}

// newStoreDir returns an empty store directory and clears configuration
// that would point the CLI elsewhere
func newStoreDir(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"IDEASURGE_STORE_DIR",
		"IDEASURGE_DATABASE__DRIVER",
		"IDEASURGE_DATABASE__PATH",
		"IDEASURGE_LIFECYCLE__RECYCLE_ON_PICK",
	} {
		t.Setenv(key, "")
	}
	return t.TempDir()
}

// seedBatch replays the markdown search capture into dir
func seedBatch(t *testing.T, dir string) []internal.Idea {
	t.Helper()
	if _, _, err := executeCommand(t, "search", "--store-dir", dir, "--input", "testdata/search_markdown.txt"); err != nil {
		t.Fatalf("search replay failed: %v", err)
	}
	ideas := internal.NewFileSessionStore(dir).Ideas()
	if len(ideas) != 2 {
		t.Fatalf("seeded %d ideas, want 2", len(ideas))
	}
	return ideas
}

// openTestRepository opens the SQLite repository the CLI writes in dir
func openTestRepository(t *testing.T, dir string) internal.IdeaRepository {
	t.Helper()
	repo, err := internal.OpenRepository(context.Background(), internal.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(dir, "ideas.db"),
	})
	if err != nil {
		t.Fatalf("OpenRepository() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}
