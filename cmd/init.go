package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepcov/internal/config"
	"github.com/chriserin/stepcov/internal/history"
	"github.com/chriserin/stepcov/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize stepcov in the current project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunInit(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func RunInit(w io.Writer, c config.Config) error {
	// state directory
	stateDir := c.StateDir()
	_, err := os.Stat(stateDir)
	stateExists := err == nil
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", stateDir, err)
	}
	if stateExists {
		ui.ExistsLine(w, displayPath(stateDir)+"/")
	} else {
		ui.NewLine(w, displayPath(stateDir)+"/")
	}

	// history database
	dbPath := c.HistoryPath()
	_, err = os.Stat(dbPath)
	dbExists := err == nil
	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	store.Close()
	if dbExists {
		ui.ExistsLine(w, displayPath(dbPath))
	} else {
		ui.NewLine(w, displayPath(dbPath))
	}

	// config file
	if _, err := os.Stat(config.FileName); err == nil {
		ui.ExistsLine(w, config.FileName)
	} else {
		if err := config.WriteDefault(config.FileName); err != nil {
			return err
		}
		ui.NewLine(w, config.FileName)
	}

	// gitignore
	if filepath.IsAbs(c.History.Path) {
		return nil
	}
	msgs, err := ensureGitignore(filepath.Join(c.Root, ".gitignore"), filepath.ToSlash(c.History.Path))
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}

	return nil
}

func displayPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

func ensureGitignore(path, entry string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(entry+"\n"), 0o644); err != nil {
			return nil, err
		}
		return []string{".gitignore created", entry + " added to .gitignore"}, nil
	}
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == entry {
			return []string{entry + " already in .gitignore"}, nil
		}
	}

	content := string(data)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, err
	}
	return []string{entry + " added to .gitignore"}, nil
}
