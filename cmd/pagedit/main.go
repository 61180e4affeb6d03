// Command pagedit edits web pages in the browser: it injects an editor into
// a local HTML file or a running site and keeps the saved results.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/pagedit/internal/config"
	"github.com/standardbeagle/pagedit/internal/debug"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	projectDir string
	debugFlag  bool
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "pagedit",
	Short: "Edit web pages in the browser",
	Long: `pagedit injects an in-browser editor into HTML pages.

Hover to inspect elements, click text to edit it, click images to replace
them, and click containers to duplicate or remove them. Saved pages are kept
under the project's store directory.

Examples:
  pagedit inject index.html
  pagedit serve index.html
  pagedit proxy --target http://localhost:3000
  pagedit saves list`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugFlag {
			debug.Enable()
		}
		if logFile != "" {
			if err := debug.SetLogFile(logFile); err != nil {
				return err
			}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of pagedit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pagedit %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "dir", ".", "project directory (where .pagedit.kdl is looked up)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging (also "+debug.EnvVar+"=1)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file in the pagedit log directory")
	rootCmd.AddCommand(versionCmd)
}

// loadConfig returns the project configuration and the directory relative
// paths in it are resolved against.
func loadConfig() (*config.Config, string, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, "", err
	}
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, "", err
	}
	if path := config.FindConfigFile(projectDir); path != "" {
		root = filepath.Dir(path)
	}
	return cfg, root, nil
}

func main() {
	defer debug.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		debug.Close()
		os.Exit(1)
	}
}
