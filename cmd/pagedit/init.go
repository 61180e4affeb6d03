package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/pagedit/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .pagedit.kdl",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(projectDir, config.FileName)
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Created %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
