package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/pagedit/internal/config"
	"github.com/standardbeagle/pagedit/internal/store"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "Inspect pages saved from the editor",
	Long: `Inspect pages saved from the editor.

Examples:
  pagedit saves list
  pagedit saves list --folder /docs/
  pagedit saves show http://localhost:3000/about > about.html
  pagedit saves delete http://localhost:3000/about`,
}

var savesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved pages, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSavesList,
}

var savesShowCmd = &cobra.Command{
	Use:   "show <url>",
	Short: "Print the saved markup of a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavesShow,
}

var savesDeleteCmd = &cobra.Command{
	Use:   "delete <url>",
	Short: "Forget a saved page",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavesDelete,
}

func init() {
	savesCmd.AddCommand(savesListCmd)
	savesCmd.AddCommand(savesShowCmd)
	savesCmd.AddCommand(savesDeleteCmd)
	savesListCmd.Flags().String("folder", "", "only pages in this folder, e.g. /docs/")
	rootCmd.AddCommand(savesCmd)
}

func openPages() (*store.PageStore, error) {
	cfg, root, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.New(config.Resolve(root, cfg.Store.Dir)), nil
}

func runSavesList(cmd *cobra.Command, args []string) error {
	pages, err := openPages()
	if err != nil {
		return err
	}
	folder, _ := cmd.Flags().GetString("folder")

	list, err := pages.List(folder)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Printf("No saved pages in %s\n", pages.Dir())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "URL\tSIZE\tSAVES\tUPDATED")
	for _, p := range list {
		updated := time.Since(p.UpdatedAt).Round(time.Second).String() + " ago"
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", p.URL, p.Size, p.Saves, updated)
	}
	return w.Flush()
}

func runSavesShow(cmd *cobra.Command, args []string) error {
	pages, err := openPages()
	if err != nil {
		return err
	}
	page, err := pages.Get(args[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no saved page for %s", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Println(page.HTML)
	return nil
}

func runSavesDelete(cmd *cobra.Command, args []string) error {
	pages, err := openPages()
	if err != nil {
		return err
	}
	if err := pages.Delete(args[0]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no saved page for %s", args[0])
		}
		return err
	}
	fmt.Printf("Deleted %s\n", store.NormalizeURL(args[0]))
	return nil
}
