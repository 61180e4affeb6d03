package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/standardbeagle/pagedit/internal/proxy"
)

var injectCmd = &cobra.Command{
	Use:   "inject <input.html> [output.html]",
	Short: "Write an editable copy of an HTML file",
	Long: `Write a copy of an HTML file with the pagedit editor injected.

Without an output path the copy is written next to the input as
<name>-editable.<ext>. Use "-" to write the page to stdout.

The copy connects to a pagedit server, so run "pagedit serve <input.html>"
before opening it from disk.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInject,
}

func init() {
	injectCmd.Flags().String("server", "", "WebSocket URL of the pagedit server (defaults to the configured host and port)")
	rootCmd.AddCommand(injectCmd)
}

func runInject(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	ws, _ := cmd.Flags().GetString("server")
	if ws == "" {
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
		ws = "ws://" + addr + proxy.WebSocketPath
	}

	src := args[0]
	dst := ""
	if len(args) > 1 {
		dst = args[1]
	}

	if dst == "-" {
		page, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", src, err)
		}
		_, err = os.Stdout.Write(proxy.Inject(page, ws))
		return err
	}

	out, err := proxy.InjectFile(src, dst, ws)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println(out)
		return nil
	}
	fmt.Printf("Wrote editable page: %s\n", out)
	fmt.Printf("Original page:       %s\n", src)
	fmt.Printf("Editor server:       %s\n\n", ws)
	fmt.Printf("Start the server with \"pagedit serve %s\" and open the page to:\n", src)
	fmt.Println("  1. Inspect elements by hovering")
	fmt.Println("  2. Duplicate or remove containers")
	fmt.Println("  3. Edit text in place")
	fmt.Println("  4. Replace images by uploading new ones")
	return nil
}
