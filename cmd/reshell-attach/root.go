// Package main implements reshell-attach, a terminal client for reshelld's
// WebSocket front door. It is not part of spec.md's core; it exists to give
// nhooyr.io/websocket and github.com/spf13/cobra — both carried over from
// the teacher's dependency stack — a real, protocol-compatible client to
// exercise against the hand-rolled server in internal/wsproto.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time, mirroring kornnellio-runc-Go/cmd/root.go's
// version-flag convention.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "reshell-attach",
	Short: "Terminal client for a reshelld WebSocket session",
	Long: `reshell-attach dials a reshelld instance's WebSocket endpoint,
puts the local terminal into raw mode, and relays bytes in both
directions until the connection closes or the user disconnects.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("reshell-attach " + Version)
		return nil
	},
}
