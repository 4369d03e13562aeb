package main

import (
	"github.com/spf13/cobra"
)

var attachURL string

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Attach to a running reshelld session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return Attach(attachURL)
	},
}

func init() {
	attachCmd.Flags().StringVar(&attachURL, "url", "ws://localhost:8000/ws", "reshelld WebSocket endpoint")
}
