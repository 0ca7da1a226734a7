package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:           "collab",
	Short:         "Headless participant for Collab rooms",
	Long:          `collab joins a room on a Collab relay with file-fed camera, microphone and screen tracks, and exposes the whiteboard and chat on stdin.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(joinCmd)
}
