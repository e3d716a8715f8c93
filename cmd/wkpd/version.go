package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of wkpd",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wkpd %s\n", Version)
		fmt.Println("Wikipedia in your terminal")
		fmt.Println("github.com/pders01/wkpd")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
