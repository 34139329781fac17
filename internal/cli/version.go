package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridable at build time with -ldflags.
var Version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of the tool",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docgen v%s\n", Version)
		fmt.Println("AI-powered code documentation generator")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
