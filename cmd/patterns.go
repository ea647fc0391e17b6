package cmd

import (
	"github.com/spf13/cobra"

	_ "github.com/yiyuanh/tscaffold/internal/analysis"
	"github.com/yiyuanh/tscaffold/internal/rexec"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the named regular expressions used for source scanning",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rexec.Default.Print(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}
