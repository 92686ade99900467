package cmd

import (
	"github.com/encodeous/lsd/core"
	"github.com/encodeous/lsd/state"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run lsd",
	Long:  `This will run lsd on the current host, binding a socket for every configured link that ends at this node.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logPath, _ := cmd.Flags().GetString("log")
		core.Bootstrap(state.TopologyConfigPath, state.NodeConfigPath, logPath, verbose)
	},
	GroupID: "ls",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().StringP("log", "l", "", "Also write logs to this file")
	runCmd.Flags().BoolVarP(&state.DBG_log_links, "llinks", "k", false, "Periodically write the link set to the log")
	runCmd.Flags().BoolVar(&state.DBG_debug, "debug", false, "Serve pprof and metrics on 127.0.0.1:6060")
	runCmd.Flags().BoolVar(&state.DBG_trace, "trace", false, "Write a runtime trace to trace.out")
}
