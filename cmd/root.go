package cmd

import (
	"os"

	"github.com/encodeous/lsd/state"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lsd",
	Short: "Link-state node daemon",
	Long: `lsd keeps the link set of a link-state routing node.
It binds sockets for the links that end at this node and exposes the set to operators and protocol handlers over a control socket.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cfg",
		Title: "Configuration",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "ls",
		Title: "Link Set Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&state.NodeConfigPath, "node-config", "n", state.NodeConfigPath, "node-specific config")
	rootCmd.PersistentFlags().StringVarP(&state.TopologyConfigPath, "topology", "t", state.TopologyConfigPath, "network topology config")
}
