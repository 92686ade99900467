package cmd

import (
	"fmt"

	"github.com/encodeous/lsd/core"
	"github.com/encodeous/lsd/state"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Aliases: []string{"i"},
	Short:   "Prints the link set of the running daemon",
	Run: func(cmd *cobra.Command, args []string) {
		result, err := ipcCall("inspect")
		if err != nil {
			fmt.Println("Error:", err.Error())
			return
		}
		fmt.Print(result)
	},
	GroupID: "ls",
}

// ipcCall sends the command to the daemon configured by the node config
func ipcCall(command string) (string, error) {
	nodeCfg, err := state.ReadLocalConfig(state.NodeConfigPath)
	if err != nil {
		return "", err
	}
	return core.IPCCall(nodeCfg.GetIpcPath(), command)
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
