package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:     "link",
	Short:   "Changes the link set of the running daemon",
	GroupID: "ls",
}

func linkSubcommand(use, short string, nargs int) *cobra.Command {
	name := strings.Fields(use)[0]
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		Run: func(cmd *cobra.Command, args []string) {
			result, err := ipcCall(name + " " + strings.Join(args, " "))
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err.Error())
				os.Exit(1)
			}
			fmt.Print(result)
		},
	}
}

func init() {
	rootCmd.AddCommand(linkCmd)

	linkCmd.AddCommand(linkSubcommand("add <peer0> <port0> <peer1> <port1> <cost> <name>", "Adds a link", 6))
	linkCmd.AddCommand(linkSubcommand("update <name> <cost>", "Sets the cost of a link", 2))
	linkCmd.AddCommand(linkSubcommand("delete <name>", "Deletes a link and closes its sockets", 1))
	linkCmd.AddCommand(linkSubcommand("rebind <name>", "Retries binding the unbound local endpoints of a link", 1))
}
