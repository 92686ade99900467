package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/lsd/core"
	"github.com/encodeous/lsd/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validates the node and topology configuration",
	Run: func(cmd *cobra.Command, args []string) {
		topoCfg, nodeCfg, err := core.LoadConfig(state.TopologyConfigPath, state.NodeConfigPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Config is invalid:", err.Error())
			os.Exit(1)
		}

		local := topoCfg.LinksOf(nodeCfg.Id)
		cfgYaml, err := yaml.Marshal(local)
		if err != nil {
			panic(err)
		}

		fmt.Printf("Config is valid. Node %d has %d of %d links:\n", nodeCfg.Id, len(local), len(topoCfg.Links))
		fmt.Println(string(cfgYaml))
	},
	GroupID: "cfg",
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
