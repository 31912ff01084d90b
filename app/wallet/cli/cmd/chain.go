package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	chainURL string
	nodeID   string
)

// chainCmd queries the chain a node last published.
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the published chain of a node",
	Run:   chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.Flags().StringVarP(&chainURL, "url", "u", "http://localhost:8080", "Url of the node service.")
	chainCmd.Flags().StringVarP(&nodeID, "node", "n", "", "Identity of the node to query.")
}

func chainRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/chain/list/%s", chainURL, nodeID))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(data))
}
