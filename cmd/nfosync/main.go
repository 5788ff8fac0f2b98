package main

import (
	"fmt"
	"os"

	"github.com/mwantia/nfosync/cmd/nfosync/cli"
	"github.com/mwantia/nfosync/cmd/nfosync/cli/client"
	"github.com/mwantia/nfosync/cmd/nfosync/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	info := cli.VersionInfo{
		Version: version,
		Commit:  commit,
	}
	root := cli.NewRootCommand(info)

	root.AddCommand(cli.NewVersionCommand(info))

	root.AddCommand(client.NewScanCommand())
	root.AddCommand(client.NewItemCommand())
	root.AddCommand(client.NewCatalogCommand())

	root.AddCommand(server.NewAgentCommand())
	root.AddCommand(server.NewConfigCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
