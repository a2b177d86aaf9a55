package main

import (
	"os"

	remotescmder "github.com/papercomputeco/remotes/cmd/remotes"
)

func main() {
	cmd := remotescmder.NewRemotesCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
