package main

import (
	"os"

	authctlcmd "github.com/cloudctl/authctl/pkg/cmd"
)

func main() {
	root := authctlcmd.NewRootCommand(authctlcmd.DefaultConfig())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
