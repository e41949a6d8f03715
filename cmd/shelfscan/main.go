package main

import (
	"os"

	"github.com/shelfscan/backend/cmd/shelfscan/commands"
)

var version = "1.0.0"

func main() {
	os.Exit(commands.Execute(commands.NewRootCmd(version, nil), os.Stderr))
}
