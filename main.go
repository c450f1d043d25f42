package main

import (
	"os"
	"teamsync/cmd"
)

func main() {
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "status")
	}
	cmd.Execute()
}
