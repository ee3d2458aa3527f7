package main

import (
	"os"

	"github.com/golang/glog"

	"sshkex/cmd/sshkex/commands"
)

func main() {
	err := commands.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
