package main

import (
	"os"

	"github.com/wilfriedroset/consul-awx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
