package main

import (
	"os"

	"github.com/nikhilbhutani/linguagateway/cmd/linguactl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
