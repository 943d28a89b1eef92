package main

import (
	"os"

	"github.com/shoplo-hq/shoplo-go/cmd/shoplo/app"
)

func main() {
	if err := app.NewShoploCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
