package main

import (
	"os"

	"github.com/saas-foundation/saas-foundation/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
