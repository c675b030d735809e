package main

import (
	"os"

	"github.com/denjay/npm-scripts-runner/internal/app"
)

func main() {
	os.Exit(app.RunCLI(os.Args[1:]))
}
