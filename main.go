// The main package for the notice-scraper executable.
package main

import (
	"github.com/JakeFAU/notice-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
