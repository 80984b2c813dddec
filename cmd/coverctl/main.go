// Command coverctl works with the insurance backend from a terminal: list
// entity tables, validate and upload import files, and fetch templates.
package main

import (
	"fmt"
	"os"

	_ "github.com/JonMunkholm/coverdesk/internal/core/entities" // Register all entities
)

func main() {
	if err := newRootCmd(os.LookupEnv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
