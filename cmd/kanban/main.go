// Command kanban runs the onboarding board server and its maintenance
// commands.
//
//	kanban serve             start the HTTP server
//	kanban reset             restore the default onboarding tasks
//	kanban board [filters]   print the board as text
//
// Settings come from the environment (optionally via .env); the persistent
// flags --port, --data-file and --web-root override them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
