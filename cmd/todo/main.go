package main

import (
	"fmt"
	"os"

	"github.com/todoflow-labs/todo-client/cmd/todo/commands"
	"github.com/todoflow-labs/todo-client/internal/config"
)

func main() {
	rootCmd := commands.NewRootCmd(config.Load)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
