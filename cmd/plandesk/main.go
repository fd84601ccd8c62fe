// cmd/plandesk/main.go
//
// Entry point for the plandesk console. With no subcommand it opens the
// plan screen against the backend named in .plandesk/config.yaml.

package main

import (
	"context"
	"os"

	"github.com/kingrea/plandesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}
