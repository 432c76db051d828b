package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	Config   string `short:"c" help:"Path to config file (defaults to XDG config dir)"`
	LogLevel string `default:"info" help:"Log level"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Start the HTTP server (default)"`
	Migrate MigrateCmd `cmd:"" help:"Database migrations"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("villaops"),
		kong.Description("Conversational operations assistant for property managers"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
