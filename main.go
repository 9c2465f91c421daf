// ABOUTME: Entry point for the egloorator threshold calibration tool
// ABOUTME: Dispatches kong subcommands with environment configuration
package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/alon/egloorator/internal/cli"
	"github.com/alon/egloorator/internal/config"
	"github.com/alon/egloorator/internal/version"
)

func main() {
	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name(version.Product),
		kong.Description("Find a loudness threshold that separates speech from background in a recording."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Commands that need settings report a bad environment themselves, so
	// help and version keep working.
	c.Globals.Config, c.Globals.ConfigErr = config.Load()
	c.Globals.Stdout = os.Stdout

	err := ctx.Run(&c.Globals)
	ctx.FatalIfErrorf(err)
}
