// Package main implements the main entry point for a CHIP-8 interpreter
package main

import (
	"errors"
	"os"

	"github.com/retroenv/chip8emu/internal/cli"
	"github.com/retroenv/chip8emu/internal/config"
	"github.com/retroenv/chip8emu/internal/fileprocessor"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, emuOpts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			if usageErr.Error() != "" {
				logger.Error(usageErr.Error())
			}
			usageErr.ShowUsage()
		} else {
			logger.Error("Invalid options", log.Err(err))
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	// the terminal display replaces the banner output
	if opts.Disassemble || opts.Headless {
		fileprocessor.PrintBanner(logger, opts, version, commit, date)
	}

	if err := fileprocessor.ProcessFile(ctx, logger, opts, emuOpts); err != nil {
		logger.Error("Processing failed", log.Err(err))
		os.Exit(1)
	}
}
