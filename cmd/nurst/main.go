// Package main implements the nurst command, a 6502 trace harness that runs
// NES ROMs and compares the resulting execution trace against a golden log.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/azmine-1/nurst/internal/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type optionFlags struct {
	input      string
	configFile string

	startPC   string
	steps     int
	output    string
	reference string

	debug       bool
	quiet       bool
	showVersion bool
}

func main() {
	options := readArguments()

	if options.showVersion {
		fmt.Printf("nurst %s\n", buildinfo.Version(version, commit, date))
		return
	}

	logger := app.CreateLogger(options.debug, options.quiet)
	if !options.quiet {
		printBanner()
	}

	if err := run(logger, options); err != nil {
		logger.Error("Run failed", err)
		os.Exit(1)
	}
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	options := optionFlags{}

	flags.StringVar(&options.configFile, "config", "", "name of a JSON config file to load")
	flags.StringVar(&options.startPC, "pc", "", "override the reset vector with a hex address, for example C000")
	flags.IntVar(&options.steps, "steps", 0, "stop after this many instructions, 0 runs until the program ends")
	flags.StringVar(&options.output, "o", "", "name of the trace output file, printed on console if no name given")
	flags.StringVar(&options.reference, "compare", "", "name of a golden log to compare the trace against")
	flags.BoolVar(&options.quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&options.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&options.showVersion, "version", false, "print the version and exit")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if options.showVersion {
		return options
	}
	if err != nil || len(args) == 0 {
		printBanner()
		fmt.Printf("usage: nurst [options] <.nes file to run>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	options.input = args[0]

	return options
}

func printBanner() {
	fmt.Println("[------------------------------]")
	fmt.Println("[ nurst - 6502 trace harness   ]")
	fmt.Printf("[------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

func run(logger *log.Logger, options optionFlags) error {
	cfg, err := app.LoadConfig(options.configFile)
	if err != nil {
		return err
	}
	applyFlags(&cfg, options)
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner := app.NewRunner(logger, cfg)
	if err := runner.LoadROM(options.input); err != nil {
		return err
	}

	var reference []string
	if cfg.Reference != "" {
		reference, err = app.ReadReference(cfg.Reference)
		if err != nil {
			return err
		}
		logger.Debug("reference log loaded",
			log.String("file", cfg.Reference),
			log.Int("lines", len(reference)),
		)
	}

	out, closer, err := openOutput(cfg.TraceOutput)
	if err != nil {
		return err
	}
	defer closer()

	result, err := runner.Run(out, reference)
	if err != nil {
		logger.Error("Execution stopped", err,
			log.String("last_pc", fmt.Sprintf("%04X", result.LastPC)),
			log.Uint64("cycles", result.Cycles),
		)
		return err
	}

	if result.Diverged != nil {
		logger.Error("Trace diverged from reference", nil,
			log.String("last_pc", fmt.Sprintf("%04X", result.LastPC)),
			log.Uint64("cycles", result.Cycles),
		)
		fmt.Fprintln(os.Stderr, result.Diverged.String())
		return fmt.Errorf("trace diverged at line %d", result.Diverged.Line)
	}

	logger.Info("Run finished",
		log.Int("steps", result.Steps),
		log.Uint64("cycles", result.Cycles),
	)
	return nil
}

func applyFlags(cfg *app.Config, options optionFlags) {
	if options.startPC != "" {
		cfg.StartPC = options.startPC
	}
	if options.steps > 0 {
		cfg.MaxSteps = options.steps
	}
	if options.output != "" {
		cfg.TraceOutput = options.output
	}
	if options.reference != "" {
		cfg.Reference = options.reference
	}
	cfg.Debug = cfg.Debug || options.debug
	cfg.Quiet = cfg.Quiet || options.quiet
}

func openOutput(name string) (io.Writer, func(), error) {
	if name == "" || name == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
