// Command vrl compiles and runs event remap programs.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/evanrichter/vrl"
)

const appName = "vrl"

// Version tracks the library; a release build may stamp over it.
var Version = vrl.Version

var (
	log      zerolog.Logger
	verbose  bool
	noColor  bool
)

func main() {
	root := &cobra.Command{
		Use:           appName,
		Short:         "compile and run event remap programs",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			out := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !useColor()}
			log = zerolog.New(out).Level(level).With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")

	root.AddCommand(runCmd(), checkCmd(), replCmd(), testCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

// useColor decides once per invocation: an explicit flag wins, otherwise
// color follows whether stderr is a terminal.
func useColor() bool {
	if noColor {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func red(s string) string {
	if !useColor() {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func green(s string) string {
	if !useColor() {
		return s
	}
	return "\x1b[32m" + s + "\x1b[0m"
}

func blue(s string) string {
	if !useColor() {
		return s
	}
	return "\x1b[94m" + s + "\x1b[0m"
}
