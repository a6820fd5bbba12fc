package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	vrl "github.com/evanrichter/vrl"
)

func checkCmd() *cobra.Command {
	var (
		cfgPath string
		strict  bool
	)
	cmd := &cobra.Command{
		Use:   "check <program.vrl>...",
		Short: "compile programs and report diagnostics without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if strict {
				cfg.Strict = true
			}
			reg, cleanup, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			failed := 0
			for _, path := range args {
				src, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				prog, diags := vrl.Compile(string(src), vrl.Options{Registry: reg, Strict: cfg.Strict})
				if len(diags) > 0 {
					fmt.Fprintln(os.Stderr, diagsText(string(src), diags))
				}
				if prog == nil {
					failed++
					continue
				}
				fmt.Printf("%s: ok, result is %s\n", path, prog.Result.Kinds.Name())
			}
			if failed > 0 {
				return fmt.Errorf("%d program(s) failed to compile", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (yaml or toml)")
	cmd.Flags().BoolVar(&strict, "strict", false, "escalate partial-type warnings to errors")
	return cmd
}

// diagText renders one diagnostic with severity coloring.
func diagText(src string, d *vrl.Diagnostic) string {
	text := vrl.DiagnosticList{d}.Render(src)
	if d.Severity == vrl.SevError {
		return colorFirstLine(text, red)
	}
	return colorFirstLine(text, green)
}

func diagsText(src string, diags vrl.DiagnosticList) string {
	parts := make([]string, 0, len(diags))
	for _, d := range diags {
		parts = append(parts, diagText(src, d))
	}
	return strings.Join(parts, "\n")
}

func colorFirstLine(text string, f func(string) string) string {
	head, rest, ok := strings.Cut(text, "\n")
	if !ok {
		return f(text)
	}
	return f(head) + "\n" + rest
}
