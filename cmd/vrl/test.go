package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	vrl "github.com/evanrichter/vrl"
)

// testFile is the YAML shape of a program test suite.
type testFile struct {
	Tests []testCase `yaml:"tests"`
}

type testCase struct {
	Name    string `yaml:"name"`
	Program string `yaml:"program"`
	// Input and Output are JSON documents; Output is compared against the
	// mutated event. Result, when set, is compared against the program's
	// return value.
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Result string `yaml:"result"`
	// Fails expects the invocation to raise a runtime error.
	Fails bool `yaml:"fails"`
}

func testCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "test <cases.yaml>...",
		Short: "run program test suites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			reg, cleanup, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			var failed int
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				var tf testFile
				if err := yaml.Unmarshal(raw, &tf); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				for _, tc := range tf.Tests {
					if err := runCase(reg, cfg.Strict, tc); err != nil {
						failed++
						fmt.Printf("%s %s: %v\n", red("FAIL"), tc.Name, err)
						continue
					}
					fmt.Printf("%s %s\n", green("ok"), tc.Name)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d case(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (yaml or toml)")
	return cmd
}

func runCase(reg *vrl.Registry, strict bool, tc testCase) error {
	prog, diags := vrl.Compile(tc.Program, vrl.Options{Registry: reg, Strict: strict})
	if prog == nil {
		return fmt.Errorf("compile: %s", diags.Error())
	}
	event := vrl.Obj(vrl.NewObject())
	if tc.Input != "" {
		v, err := vrl.DecodeJSON(tc.Input)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		event = v
	}
	result, rerr := prog.Resolve(&event)
	if tc.Fails {
		if rerr == nil {
			return fmt.Errorf("expected a runtime error, got result %s", result)
		}
		return nil
	}
	if rerr != nil {
		return rerr
	}
	if tc.Output != "" {
		want, err := vrl.DecodeJSON(tc.Output)
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}
		if !event.Equal(want) {
			return fmt.Errorf("event mismatch:\n  got  %s\n  want %s", event, want)
		}
	}
	if tc.Result != "" {
		want, err := vrl.DecodeJSON(tc.Result)
		if err != nil {
			return fmt.Errorf("result: %w", err)
		}
		if !result.Equal(want) {
			return fmt.Errorf("result mismatch: got %s, want %s", result, want)
		}
	}
	return nil
}
