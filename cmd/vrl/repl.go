package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	vrl "github.com/evanrichter/vrl"
)

const (
	historyFile = ".vrl_history"
	promptMain  = "==> "
)

const replHelp = `
REPL commands:
  :event          Print the current event
  :reset          Reset the event to {}
  :load <file>    Replace the event with a JSON file
  :fns [name]     List functions, or show one function's usage
  :quit           Exit

Anything else is compiled and run against the current event.
`

func replCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "interactive session against a persistent event",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			reg, cleanup, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			return repl(reg, cfg.Strict)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (yaml or toml)")
	return cmd
}

func repl(reg *vrl.Registry, strict bool) error {
	fmt.Printf("vrl %s\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		var out []string
		for _, name := range reg.Names() {
			if strings.HasPrefix(name, line) {
				out = append(out, name)
			}
		}
		return out
	})

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	event := vrl.Obj(vrl.NewObject())
	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			continue
		}
		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}
		if strings.HasPrefix(code, ":") {
			if quit := replCommand(code, reg, &event); quit {
				return nil
			}
			ln.AppendHistory(line)
			continue
		}

		prog, diags := vrl.Compile(code, vrl.Options{Registry: reg, Strict: strict})
		if prog == nil {
			fmt.Fprintln(os.Stderr, diagsText(code, diags))
			continue
		}
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, diagText(code, d))
		}
		result, rerr := prog.Resolve(&event)
		if rerr != nil {
			fmt.Fprintln(os.Stderr, red(rerr.Error()))
			ln.AppendHistory(line)
			continue
		}
		fmt.Println(blue(result.String()))
		ln.AppendHistory(line)
	}
}

func replCommand(code string, reg *vrl.Registry, event *vrl.Value) (quit bool) {
	cmd, arg, _ := strings.Cut(code, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case ":quit":
		return true
	case ":event":
		fmt.Println(blue(vrl.EncodeJSON(*event, true)))
	case ":reset":
		*event = vrl.Obj(vrl.NewObject())
	case ":load":
		raw, err := os.ReadFile(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return false
		}
		v, err := vrl.DecodeJSON(string(raw))
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return false
		}
		*event = v
	case ":fns":
		if arg != "" {
			if f, ok := reg.Lookup(arg); ok {
				fmt.Println(f.Doc)
			} else {
				fmt.Fprintln(os.Stderr, red("unknown function "+arg))
			}
			return false
		}
		fmt.Println(strings.Join(reg.Names(), "  "))
	case ":help":
		fmt.Print(replHelp)
	default:
		fmt.Printf("unknown command. Type :help for commands.\n")
	}
	return false
}
