package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	vrl "github.com/evanrichter/vrl"
)

// buildRegistry wires the stock library plus, when configured, the
// SQLite-backed enrichment tables.
func buildRegistry(cfg Config) (*vrl.Registry, func(), error) {
	reg := vrl.DefaultRegistry()
	cleanup := func() {}
	if cfg.EnrichmentDB != "" {
		db, err := sql.Open("sqlite", cfg.EnrichmentDB)
		if err != nil {
			return nil, nil, fmt.Errorf("enrichment db %s: %w", cfg.EnrichmentDB, err)
		}
		vrl.RegisterEnrichmentFns(reg, vrl.NewEnrichmentTables(db))
		cleanup = func() { db.Close() }
	}
	return reg, cleanup, nil
}

func compileFile(path string, reg *vrl.Registry, strict bool) (*vrl.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, diags := vrl.Compile(string(src), vrl.Options{Registry: reg, Strict: strict})
	for _, d := range diags {
		if d.Severity == vrl.SevWarning {
			fmt.Fprintln(os.Stderr, diagText(string(src), d))
		}
	}
	if prog == nil {
		fmt.Fprintln(os.Stderr, diagsText(string(src), diags.Errors()))
		return nil, fmt.Errorf("%s: compilation failed", path)
	}
	return prog, nil
}

func runCmd() *cobra.Command {
	var (
		cfgPath string
		strict  bool
		watch   bool
		onError string
	)
	cmd := &cobra.Command{
		Use:   "run <program.vrl>",
		Short: "transform NDJSON events from stdin to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if strict {
				cfg.Strict = true
			}
			if onError != "" {
				cfg.OnError = onError
			}
			reg, cleanup, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			return runPipeline(args[0], cfg, reg, watch)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (yaml or toml)")
	cmd.Flags().BoolVar(&strict, "strict", false, "escalate partial-type warnings to errors")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "recompile when the program file changes")
	cmd.Flags().StringVar(&onError, "on-error", "", "failed-record disposition: drop or keep")
	return cmd
}

// runPipeline streams NDJSON records through the program. With watch, the
// program pointer is swapped atomically on file change; in-flight records
// finish under the program they started with.
func runPipeline(path string, cfg Config, reg *vrl.Registry, watch bool) error {
	var current atomic.Pointer[vrl.Program]
	prog, err := compileFile(path, reg, cfg.Strict)
	if err != nil {
		return err
	}
	current.Store(prog)

	if watch {
		stop, err := watchProgram(path, reg, cfg.Strict, &current)
		if err != nil {
			return err
		}
		defer stop()
	}

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	var line int
	for in.Scan() {
		line++
		if len(in.Bytes()) == 0 {
			continue
		}
		event, err := vrl.DecodeJSON(in.Text())
		if err != nil {
			log.Warn().Int("line", line).Err(err).Msg("skipping undecodable record")
			continue
		}
		_, rerr := current.Load().Resolve(&event)
		if rerr != nil {
			disposeFailed(out, line, event, rerr, cfg.OnError)
			continue
		}
		out.WriteString(vrl.EncodeJSON(event, false))
		out.WriteByte('\n')
	}
	return in.Err()
}

func disposeFailed(out *bufio.Writer, line int, event vrl.Value, rerr *vrl.RuntimeError, onError string) {
	if rerr.Aborted() {
		log.Debug().Int("line", line).Msg("record aborted")
		return
	}
	log.Warn().Int("line", line).Err(rerr).Msg("record failed")
	if onError == "keep" {
		out.WriteString(vrl.EncodeJSON(event, false))
		out.WriteByte('\n')
	}
}

// watchProgram recompiles on writes to the program file. A broken edit
// keeps the last good program running.
func watchProgram(path string, reg *vrl.Registry, strict bool, current *atomic.Pointer[vrl.Program]) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files, which drops a watch on
	// the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				prog, err := compileFile(path, reg, strict)
				if err != nil {
					log.Warn().Err(err).Msg("keeping previous program")
					continue
				}
				current.Store(prog)
				log.Info().Str("program", path).Msg("reloaded")
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("watch error")
			}
		}
	}()
	return func() { w.Close() }, nil
}
