package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/avelara/portify/internal/catalog"
	"github.com/avelara/portify/internal/match"
	"github.com/avelara/portify/internal/pipeline"
	"github.com/avelara/portify/internal/shared"
	"github.com/avelara/portify/internal/store"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	source catalog.Reader
	dest   catalog.Writer
	engine *pipeline.Engine
	cache  *store.SearchCache
	runlog *store.RunLog
	db     *sql.DB
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Source catalog.Reader
	Dest   catalog.Writer
	Cache  *store.SearchCache
	RunLog *store.RunLog
	DB     *sql.DB
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config: opts.Config,
		source: opts.Source,
		dest:   opts.Dest,
		cache:  opts.Cache,
		runlog: opts.RunLog,
		db:     opts.DB,
		logger: opts.Logger,
		output: opts.Output,
	}
	r.engine = r.buildEngine(opts.Config.Migrate.Threshold, true)

	return r
}

// buildEngine assembles a migration engine, optionally with the search cache.
// A non-positive threshold falls back to the default.
func (r *Runner) buildEngine(threshold float64, useCache bool) *pipeline.Engine {
	engine := pipeline.NewEngine(r.source, r.dest, match.NewScorer(threshold))
	if useCache && r.cache != nil {
		engine.WithCache(r.cache)
	}
	return engine
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, migrateCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
