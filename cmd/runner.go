package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/repositories"
	"github.com/desertthunder/moments/internal/services"
	"github.com/desertthunder/moments/internal/shared"
	"github.com/desertthunder/moments/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	moments    *repositories.MomentRepository
	sources    *repositories.TrackSourceRepository
	registry   *services.Registry
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.ClusterEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB            // Opened from Config.Database on first use when nil
	Registry   *services.Registry // Built from Config.Credentials when nil
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Registry == nil {
		opts.Registry = buildRegistry(opts.Config, opts.HTTPClient, opts.Logger)
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		registry:   opts.Registry,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if opts.DB != nil {
		r.attach(opts.DB)
	}
	return r
}

// buildRegistry registers a metadata service for every set of credentials present in config.
//
// Services that fail to initialize are logged and skipped.
func buildRegistry(config *shared.Config, client *http.Client, logger *log.Logger) *services.Registry {
	registry := services.NewRegistry()

	if config.Credentials.YouTube.APIKey != "" {
		if svc, err := services.NewYouTubeService(config.Credentials.YouTube, client); err == nil {
			registry.Register(models.ServiceYouTube, svc)
		} else {
			logger.Warn("youtube metadata disabled", "error", err)
		}
	}

	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify, client); err == nil {
			registry.Register(models.ServiceSpotify, svc)
		} else {
			logger.Warn("spotify metadata disabled", "error", err)
		}
	}

	return registry
}

// attach wires the repositories and engine to db.
func (r *Runner) attach(db *sql.DB) {
	r.db = db
	r.moments = repositories.NewMomentRepository(db)
	r.sources = repositories.NewTrackSourceRepository(db)
	r.engine = tasks.NewClusterEngine(r.moments, r.sources, r.lookup())
}

// lookup returns the registry as a [tasks.MetadataLookup], or nil when no service is configured.
func (r *Runner) lookup() tasks.MetadataLookup {
	if r.registry == nil || r.registry.Len() == 0 {
		return nil
	}
	return r.registry
}

// lookupFunc adapts the registry for [repositories.TrackSourceRepository.FindOrCreate].
func (r *Runner) lookupFunc() repositories.LookupFunc {
	if r.lookup() == nil {
		return nil
	}
	return r.registry.Lookup
}

// ensureDB opens the configured database and runs pending migrations on first use.
func (r *Runner) ensureDB() error {
	if r.db != nil {
		return nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	r.attach(db)
	return nil
}

// Close releases the database handle, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// watchProgress logs progress updates at level until the returned stop func is called.
//
// stop closes the channel and waits for the remaining updates to be logged.
func (r *Runner) watchProgress(level log.Level) (chan<- tasks.ProgressUpdate, func()) {
	logger := shared.WithLogger(r.logger, "component", "engine")
	ch := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range ch {
			logger.Log(level, u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()
	return ch, func() {
		close(ch)
		<-done
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, momentsCommand, clusterCommand, tracksCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
