package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tracklist/internal/auth"
	"github.com/desertthunder/tracklist/internal/library"
	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/repositories"
	"github.com/desertthunder/tracklist/internal/services"
	"github.com/desertthunder/tracklist/internal/shared"
	"github.com/desertthunder/tracklist/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and services are opened lazily by [Runner.open] so commands that only
// print help or write config never touch them.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db        *sql.DB
	ownsDB    bool
	metadata  services.MetadataService
	users     *repositories.UserRepository
	auth      *auth.Authenticator
	store     *library.Store
	playlists *library.PlaylistManager
	engine    *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB                  // Already migrated database; opened from config when nil
	Metadata   services.MetadataService // Built from config when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		metadata:   opts.Metadata,
	}
	if opts.DB != nil {
		r.wire(opts.DB)
	}
	return r
}

// SetLogger replaces the runner's logger, e.g. to keep logs out of the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, userCommand, lastfmCommand, playlistCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the configuration once, honouring the --config flag.
func (r *Runner) loadConfig(cmd *cli.Command) error {
	if r.config != nil {
		return nil
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	config, err := shared.ResolveConfig(r.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r.config = config

	logger, err := shared.LoggerFromConfig(config.Logging)
	if err != nil {
		return err
	}
	r.logger = logger
	return nil
}

// connect loads config and opens the database without migrating it.
func (r *Runner) connect(cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	if r.db != nil {
		return nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.db = db
	r.ownsDB = true
	return nil
}

// open connects, runs pending migrations, and wires the library layer and Last.fm client.
func (r *Runner) open(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd); err != nil {
		return err
	}

	if r.users == nil {
		r.logger.Debug("running database migrations")
		if err := shared.RunMigrations(r.db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.wire(r.db)
	}

	if r.metadata == nil {
		r.metadata = services.NewLastFMService(r.config.Credentials.LastFM, r.httpClient)
		r.engine = tasks.NewPlaylistEngine(r.playlists, r.metadata, r.logger)
	}
	return nil
}

func (r *Runner) wire(db *sql.DB) {
	r.db = db
	r.users = repositories.NewUserRepository(db)
	r.auth = auth.NewAuthenticator(r.users)
	r.store = library.NewStore(db, r.logger)
	r.playlists = library.NewPlaylistManager(db, r.store, r.logger)
	r.engine = tasks.NewPlaylistEngine(r.playlists, r.metadata, r.logger)
}

// Close releases the database when the runner opened it.
func (r *Runner) Close() error {
	if r.db != nil && r.ownsDB {
		return r.db.Close()
	}
	return nil
}

// owner resolves the --user flag (an email address) to a user.
func (r *Runner) owner(ctx context.Context, cmd *cli.Command) (*models.User, error) {
	email := cmd.String("user")
	if email == "" {
		return nil, fmt.Errorf("%w: --user is required", shared.ErrMissingArgument)
	}

	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("unknown user %s: %w", email, err)
	}
	return user, nil
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
