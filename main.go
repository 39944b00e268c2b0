package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewdesk/internal/commands"
	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/hay-kot/reviewdesk/internal/core/eventbus"
	"github.com/hay-kot/reviewdesk/internal/core/logging"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
	"github.com/hay-kot/reviewdesk/internal/data/db"
	"github.com/hay-kot/reviewdesk/internal/desk"
	"github.com/hay-kot/reviewdesk/internal/desk/sweep"
	"github.com/hay-kot/reviewdesk/internal/platform"
	"github.com/hay-kot/reviewdesk/internal/profiler"
	"github.com/hay-kot/reviewdesk/pkg/executil"
	"github.com/hay-kot/reviewdesk/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	// A .env in the working directory may carry REVIEWDESK_* settings.
	_ = godotenv.Load()

	var (
		logCloser func()
		deskApp   = &desk.App{}
		database  *db.DB
		bgCancel  context.CancelFunc
		pprofPort int
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "reviewdesk",
		Usage:     "Run and take timed code review sessions",
		UsageText: "reviewdesk [global options] command [command options]",
		Description: `reviewdesk is the terminal client of the code review practice platform.

Reviewers create sessions, watch their countdowns and evaluate them from the
dashboard. Candidates open the session diff with 'reviewdesk candidate <token>'
and comment on it until time runs out.

Run 'reviewdesk' with no arguments to open the reviewer dashboard.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("REVIEWDESK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/reviewdesk.log)",
				Sources:     cli.EnvVars("REVIEWDESK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("REVIEWDESK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("REVIEWDESK_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.IntFlag{
				Name:        "pprof-port",
				Usage:       "serve pprof on 127.0.0.1 at this port (0 disables)",
				Sources:     cli.EnvVars("REVIEWDESK_PPROF_PORT"),
				Hidden:      true,
				Destination: &pprofPort,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// The views own the terminal, so logs always go to a file.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = cfg.LogFile()
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.UI.Theme)
			styles.SetTheme(palette)

			database, err = db.Open(cfg.DataDir, db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			})
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			client, err := platform.New(platform.Options{
				BaseURL: cfg.API.BaseURL,
				Timeout: cfg.API.Timeout,
			})
			if err != nil {
				return ctx, fmt.Errorf("platform client: %w", err)
			}

			bgCtx, cancel := context.WithCancel(context.Background())
			bgCancel = cancel

			bus := eventbus.New(64)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			eventbus.NewNotificationRouter(bus).Register()
			go bus.Start(bgCtx)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*deskApp = *desk.NewApp(client, cfg, database, bus, &executil.RealExecutor{})

			// Start background KV sweep goroutine
			go sweep.Start(bgCtx, deskApp.KV, sweep.DefaultInterval)

			if pprofPort > 0 {
				if err := profiler.New(pprofPort, logger).Start(bgCtx); err != nil {
					return ctx, err
				}
			}

			return logging.WithView(ctx, "cli"), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if bgCancel != nil {
				bgCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	views := commands.NewViewsCmd(flags, deskApp)

	app = commands.NewSessionCmd(flags, deskApp).Register(app)
	app = commands.NewCommentCmd(flags, deskApp).Register(app)
	app = commands.NewMRCmd(flags, deskApp).Register(app)
	app = commands.NewGiteaCmd(flags, deskApp).Register(app)
	app = views.Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags, deskApp).Register(app)

	app.Flags = append(app.Flags, views.Flags()...)

	// Set the dashboard as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'reviewdesk --help' for usage", c.Args().First())
		}
		return views.RunDashboard(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
