package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashmap-kz/slackrep/config"
	"github.com/hashmap-kz/slackrep/internal/core/logger"
	"github.com/hashmap-kz/slackrep/internal/shared/x/strx"
	"github.com/hashmap-kz/slackrep/internal/version"
	"github.com/urfave/cli/v3"
)

func App() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to config file",
		Aliases: []string{"c"},
		Sources: cli.EnvVars("SLACKREP_CONFIG_PATH"),
	}
	modeFlag := &cli.StringFlag{
		Name:     "mode",
		Usage:    "Daemon mode: report/feedback/all",
		Aliases:  []string{"m"},
		Required: true,
		Sources:  cli.EnvVars("SLACKREP_DAEMON_MODE"),
	}

	app := &cli.Command{
		Name:    "slackrep",
		Usage:   "Slack channel report generator",
		Version: version.Version,
		Commands: []*cli.Command{
			// server modes
			{
				Name:  "daemon",
				Usage: "Running in a daemon mode: report/feedback/all",

				Description: strx.HeredocTrim(`
				report:   scheduled report generation (+ backup/retention when enabled)
				feedback: feedback REST API and the Slack interactivity endpoint
				all:      both sides in one process
				`),

				Flags: []cli.Flag{
					configFlag,
					modeFlag,
				},
				Action: func(_ context.Context, c *cli.Command) error {
					mode := c.String("mode")
					cfg := loadConfig(c, mode)
					verbose := strings.EqualFold(cfg.Log.Level, "trace")

					switch mode {
					case config.ModeReport, config.ModeFeedback, config.ModeAll:
						RunDaemonMode(&DaemonModeOpts{
							Mode:    mode,
							Verbose: verbose,
						})
					default:
						log.Fatalf("unknown mode: %s", mode)
					}
					return nil
				},
			},

			// one-shot report
			{
				Name:  "report",
				Usage: "Generate and post a single report, then exit",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "type",
						Usage: "Report type: auto/daily/weekly (overrides config)",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := loadConfig(c, config.ModeReportCMD)
					return RunReportOnce(ctx, cfg, c.String("type"))
				},
			},

			// one-shot backup
			{
				Name:  "backup",
				Usage: "Archive the weekly channel history, then exit",
				Flags: []cli.Flag{
					configFlag,
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := loadConfig(c, config.ModeBackupCMD)
					return RunBackupOnce(ctx, cfg)
				},
			},

			// Validate command
			{
				Name:  "validate",
				Usage: "Validate the config file without running the application",
				Flags: []cli.Flag{
					configFlag,
					modeFlag,
				},
				Action: func(_ context.Context, c *cli.Command) error {
					mode := c.String("mode")
					if mode == "" {
						log.Fatal("required flag 'mode' is empty")
					}
					_ = loadConfig(c, mode)
					fmt.Println("Configuration is valid.")
					return nil
				},
			},
		},
	}

	return app
}

func loadConfig(c *cli.Command, mode string) *config.Config {
	configPath := c.String("config")

	// 1) if -c flag is set -> must read config from file
	// 2) if $SLACKREP_CONFIG_PATH is set -> must read config from file
	// 3) read config with go-envconfig otherwise
	var cfg *config.Config
	if configPath != "" {
		cfg = config.MustLoad(configPath, mode)
	} else {
		cfg = config.MustEnvconfig(mode)
	}

	// debug config (NOTE: sensitive fields are hidden)
	_, _ = fmt.Fprintf(os.Stderr, "STARTING WITH CONFIGURATION (%s):\n%s\n\n",
		filepath.ToSlash(configPath),
		cfg.String(),
	)

	logger.Init(&logger.Opts{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	return cfg
}
