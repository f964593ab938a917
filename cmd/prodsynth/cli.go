package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/prodsynth/internal/config"
	"github.com/hpungsan/prodsynth/internal/errors"
	"github.com/hpungsan/prodsynth/internal/ops"
	"github.com/hpungsan/prodsynth/internal/web"
)

// defaultPort is the web UI port when --port is not given.
const defaultPort = 7410

// exitVerifyMismatch is the exit status when verify finds a dataset that
// no longer matches its run.
const exitVerifyMismatch = 2

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "prodsynth",
		Usage:   "Seeded synthetic productivity datasets",
		Version: Version,
		Commands: []*cli.Command{
			generateCmd(db, cfg, logger),
			runsCmd(db),
			showCmd(db),
			latestCmd(db),
			verifyCmd(db),
			deleteCmd(db),
			purgeCmd(db),
			serveCmd(db, cfg, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// generateCmd creates the generate command.
func generateCmd(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a productivity dataset and write it as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file (default: output_name from config)"},
			&cli.IntFlag{Name: "rows", Aliases: []string{"n"}, Usage: "Number of rows (0 writes only the header)"},
			&cli.IntFlag{Name: "users", Aliases: []string{"u"}, Usage: "Size of the user pool"},
			&cli.Uint64Flag{Name: "seed", Aliases: []string{"s"}, Usage: "Generator seed"},
		},
		Action: func(c *cli.Context) error {
			input := ops.GenerateInput{Path: c.String("path")}

			// IsSet keeps an explicit 0 distinct from "use the default"
			if c.IsSet("rows") {
				rows := c.Int("rows")
				input.Rows = &rows
			}
			if c.IsSet("users") {
				users := c.Int("users")
				input.Users = &users
			}
			if c.IsSet("seed") {
				seed := c.Uint64("seed")
				input.Seed = &seed
			}

			output, err := ops.Generate(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			logger.Info("dataset generated",
				zap.String("id", output.ID),
				zap.String("path", output.Path),
				zap.Int("rows", output.Rows),
				zap.Int("users", output.Users),
				zap.Uint64("seed", output.Seed),
				zap.String("sha256", output.SHA256),
			)
			fmt.Fprintln(c.App.ErrWriter, output.Message)

			return outputJSON(c.App.Writer, output)
		},
	}
}

// runsCmd creates the runs command.
func runsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recorded runs, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Pagination offset"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted runs"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a run with its summary",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted runs"},
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"md"}, Usage: "Print the summary as Markdown instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, db, ops.FetchInput{
				ID:             c.Args().First(),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("markdown") {
				_, err := io.WriteString(c.App.Writer, output.Summary.Markdown())
				return err
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// latestCmd creates the latest command.
func latestCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "Show the most recent run",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted runs"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Latest(c.Context, db, ops.LatestInput{
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// verifyCmd creates the verify command.
func verifyCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Regenerate a run and compare it with the recorded digest and the file on disk",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Verify(c.Context, db, ops.VerifyInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			if err := outputJSON(c.App.Writer, output); err != nil {
				return err
			}
			if !output.Reproducible || !output.FileMatches {
				return cli.Exit(output.Message, exitVerifyMismatch)
			}
			return nil
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a run (the CSV file is left in place)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted runs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web UI and Prometheus metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: defaultPort, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}

			srv, err := web.NewServer(db, cfg, logger, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			return web.Run(srv, logger)
		},
	}
}

// Helper functions

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var sErr *errors.SynthError
	if stderrors.As(err, &sErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// exitCode returns the status carried by a cli.ExitCoder, or 1.
func exitCode(err error) int {
	var coder cli.ExitCoder
	if stderrors.As(err, &coder) && coder.ExitCode() != 0 {
		return coder.ExitCode()
	}
	return 1
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
