package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/nutri/internal/config"
	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/logging"
	"github.com/hpungsan/nutri/internal/mcp"
	"github.com/hpungsan/nutri/internal/notify"
	"github.com/hpungsan/nutri/internal/ops"
	"github.com/hpungsan/nutri/internal/schedule"
	"github.com/hpungsan/nutri/internal/web"
)

// newCLIApp creates the CLI application with all commands.
// a may be nil when only help or version output is needed.
func newCLIApp(a *app) *cli.App {
	app := &cli.App{
		Name:    "nutri",
		Usage:   "Daily macro tracker",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(a),
			chatCmd(a),
			parseCmd(a),
			foodCmd(a),
			configCmd(a),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveOptions selects which front ends serve runs next to the scheduler.
type serveOptions struct {
	mcp bool
	web bool
}

// serveCmd creates the serve command.
func serveCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server on stdio, the reminder scheduler and optionally the web UI",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "web", Usage: "Serve the web UI (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Web UI port (overrides config)"},
			&cli.BoolFlag{Name: "no-mcp", Usage: "Do not serve MCP on stdio"},
		},
		Action: func(c *cli.Context) error {
			if c.IsSet("port") {
				a.cfg.Web.Port = c.Int("port")
			}
			opts := serveOptions{
				mcp: !c.Bool("no-mcp"),
				web: a.cfg.Web.Enabled || c.Bool("web"),
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, a, opts, c.App.Reader, c.App.Writer, c.App.ErrWriter); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// serve runs the scheduler plus the selected front ends until ctx is done.
// When MCP is served, the end of its input stops everything.
func serve(ctx context.Context, a *app, opts serveOptions, in io.Reader, out, errOut io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mcpServer := mcp.NewServer(a.svc, a.cfg, Version)

	// stdout belongs to the MCP protocol when it is served
	textOut := out
	if opts.mcp {
		textOut = errOut
	}
	notifier, closeNotifier, err := newNotifier(a.cfg, mcpServer, textOut, a.logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	sched, err := schedule.FromConfig(a.cfg, a.svc, notifier, a.logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })

	if opts.web {
		srv, err := web.NewServer(a.svc, Version, a.cfg.Web.Addr(), a.logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return web.Run(gctx, srv, a.logger) })
	}

	if opts.mcp {
		g.Go(func() error {
			defer cancel()
			logging.Component(a.logger, logging.ComponentMCP).Info("serving MCP on stdio")
			if err := mcp.Serve(gctx, mcpServer, in, out); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// newNotifier builds the configured reminder backend. The returned close
// function is always safe to call.
func newNotifier(cfg *config.Config, mcpServer *server.MCPServer, out io.Writer, logger *slog.Logger) (notify.Notifier, func() error, error) {
	logger = logging.Component(logger, logging.ComponentNotify)
	noClose := func() error { return nil }

	var n notify.Notifier
	closeFn := noClose
	switch cfg.Notify.Backend {
	case config.BackendAMQP:
		pub, err := notify.DialAMQP(cfg.Notify.AMQPURL, cfg.Notify.AMQPExchange, cfg.Notify.AMQPRoutingKey)
		if err != nil {
			return nil, noClose, err
		}
		n, closeFn = pub, pub.Close
	case config.BackendMCP:
		n = mcp.NewNotifier(mcpServer)
	case config.BackendNone:
		n = notify.Nop{}
	default:
		n = notify.NewWriter(out)
	}

	logger.Debug("notifier ready", logging.FieldBackend, cfg.Notify.Backend)

	delivered := notify.Func(func(ctx context.Context, msg notify.Message) error {
		logger.DebugContext(ctx, "reminder delivered", logging.FieldKind, msg.Kind, logging.FieldBackend, cfg.Notify.Backend)
		return nil
	})
	return notify.Multi{n, delivered}, closeFn, nil
}

// chatCmd creates the chat command.
func chatCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Talk to the tracker line by line: food text or /commands",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "reminders", Usage: "Print scheduled reminders in the chat"},
		},
		Action: func(c *cli.Context) error {
			if err := chat(c.Context, a, c.Bool("reminders"), c.App.Reader, c.App.Writer); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// chat answers every input line until the input ends. With reminders, the
// scheduler runs alongside and prints to out.
func chat(ctx context.Context, a *app, reminders bool, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// the scheduler and the replies share out
	w := notify.NewWriter(out)
	g, gctx := errgroup.WithContext(ctx)

	if reminders {
		sched, err := schedule.FromConfig(a.cfg, a.svc, w, a.logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return sched.Run(gctx) })
	}

	g.Go(func() error {
		defer cancel()
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			reply, _ := a.svc.Handle(gctx, line)
			if err := w.Notify(gctx, notify.Message{Text: reply}); err != nil {
				return err
			}
			if gctx.Err() != nil {
				return nil
			}
		}
		return scanner.Err()
	})

	return g.Wait()
}

// parseCmd creates the parse command.
func parseCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Resolve food text against the catalog without logging it",
		ArgsUsage: "<text>",
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" && stdinHasData() {
				var err error
				if text, err = readStdin(c.App.Reader); err != nil {
					return outputError(errors.NewInternal(err))
				}
			}

			output, err := a.svc.Preview(c.Context, ops.LogTextInput{Text: text})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// foodCmd creates the food command and its subcommands.
func foodCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "food",
		Usage: "Manage the food catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every food",
				Action: func(c *cli.Context) error {
					foods := a.svc.ListFoods(c.Context)
					return outputJSON(c.App.Writer, map[string]any{"foods": foods, "count": len(foods)})
				},
			},
			{
				Name:      "search",
				Usage:     "Search foods by name",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultSearchLimit, Usage: "Maximum results"},
				},
				Action: func(c *cli.Context) error {
					output, err := a.svc.SearchFoods(c.Context, ops.SearchFoodsInput{
						Query: strings.Join(c.Args().Slice(), " "),
						Limit: c.Int("limit"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:      "add",
				Usage:     "Add or overwrite a food: nom|kcal|prot|lip|gluc[|basis[|unit_grams]] or flags",
				ArgsUsage: "[definition]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Food name"},
					&cli.Float64Flag{Name: "kcal", Usage: "Energy in kcal"},
					&cli.Float64Flag{Name: "protein", Usage: "Protein in grams"},
					&cli.Float64Flag{Name: "fat", Usage: "Fat in grams"},
					&cli.Float64Flag{Name: "carb", Usage: "Carbohydrates in grams"},
					&cli.StringFlag{Name: "basis", Value: string(food.Per100g), Usage: "per_100g or per_unit"},
					&cli.Float64Flag{Name: "unit-grams", Usage: "Weight of one item in grams"},
				},
				Action: func(c *cli.Context) error {
					input := ops.AddFoodInput{Definition: strings.Join(c.Args().Slice(), " ")}
					if input.Definition == "" {
						basis, err := food.ParseBasis(c.String("basis"))
						if err != nil {
							return outputError(errors.NewInvalidRequest(err.Error()))
						}
						input.Food = food.Food{
							Name:  c.String("name"),
							Basis: basis,
							Profile: food.Profile{
								Kcal:     c.Float64("kcal"),
								ProteinG: c.Float64("protein"),
								FatG:     c.Float64("fat"),
								CarbG:    c.Float64("carb"),
							},
							UnitGrams: c.Float64("unit-grams"),
						}
					}

					output, err := a.svc.AddFood(c.Context, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:      "export",
				Usage:     "Write the catalog to a JSONL file in the exports directory",
				ArgsUsage: "[file.jsonl]",
				Action: func(c *cli.Context) error {
					output, err := a.svc.ExportFoods(c.Context, ops.ExportFoodsInput{Path: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:      "import",
				Usage:     "Load foods from a catalog export",
				ArgsUsage: "<file.jsonl>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(ops.ImportModeError), Usage: "On existing foods: error, replace or skip"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return outputError(errors.NewInvalidRequest("import takes exactly one file"))
					}
					output, err := a.svc.ImportFoods(c.Context, ops.ImportFoodsInput{
						Path: c.Args().First(),
						Mode: ops.ImportMode(c.String("mode")),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
		},
	}
}

// configCmd creates the config command.
func configCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of YAML"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("json") {
				return outputJSON(c.App.Writer, a.cfg)
			}
			enc := yaml.NewEncoder(c.App.Writer)
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return enc.Close()
		},
	}
}

// Helper functions

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if nErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", nErr.Code, nErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from r.
func readStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
