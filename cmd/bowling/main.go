package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/Black-And-White-Club/bowling-bot/app"
	bowlingservice "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/application"
	"github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/application/parsers"
	"github.com/Black-And-White-Club/bowling-bot/config"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "bowling",
		Usage:     "ten-pin bowling scoring service",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"BOWLING_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			scoreCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and message router",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger := app.NewLogger(cfg.Observability)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			application := app.NewApp(cfg, logger)
			if err := application.Initialize(ctx); err != nil {
				logger.Error("Failed to initialize application", attr.Error(err))
				application.Close()
				return err
			}

			runErr := application.Run(ctx)
			if err := application.Close(); err != nil {
				logger.Error("Error during shutdown", attr.Error(err))
			}
			return runErr
		},
	}
}

func scoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "score a roll sequence or a scorecard file",
		ArgsUsage: "[pins...] | --file card.csv",
		// Flags are parsed by hand so negative pin counts reach the engine
		// instead of being read as unknown flags.
		SkipFlagParsing: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "CSV or XLSX scorecard to score instead of arguments",
			},
		},
		Action: func(c *cli.Context) error {
			if first := c.Args().First(); first == "-h" || first == "--help" {
				return cli.ShowSubcommandHelp(c)
			}
			player, rolls, err := readRolls(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			svc := bowlingservice.NewBowlingService(nil, nil, discardLogger(), nil, nil, nil)
			info, err := svc.ScoreRolls(c.Context, rolls)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			info.Player = player
			return printCard(c.App.Writer, info)
		},
	}
}

func readRolls(c *cli.Context) (string, []int, error) {
	path, args, err := splitScoreArgs(c.Args().Slice())
	if err != nil {
		return "", nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", nil, err
		}
		parser, err := parsers.NewFactory().GetParser(path)
		if err != nil {
			return "", nil, err
		}
		card, err := parser.Parse(data)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", path, err)
		}
		return card.Player, card.Rolls, nil
	}

	rolls := make([]int, 0, len(args))
	for _, arg := range args {
		pins, err := strconv.Atoi(arg)
		if err != nil {
			return "", nil, fmt.Errorf("invalid roll %q", arg)
		}
		rolls = append(rolls, pins)
	}
	return "", rolls, nil
}

// splitScoreArgs separates the --file flag from roll arguments. Anything
// else starting with a dash is treated as a roll.
func splitScoreArgs(args []string) (string, []string, error) {
	var path string
	rolls := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			rolls = append(rolls, args[i+1:]...)
			return path, rolls, nil
		case arg == "--file" || arg == "-file" || arg == "-f":
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("flag %s needs a file path", arg)
			}
			i++
			path = args[i]
		case strings.HasPrefix(arg, "--file="):
			path = strings.TrimPrefix(arg, "--file=")
		default:
			rolls = append(rolls, arg)
		}
	}
	if path != "" && len(rolls) > 0 {
		return "", nil, errors.New("pass either rolls or --file, not both")
	}
	return path, rolls, nil
}

// printCard writes the frame card as aligned columns.
func printCard(w io.Writer, info *bowlingservice.GameInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	frames := []string{"Frame"}
	marks := []string{"Marks"}
	totals := []string{"Total"}
	for _, f := range info.Frames {
		frames = append(frames, strconv.Itoa(f.Number))
		marks = append(marks, strings.Join(f.Marks, " "))
		if len(f.Rolls) == 0 {
			totals = append(totals, "")
		} else {
			totals = append(totals, strconv.Itoa(f.Total))
		}
	}

	if info.Player != "" {
		fmt.Fprintf(tw, "Player\t%s\n", info.Player)
	}
	for _, row := range [][]string{frames, marks, totals} {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	state := "in progress"
	if info.Complete {
		state = "complete"
	}
	fmt.Fprintf(w, "Score: %d (%s)\n", info.Score, state)
	if info.Message != "" {
		fmt.Fprintln(w, info.Message)
	}
	return nil
}
