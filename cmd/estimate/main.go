// Command estimate считает калории на одном изображении и печатает таблицу.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"calorie-vision/config"
	"calorie-vision/internal/container"
	"calorie-vision/internal/infrastructure/storage"
	"calorie-vision/internal/logger"
	"calorie-vision/internal/report"
)

const (
	flagImage       = "image"
	flagNoVisualize = "no-visualize"
	flagJSON        = "json"
	flagOutputDir   = "output-dir"
	flagDebug       = "debug"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	app := &cli.App{
		Name:            "estimate",
		Usage:           "detect fruits and vegetables on a photo and estimate their calories",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagImage,
				Aliases: []string{"i"},
				Value:   cfg.SampleImage,
				Usage:   "image `FILE` to analyze",
			},
			&cli.StringFlag{
				Name:  flagOutputDir,
				Value: cfg.OutputDir,
				Usage: "`DIR` for the annotated image",
			},
			&cli.BoolFlag{
				Name:  flagNoVisualize,
				Usage: "skip drawing and saving the annotated image",
			},
			&cli.BoolFlag{
				Name:  flagJSON,
				Usage: "print the result as JSON",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, cfg)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context, cfg *config.Config) error {
	level := cfg.LogLevel
	if c.Bool(flagDebug) {
		level = "debug"
	}
	lg, err := logger.New(level)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	table := container.LoadCalorieTable(cfg.CaloriesDBPath, lg)

	detector, closeDetector, err := container.NewDetector(cfg, table, lg)
	if err != nil {
		return fmt.Errorf("create detector: %w", err)
	}
	defer func() {
		if err := closeDetector(); err != nil {
			lg.Warn("close detector", zap.Error(err))
		}
	}()

	appContainer, err := container.New(storage.NewMemorySessionRepository(), detector, table, c.String(flagOutputDir), lg)
	if err != nil {
		return err
	}

	visualize := !c.Bool(flagNoVisualize)
	out, err := appContainer.Pipeline.Run(c.Context, c.String(flagImage), visualize)
	if err != nil {
		return err
	}
	if visualize && out.SavedPath == "" {
		lg.Warn("annotated image was not saved", zap.String("path", appContainer.Pipeline.OutputPath()))
	}

	w := c.App.Writer
	if c.Bool(flagJSON) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Result)
	}

	fmt.Fprintln(w, report.Table(out.Result))
	if out.SavedPath != "" {
		fmt.Fprintf(w, "Annotated image saved to %s\n", out.SavedPath)
	}
	return nil
}
