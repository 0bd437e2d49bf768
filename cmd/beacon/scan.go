package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"critical-images-beacon/internal/di"
	"critical-images-beacon/internal/domain/entity"
	"critical-images-beacon/internal/infrastructure/env"
	"critical-images-beacon/internal/infrastructure/manifest"
)

var (
	ErrInvalidViewport = errors.New("viewport must look like WIDTHxHEIGHT")
	ErrNoTargets       = errors.New("no pages to scan: pass URLs or --manifest")
	ErrNoBeaconURL     = errors.New("beacon url is required")
)

type scanOptions struct {
	beaconURL   string
	htmlURL     string
	optionsHash string
	manifest    string
	engine      string
	viewport    string
	browserBin  string
	concurrency int
	timeout     time.Duration
	headless    bool
	noSandbox   bool
	jsonOutput  bool
	logConsole  bool
}

func NewScanCmd(envService *env.EnvService) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Load pages and beacon their critical images",
		Long: `scan loads every page, waits for the load event, yields once, and then
classifies img and input elements carrying a pagespeed_url_hash attribute.
Elements whose top-left corner lies within the viewport are critical; their
hashes are posted to the beacon URL as oh=<options hash>&ci=<hash>,<hash>,...

Pages come from the arguments or from a YAML manifest. With --engine static,
pages are laid out from their inline styles instead of being rendered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.beaconURL, "beacon-url", envService.Get(env.KeyBeaconURL), "Beacon endpoint")
	f.StringVar(&opts.htmlURL, "html-url", "", "URL to report pages as (default: the page URL)")
	f.StringVar(&opts.optionsHash, "options-hash", envService.Get(env.KeyOptionsHash), "Options hash sent as oh")
	f.StringVarP(&opts.manifest, "manifest", "m", "", "YAML file listing pages to scan")
	f.StringVar(&opts.engine, "engine", string(entity.EngineRod), "Page engine: rod or static")
	f.StringVar(&opts.viewport, "viewport", "1280x800", "Viewport size as WIDTHxHEIGHT")
	f.StringVar(&opts.browserBin, "browser-bin", envService.Get(env.KeyBrowserBin), "Chromium binary (rod engine)")
	f.IntVarP(&opts.concurrency, "concurrency", "c", envService.GetInt(env.KeyConcurrency, 4), "Pages scanned in parallel")
	f.DurationVar(&opts.timeout, "timeout", envService.GetDuration(env.KeyTimeout, 30*time.Second), "Per page and per beacon timeout")
	f.BoolVar(&opts.headless, "headless", envService.GetBool(env.KeyHeadless, true), "Run the browser headless")
	f.BoolVar(&opts.noSandbox, "no-sandbox", false, "Disable the Chromium sandbox")
	f.BoolVar(&opts.jsonOutput, "json", false, "Print reports as JSON")
	f.BoolVar(&opts.logConsole, "log-console", false, "Mirror log entries to stderr")

	return cmd
}

func runScan(cmd *cobra.Command, args []string, opts *scanOptions) error {
	width, height, err := parseViewport(opts.viewport)
	if err != nil {
		return err
	}

	targets, err := resolveTargets(args, opts)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	container, err := di.NewContainer(cmd.Context(), di.Config{
		Engine:       entity.Engine(opts.engine),
		Width:        width,
		Height:       height,
		Timeout:      opts.timeout,
		Concurrency:  opts.concurrency,
		BrowserBin:   opts.browserBin,
		Headless:     opts.headless,
		NoSandbox:    opts.noSandbox,
		Verbose:      verbose,
		LogToConsole: opts.logConsole,
		TaskName:     "scan",
	})
	if err != nil {
		return err
	}
	defer container.Close()

	reports, err := container.Scanner.Scan(cmd.Context(), targets)
	if err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}

	if opts.jsonOutput {
		err = writeJSON(cmd.OutOrStdout(), reports)
	} else {
		writeText(cmd.OutOrStdout(), reports)
	}
	if err != nil {
		return err
	}

	if failed := countFailed(reports); failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(reports))
	}
	return nil
}

func resolveTargets(args []string, opts *scanOptions) ([]entity.Target, error) {
	defaults := entity.BeaconConfig{
		BeaconURL:   opts.beaconURL,
		HTMLURL:     opts.htmlURL,
		OptionsHash: opts.optionsHash,
	}

	var targets []entity.Target
	if opts.manifest != "" {
		f, err := manifest.Load(opts.manifest)
		if err != nil {
			return nil, err
		}
		targets = f.Resolve(defaults)
	}

	for _, arg := range args {
		cfg := defaults
		if cfg.HTMLURL == "" {
			cfg.HTMLURL = arg
		}
		targets = append(targets, entity.Target{PageURL: arg, Beacon: cfg})
	}

	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	for _, t := range targets {
		if t.Beacon.BeaconURL == "" {
			return nil, fmt.Errorf("%s: %w", t.PageURL, ErrNoBeaconURL)
		}
	}
	return targets, nil
}

func parseViewport(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidViewport, s)
	}
	width, errW := strconv.Atoi(strings.TrimSpace(w))
	height, errH := strconv.Atoi(strings.TrimSpace(h))
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidViewport, s)
	}
	return width, height, nil
}

func countFailed(reports []entity.ScanReport) int {
	n := 0
	for _, r := range reports {
		if r.Status == entity.ScanStatusFailed {
			n++
		}
	}
	return n
}
