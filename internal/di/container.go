package di

import (
	"context"
	"fmt"
	"time"

	"critical-images-beacon/internal/application/port/input"
	"critical-images-beacon/internal/application/port/output"
	"critical-images-beacon/internal/domain/entity"
	"critical-images-beacon/internal/infrastructure/browser/rod"
	"critical-images-beacon/internal/infrastructure/browser/static"
	"critical-images-beacon/internal/infrastructure/logger"
	"critical-images-beacon/internal/infrastructure/transport/httpbeacon"
	"critical-images-beacon/internal/usecase/scan"
)

type Container struct {
	Logger  output.LoggerPort
	Loader  output.PageLoader
	Sender  *httpbeacon.Sender
	Scanner input.Scanner

	browser *rod.BrowserAdapter
}

type Config struct {
	Engine         entity.Engine
	Width          int
	Height         int
	Timeout        time.Duration
	Concurrency    int
	BrowserBin     string
	Headless       bool
	NoSandbox      bool
	Verbose        bool
	LogToConsole   bool
	TaskName       string
	LoggerOverride output.LoggerPort
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log := cfg.LoggerOverride
	if log == nil {
		l, err := logger.NewLoggerAdapter(logger.Config{
			TaskName: cfg.TaskName,
			Verbose:  cfg.Verbose,
			Console:  cfg.LogToConsole,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		log = l
	}

	client := httpbeacon.NewHTTPClient(httpbeacon.Config{Timeout: cfg.Timeout})
	c := &Container{
		Logger: log,
		Sender: httpbeacon.NewSender(client, log),
	}

	switch cfg.Engine {
	case entity.EngineStatic:
		c.Loader = static.NewLoader(static.Layout{
			Width:  float64(cfg.Width),
			Height: float64(cfg.Height),
		}, client, log)
	case entity.EngineRod, "":
		browserCfg := rod.DefaultConfig()
		browserCfg.Headless = cfg.Headless
		browserCfg.NoSandbox = cfg.NoSandbox
		browserCfg.Bin = cfg.BrowserBin
		browserCfg.Width = cfg.Width
		browserCfg.Height = cfg.Height
		browserCfg.Timeout = cfg.Timeout

		browser, err := rod.NewBrowserAdapter(ctx, browserCfg, log)
		if err != nil {
			log.Close()
			return nil, fmt.Errorf("failed to create browser: %w", err)
		}
		c.browser = browser
		c.Loader = browser
	default:
		log.Close()
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}

	c.Scanner = scan.New(c.Loader, c.Sender, log, cfg.Concurrency)
	return c, nil
}

// Close waits for in-flight beacons before tearing the browser down.
func (c *Container) Close() {
	if c.Sender != nil {
		c.Sender.Wait()
	}
	if c.browser != nil {
		c.browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
