package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"critical-images-beacon/internal/application/port/input"
	"critical-images-beacon/internal/application/port/output"
	"critical-images-beacon/internal/domain/entity"
	"critical-images-beacon/internal/infrastructure/eventloop"
	"critical-images-beacon/internal/usecase/beacon"
)

var _ input.Scanner = (*UseCase)(nil)

const defaultConcurrency = 4

// UseCase loads each target page, runs one beacon controller on it and
// reports what the beacon found and sent.
type UseCase struct {
	loader      output.PageLoader
	transport   output.BeaconTransport
	logger      output.LoggerPort
	concurrency int
}

func New(loader output.PageLoader, transport output.BeaconTransport, logger output.LoggerPort, concurrency int) *UseCase {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &UseCase{
		loader:      loader,
		transport:   transport,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Scan returns one report per target, in target order. A failing page is
// recorded in its report; only cancellation of ctx fails the batch.
func (uc *UseCase) Scan(ctx context.Context, targets []entity.Target) ([]entity.ScanReport, error) {
	uc.logger.Info("Scan started", "targets", len(targets), "concurrency", uc.concurrency)
	start := time.Now()

	reports := make([]entity.ScanReport, len(targets))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			report := uc.scanTarget(ctx, target)

			mu.Lock()
			reports[i] = report
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	uc.logger.Info("Scan finished", "targets", len(targets), "duration_ms", time.Since(start).Milliseconds())
	return reports, err
}

func (uc *UseCase) scanTarget(ctx context.Context, target entity.Target) entity.ScanReport {
	log := uc.logger.WithField("page", target.PageURL)
	report := entity.ScanReport{PageURL: target.PageURL}

	fail := func(err error) entity.ScanReport {
		log.Warn("Page scan failed", "error", err)
		report.Status = entity.ScanStatusFailed
		report.Error = err.Error()
		return report
	}

	session, err := uc.loader.Open(ctx, target.PageURL)
	if err != nil {
		return fail(fmt.Errorf("open page: %w", err))
	}
	defer session.Close()

	loop := eventloop.New()
	ctrl := beacon.Init(ctx, beacon.Env{
		Document:  session.Document(),
		Events:    loop,
		Scheduler: loop,
		Transport: uc.transport,
		Observer:  payloadLog{log},
		Logger:    log,
	}, target.Beacon.BeaconURL, target.Beacon.HTMLURL, target.Beacon.OptionsHash)
	report.Window = ctrl.WindowSize()

	if err := session.WaitLoad(ctx); err != nil {
		report.Result = ctrl.Result()
		return fail(err)
	}

	loop.Dispatch(entity.EventLoad)
	loop.RunUntilIdle()

	report.Status = entity.ScanStatusCompleted
	report.Result = ctrl.Result()
	log.Info("Page scanned",
		"critical", len(report.Result.Critical),
		"sent", report.Result.Sent,
	)
	return report
}

// payloadLog exposes every assembled payload at debug level.
type payloadLog struct {
	logger output.LoggerPort
}

func (p payloadLog) ObservePayload(cfg entity.BeaconConfig, payload string) {
	p.logger.Debug("Beacon payload", "beacon_url", cfg.BeaconURL, "html_url", cfg.HTMLURL, "payload", payload)
}
