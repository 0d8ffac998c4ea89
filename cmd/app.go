package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"kodbot/internal/bot"
	"kodbot/internal/config"
	"kodbot/internal/content"
	"kodbot/internal/domain"
	"kodbot/internal/generator"
	"kodbot/internal/health"
	"kodbot/internal/metrics"
	"kodbot/internal/publisher"
	"kodbot/internal/scheduler"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 30 * time.Second

type app struct {
	cfg       config.Config
	schedule  []domain.ScheduleEntry
	bot       *bot.Bot
	metrics   *metrics.Collector
	publisher *publisher.Publisher
	log       *slog.Logger
}

func newApp(ctx context.Context) (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	schedule, err := parseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	openAI, err := generator.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		return nil, fmt.Errorf("create OpenAI generator: %w", err)
	}
	log.InfoContext(ctx, "OpenAI generator is initialized",
		"model", cfg.OpenAIModel,
		"timeoutSeconds", cfg.GenerationTimeout.Seconds(),
		"retries", cfg.GenerationRetries)

	gen := generator.NewResilient(openAI, generator.ResilientConfig{
		Timeout:    cfg.GenerationTimeout,
		MaxRetries: cfg.GenerationRetries,
	}, func(now time.Time) string {
		return content.Fallback(now, nil)
	}, log)

	botInst, err := bot.New(cfg.TelegramToken, cfg.ChannelID, cfg.DeliveryTimeout, log)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	log.InfoContext(ctx, "Bot is initialized",
		"username", botInst.Username(),
		"target", botInst.Target())

	collector := metrics.New(version)

	pub := publisher.New(gen, botInst, collector, publisher.Config{
		Location: scheduler.Location(),
		Language: cfg.PostLanguage,
		Schedule: schedule,
	}, log)

	return &app{
		cfg:       cfg,
		schedule:  schedule,
		bot:       botInst,
		metrics:   collector,
		publisher: pub,
		log:       log,
	}, nil
}

func parseSchedule(clocks []string) ([]domain.ScheduleEntry, error) {
	if len(clocks) == 0 {
		return nil, errors.New("SCHEDULE must list at least one HH:MM entry")
	}

	entries := make([]domain.ScheduleEntry, 0, len(clocks))

	var errs []error
	for _, clock := range clocks {
		entry, err := domain.ParseScheduleEntry(clock)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("parse SCHEDULE: %w", err)
	}

	return entries, nil
}

func (a *app) close() {
	a.bot.Stop()
}

// run sends the startup test post, then serves liveness and runs the
// scheduler until ctx is done.
func (a *app) run(ctx context.Context, skipStartupTest bool) error {
	start := time.Now()

	if skipStartupTest {
		a.log.InfoContext(ctx, "Startup test post is skipped")
	} else if a.publisher.PublishTest(ctx) {
		a.log.InfoContext(ctx, "Startup test post is delivered")
	} else {
		a.log.WarnContext(ctx, "Startup test post is not delivered")
	}

	sched := scheduler.New(ctx, a.publisher, a.schedule, a.cfg.FiringTimeout, a.metrics, a.log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.PollSpec,
		"timezone", scheduler.Location().String(),
		"slots", sched.Clocks())

	server := health.New(serviceName, a.cfg.Port, a.metrics.Handler(), a.log)

	var g errgroup.Group

	// Liveness is independent of posting: a failed listener is logged and the
	// scheduler keeps running until ctx is done.
	g.Go(func() error {
		if err := server.Run(ctx); err != nil {
			a.log.ErrorContext(ctx, "Health server failed",
				"error", err,
				"port", a.cfg.Port)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()

		sched.Stop(stopCtx)
		a.log.InfoContext(stopCtx, "Scheduler is stopped")

		return nil
	})

	err := g.Wait()

	a.log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	return err
}
