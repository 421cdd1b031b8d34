package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"roulette-lab/contract"
	"roulette-lab/domain"
	"roulette-lab/infrastructure/calendar"
	"roulette-lab/infrastructure/chat"
	"roulette-lab/internal"
	"roulette-lab/observability"
	"roulette-lab/runtime/workers"
	"roulette-lab/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the process lifecycle, and
// centralizes error reporting so defers always execute before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. External collaborators
	chatClient := chat.NewClient(log, config.ChatBaseURL, config.BotToken, config.HTTPTimeout)

	// Calendar booking is strictly best-effort: unconfigured means runs
	// are announcement-only, never a startup failure.
	var booker contract.MeetingBooker
	if config.CalendarConfigured() {
		booker = calendar.NewClient(log, config.CalendarBaseURL,
			config.CalendarToken, config.CalendarOrganizer, config.HTTPTimeout)
		log.Info("Calendar booking enabled", "organizer", config.CalendarOrganizer)
	} else {
		log.Info("Calendar booking disabled (no calendar credentials)")
	}

	// 3. Core service & telemetry
	monitoring := observability.NewMonitoringManager(log)
	service := services.NewRouletteService(
		log, chatClient, booker, chatClient, monitoring, domain.NewRoulette(),
		config.ChannelID, config.GroupSize, config.MeetingDuration, config.MeetingLeadTime,
	)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Weekly scheduler under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	scheduler := workers.NewSchedulerWorker(log, func(ctx context.Context) {
		service.RunOnce(ctx)
	}, config.Weekday(), config.ClockOffset(), config.Location())

	supDone := make(chan struct{})
	go func() {
		sup.Add(scheduler).Run(ctx)
		close(supDone)
	}()

	// 6. Status server: health endpoint + on-demand trigger
	statusServer := internal.NewStatusServer(log, config.HTTPPort, monitoring,
		internal.DependencyStatus{
			ChatConfigured:     true,
			CalendarConfigured: config.CalendarConfigured(),
		},
		func(ctx context.Context) { service.RunOnce(ctx) },
	)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting status server", "addr", statusServer.Addr)
		if err := statusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("status server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	_ = statusServer.Close()
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
