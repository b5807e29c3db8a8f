package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/alexanderramin/timeai/internal/cli"
	"github.com/alexanderramin/timeai/internal/config"
	"github.com/alexanderramin/timeai/internal/db"
	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/alexanderramin/timeai/internal/repository"
	"github.com/alexanderramin/timeai/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	// Plain text when piped so --format text stays grep-able.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	app := &cli.App{}
	var closeDB func() error
	defer func() {
		if closeDB == nil {
			return
		}
		if cerr := closeDB(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing database: %w", cerr))
		}
	}()

	app.Setup = func(configPath string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
		observer := service.NewSlogUseCaseObserver(logger)

		app.Location = loc
		app.Scheduler = service.NewSchedulerService(service.SchedulerConfig{
			Window: domain.WorkWindow{
				StartHour: cfg.Schedule.WorkStartHour,
				EndHour:   cfg.Schedule.WorkEndHour,
			},
			HorizonDays:     cfg.Schedule.HorizonDays,
			FallbackMinutes: cfg.Schedule.FallbackMinutes,
			Location:        loc,
		}, logger, observer)
		app.Batch = service.NewBatchService(app.Scheduler, cfg.Batch.Concurrency, logger)

		// The store is only opened by commands that use it.
		app.Events = sync.OnceValues(func() (service.EventService, error) {
			database, err := db.OpenDB(cfg.DB.Path)
			if err != nil {
				return nil, fmt.Errorf("opening database: %w", err)
			}
			closeDB = database.Close

			eventRepo := repository.NewSQLiteEventRepo(database, loc)
			uow := db.NewSQLiteUnitOfWork(database)
			return service.NewEventService(eventRepo, uow, loc, observer), nil
		})
		return nil
	}

	return cli.NewRootCmd(app).Execute()
}
