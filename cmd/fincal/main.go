package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"fincal/internal/config"
	"fincal/internal/grid"
	appLog "fincal/internal/log"
	"fincal/internal/model"
	"fincal/internal/navigator"
	"fincal/internal/seed"
	"fincal/internal/stats"
	"fincal/internal/store"
	"fincal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	month      string
}

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdout))
}

// run is main without os.Exit, so deferred cleanup (log file, scheduler)
// always happens before the process exits with the returned code.
func run(args []string, stdout io.Writer) int {
	flags, err := parseFlags(args)
	if err != nil {
		return 2
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		if conf == nil {
			appLog.Error("failed to load config", err, "config_path", flags.configPath)
			return 1
		}
		appLog.Error("could not write default config; continuing with defaults", err, "config_path", flags.configPath)
	}
	conf.ApplyEnv()
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	closer := appLog.Setup(appLog.Options{Level: conf.LogLevel, File: conf.LogFile})
	defer closer.Close()

	appLog.Info("fincal starting", "version", "0.1.0")
	appLog.Info("effective config",
		"listen", conf.Listen,
		"log_level", conf.LogLevel,
		"refresh", conf.RefreshCron,
		"seed_builtin", conf.Seed.Builtin,
		"seed_files", len(conf.Seed.Files),
		"seed_horizon_months", conf.Seed.HorizonMonths,
		"strict_ids", conf.StrictIDs,
		"once", flags.once,
	)

	st := store.New()
	drafts, err := seed.Load(seed.Options{
		Builtin:       conf.Seed.Builtin,
		Files:         conf.Seed.Files,
		Now:           time.Now(),
		HorizonMonths: conf.Seed.HorizonMonths,
	})
	if err != nil {
		appLog.Error("seeding incomplete", err)
	}
	st.Seed(drafts)
	appLog.Info("store seeded", "event_count", st.Len())

	nav := navigator.New(time.Now)

	if flags.once {
		if flags.month != "" {
			ref, err := time.ParseInLocation(grid.MonthLayout, flags.month, time.Local)
			if err != nil {
				appLog.Error("invalid -month", err, "month", flags.month)
				return 2
			}
			for !grid.InMonth(nav.Reference(), ref) {
				if nav.Reference().Before(ref) {
					nav.NextMonth()
				} else {
					nav.PreviousMonth()
				}
			}
		}
		dumpMonth(stdout, st, nav)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(conf, st, nav, time.Now)

	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, srv.RefreshToday); err != nil {
		appLog.Error("invalid refresh schedule; today will not auto-refresh", err, "refresh", conf.RefreshCron)
	} else {
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	httpSrv := &http.Server{
		Addr:              conf.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
	appLog.Info("fincal exiting")
	return 0
}

func parseFlags(args []string) (flagConfig, error) {
	var cfg flagConfig

	defaultPath := os.Getenv(config.EnvConfigPath)
	if defaultPath == "" {
		defaultPath = "./fincal.yaml"
	}

	fs := flag.NewFlagSet("fincal", flag.ContinueOnError)
	fs.StringVar(&cfg.configPath, "config", defaultPath, "Path to config file")
	fs.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	fs.BoolVar(&cfg.once, "once", false, "Print the month grid and stats, then exit")
	fs.StringVar(&cfg.month, "month", "", "Month to print with -once (YYYY-MM, default current)")

	err := fs.Parse(args)
	return cfg, err
}

// dumpMonth prints a text calendar with per-day event counts followed by
// the stats bundle.
func dumpMonth(w io.Writer, st *store.Store, nav *navigator.Navigator) {
	v := nav.Snapshot()
	ref := v.Reference

	fmt.Fprintf(w, "%s %d\n", ref.Month(), ref.Year())
	fmt.Fprintln(w, " Sun    Mon    Tue    Wed    Thu    Fri    Sat")
	for _, week := range grid.BuildMonthGrid(ref) {
		for _, d := range week {
			n := len(st.EventsOnDay(d))
			switch {
			case !grid.InMonth(d, ref):
				fmt.Fprintf(w, " %2s    ", "..")
			case n > 0:
				fmt.Fprintf(w, " %2d(%d) ", d.Day(), n)
			default:
				fmt.Fprintf(w, " %2d    ", d.Day())
			}
		}
		fmt.Fprintln(w)
	}

	s := stats.Compute(st.All(), ref, v.Today)
	fmt.Fprintf(w, "\ntotal=%d this_month=%d today=%d active_days=%d progress=%d%%\n",
		s.TotalEvents, s.EventsThisMonth, s.EventsToday, s.UniqueActiveDays, s.MonthProgressPercent)
	for _, k := range model.Kinds() {
		fmt.Fprintf(w, "  %-9s %d\n", k, s.CountsByKind[k])
	}
}
