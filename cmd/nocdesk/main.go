// nocdesk is the terminal dashboard for the SMS and voice NOC desks. It
// polls the ticketing backend, aggregates ticket, alert and request
// notifications into one bell, shows unassigned-ticket alerts and
// assigned-ticket reminders as banners, and runs new tickets through the
// duplicate and assignment checks before they are created.
//
// With --headless it runs the same polling loop without a terminal UI and
// logs what the dashboard would show.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/nhle/noc-desk/internal/app"
	"github.com/nhle/noc-desk/internal/credential"
	"github.com/nhle/noc-desk/internal/desk"
	"github.com/nhle/noc-desk/internal/dismissal"
	"github.com/nhle/noc-desk/internal/logger"
	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/reminder"
	"github.com/nhle/noc-desk/internal/source/rest"
	"github.com/nhle/noc-desk/internal/store"
	appsync "github.com/nhle/noc-desk/internal/sync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	logLevel   string
	user       string
	headless   bool
	initConfig bool
	setToken   string
	resetMarks bool
}

func run() error {
	var opts options

	flagSet := pflag.NewFlagSet("nocdesk", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "path to the YAML config file")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	flagSet.StringVar(&opts.user, "user", "", "override identity.user_id")
	flagSet.BoolVar(&opts.headless, "headless", false, "poll and log without the terminal UI")
	flagSet.BoolVar(&opts.initConfig, "init", false, "write the effective config to --config and exit")
	flagSet.StringVar(&opts.setToken, "set-token", "", "store the backend API token in the OS keyring and exit")
	flagSet.BoolVar(&opts.resetMarks, "reset-marks", false, "forget the desk user's read and dismissed marks and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.user != "" {
		cfg.Identity.UserID = opts.user
	}

	if opts.initConfig {
		if err := model.SaveConfig(opts.configPath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", opts.configPath)
		return nil
	}

	if opts.setToken != "" {
		vault, err := credential.Open()
		if err != nil {
			return err
		}
		return vault.SetToken(cfg.Backend.BaseURL, opts.setToken)
	}

	log, closeLog, err := logger.Init(cfg.Log, !opts.headless)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Persistence)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.resetMarks {
		if cfg.Identity.UserID == "" {
			return errors.New("--reset-marks needs identity.user_id or --user")
		}
		if err := dismissal.ResetUser(ctx, st, cfg.Identity.UserID, log); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "cleared marks for %s\n", cfg.Identity.UserID)
		return nil
	}

	token, err := loadToken(cfg.Backend.BaseURL)
	if err != nil {
		return err
	}
	backend := rest.New(cfg.Backend.BaseURL, token, time.Duration(cfg.Backend.TimeoutSec)*time.Second)

	if cfg.Identity.UserID == "" {
		me, err := backend.ValidateConnection(ctx)
		if err != nil {
			return fmt.Errorf("resolving desk user (set identity.user_id or --user): %w", err)
		}
		cfg.Identity.UserID = me.ID
		log.Info("signed in", "user", me.Username, "id", me.ID)
	}

	d := desk.New(desk.Config{
		UserID:     cfg.Identity.UserID,
		AlertsMode: cfg.Alerts.Mode,
		Poll:       cfg.Poll,
	}, backend, st, nil, log)
	d.Load(ctx)

	poller := appsync.New(nil, log)
	for _, job := range d.Jobs() {
		poller.Register(job)
	}

	if opts.headless {
		return runHeadless(ctx, log, d, poller)
	}

	program := tea.NewProgram(app.New(d, poller, nil), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	poller.Stop()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// loadToken prefers NOCDESK_TOKEN, then the keyring. A missing token is
// not fatal; the backend may not require one.
func loadToken(baseURL string) (string, error) {
	if t := strings.TrimSpace(os.Getenv("NOCDESK_TOKEN")); t != "" {
		return t, nil
	}
	vault, err := credential.Open()
	if err != nil {
		slog.Warn("keyring unavailable, continuing without a token", "error", err)
		return "", nil
	}
	token, err := vault.Token(baseURL)
	if errors.Is(err, credential.ErrNotFound) {
		return "", nil
	}
	return token, err
}

// runHeadless refreshes every feed once, then applies poll results until
// ctx is cancelled, logging the dashboard state after each applied cycle.
func runHeadless(ctx context.Context, log *slog.Logger, d *desk.Desk, p *appsync.Poller) error {
	for _, msg := range p.RefreshAll(ctx) {
		if d.Apply(ctx, msg) {
			logDashboard(log, d, msg)
		}
	}

	p.Start()
	defer p.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case msg := <-p.Results():
			if d.Apply(ctx, msg) {
				logDashboard(log, d, msg)
			}
		}
	}
}

func logDashboard(log *slog.Logger, d *desk.Desk, msg appsync.ResultMsg) {
	feed := d.Feed()
	board := d.Board()
	log.Info("dashboard",
		"feed", msg.Feed,
		"seq", msg.Seq,
		"unread", feed.UnreadCount(),
		"badge", feed.Badge(),
		"unassigned_alerts", len(board.Active(model.FeedUnassignedAlerts)),
		"unassigned_snoozed", snoozed(board, model.FeedUnassignedAlerts),
		"reminders", len(board.Active(model.FeedAssignedReminders)),
		"reminders_snoozed", snoozed(board, model.FeedAssignedReminders),
	)
}

// snoozed counts fetched items of feed that are hidden by a dismissal.
func snoozed(board *reminder.Board, feed model.FeedName) int {
	return len(board.Fetched(feed)) - len(board.Active(feed))
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `nocdesk: terminal dashboard for the SMS and voice NOC desks.

Reads ~/.config/nocdesk/config.yaml (or --config). Every key can be
overridden with a NOCDESK_ environment variable, e.g.
NOCDESK_BACKEND_BASE_URL. The API token comes from NOCDESK_TOKEN or the
OS keyring (see --set-token).

Usage:
  nocdesk [flags]

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
