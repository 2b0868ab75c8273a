// Command booking lists doctors and books appointments against the hospital API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/hospital-booking/internal/booking"
	appconfig "github.com/wolfman30/hospital-booking/internal/config"
	"github.com/wolfman30/hospital-booking/internal/hospital"
	"github.com/wolfman30/hospital-booking/internal/observability/metrics"
	"github.com/wolfman30/hospital-booking/internal/session"
	"github.com/wolfman30/hospital-booking/pkg/logging"
)

const usage = `usage: booking [-metrics] <command> [flags]

  -metrics prints the collected client and booking metrics to stderr

commands:
  doctors                 list doctors
  login   -email -password
  logout
  book    -doctor -name -email -age -date -time
`

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type app struct {
	cfg      *appconfig.Config
	logger   *logging.Logger
	session  *hospital.Session
	client   *hospital.Client
	booking  *metrics.BookingMetrics
	registry *prometheus.Registry
	redis    *redis.Client
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("booking", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	showMetrics := global.Bool("metrics", false, "print collected metrics to stderr")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	args = global.Args()
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg := appconfig.Load()
	a := newApp(cfg, logging.NewWithWriter(cfg.LogLevel, stderr))
	defer a.close()

	code := a.dispatch(ctx, args, stdout, stderr)
	if *showMetrics {
		if err := a.writeMetrics(stderr); err != nil {
			a.logger.Error("failed to write metrics", "error", err)
		}
	}
	return code
}

func (a *app) dispatch(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	switch args[0] {
	case "doctors":
		return a.listDoctors(ctx, stdout, stderr)
	case "login":
		return a.login(ctx, args[1:], stdout, stderr)
	case "logout":
		return a.logout(ctx, stdout, stderr)
	case "book":
		return a.book(ctx, args[1:], stdout, stderr)
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

func newApp(cfg *appconfig.Config, logger *logging.Logger) *app {
	a := &app{cfg: cfg, logger: logger}

	var store hospital.TokenStore
	if cfg.UsesRedisSessions() {
		a.redis = session.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisTLS)
		store = session.NewRedisTokenStore(a.redis)
	} else {
		store = hospital.NewMemoryTokenStore()
	}
	a.session = hospital.NewSession(store)

	opts := []hospital.Option{
		hospital.WithSession(a.session),
		hospital.WithLogger(logger),
	}
	if cfg.MetricsEnabled {
		a.registry = prometheus.NewRegistry()
		opts = append(opts, hospital.WithMetrics(metrics.NewClientMetrics(a.registry)))
		a.booking = metrics.NewBookingMetrics(a.registry)
	}
	a.client = hospital.NewClient(cfg.APIBaseURL, opts...)
	return a
}

// writeMetrics dumps the registry in the Prometheus text format.
func (a *app) writeMetrics(w io.Writer) error {
	if a.registry == nil {
		_, err := fmt.Fprintln(w, "metrics are disabled (METRICS_ENABLED=false)")
		return err
	}
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func (a *app) controller() *booking.Controller {
	return booking.NewController(a.client,
		booking.WithLogger(a.logger),
		booking.WithMetrics(a.booking),
		booking.WithPresenter(booking.NewPresenter(a.cfg.MessageClearDelay)),
	)
}

func (a *app) listDoctors(ctx context.Context, stdout, stderr io.Writer) int {
	ctrl := a.controller()
	doctors, err := ctrl.LoadDoctors(ctx)
	if err != nil {
		_ = booking.RenderMessage(stderr, ctrl.Presenter().Current())
		return 1
	}
	if err := booking.RenderDoctors(stdout, doctors); err != nil {
		a.logger.Error("failed to render doctors", "error", err)
		return 1
	}
	return 0
}

func (a *app) login(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "staff email")
	password := fs.String("password", "", "staff password")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(stderr, "login requires -email and -password")
		return 2
	}
	if !a.cfg.UsesRedisSessions() {
		a.logger.Warn("session store is in memory; the token will not outlive this command")
	}

	auth := hospital.NewAuthenticator(a.client, a.session, a.logger)
	if err := auth.Login(ctx, *email, *password); err != nil {
		fmt.Fprintln(stderr, hospital.LoginFailureMessage(err))
		return 1
	}
	fmt.Fprintln(stdout, "Logged in.")
	return 0
}

func (a *app) logout(ctx context.Context, stdout, stderr io.Writer) int {
	if err := a.session.Clear(ctx); err != nil {
		fmt.Fprintf(stderr, "logout failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Logged out.")
	return 0
}

func (a *app) book(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	fs.SetOutput(stderr)
	doctorID := fs.Int("doctor", 0, "doctor id from the doctors command")
	name := fs.String("name", "", "patient name")
	email := fs.String("email", "", "patient email")
	age := fs.String("age", "", "patient age")
	date := fs.String("date", "", "appointment date (YYYY-MM-DD)")
	clock := fs.String("time", "", "appointment time (HH:MM)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctrl := a.controller()
	if _, err := ctrl.LoadDoctors(ctx); err != nil {
		_ = booking.RenderMessage(stderr, ctrl.Presenter().Current())
		return 1
	}
	if err := ctrl.Select(*doctorID); err != nil {
		fmt.Fprintln(stderr, booking.SelectionMessage(err))
		return 1
	}
	if doctor, ok := ctrl.Selected(); ok {
		_ = booking.RenderSelection(stdout, doctor)
	}

	ctrl.SetPatient(*name, *email, *age)
	ctrl.SetSchedule(*date, *clock)
	result := ctrl.Submit(ctx)
	if result.Kind == booking.ResultSucceeded {
		fmt.Fprintln(stdout, result.Message)
		return 0
	}
	fmt.Fprintln(stderr, result.Message)
	if result.Outcome != nil && result.Outcome.Err != nil && !errors.Is(result.Outcome.Err, context.Canceled) {
		a.logger.Debug("booking failed", "state", string(result.Outcome.State), "error", result.Outcome.Err)
	}
	return 1
}
