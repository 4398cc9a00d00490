package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/fmdata/internal/client/client"
	"github.com/dmitrijs2005/fmdata/internal/client/config"
	"github.com/dmitrijs2005/fmdata/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/fmdata/internal/client/services"
	"github.com/dmitrijs2005/fmdata/internal/client/session"
	"github.com/dmitrijs2005/fmdata/internal/logging"
	"github.com/dmitrijs2005/fmdata/internal/metrics"
)

type App struct {
	auth       services.AuthService
	newRecords func(credential string) services.RecordService

	// configCredential comes from configuration; credential is the one in
	// use, possibly entered at the login prompt.
	configCredential string
	credential       string

	reader *bufio.Reader
	out    io.Writer
	logger logging.Logger

	registry    *prometheus.Registry
	metricsAddr string
	closeStore  func() error
}

// NewApp validates cfg and builds the session store, Data API client and
// services it describes.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	reg := metrics.NewRegistry()
	rec := metrics.New(reg)

	store, closeStore, err := sessions.Open(ctx, cfg.SessionOptions())
	if err != nil {
		return nil, fmt.Errorf("error initializing session store: %w", err)
	}

	apiClient := client.NewHTTPClient(cfg.ResolvedDatabaseURL(),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
		client.WithMetrics(rec),
	)
	manager := session.NewManager(apiClient, store,
		session.WithLifetime(cfg.SessionLifetime),
		session.WithLogger(logger),
		session.WithMetrics(rec),
	)

	a := newApp(
		services.NewAuthService(manager),
		func(credential string) services.RecordService {
			return services.NewRecordService(apiClient, manager, credential, logger)
		},
		cfg.Credential,
		bufio.NewReader(os.Stdin),
		os.Stdout,
		logger,
	)
	a.registry = reg
	a.metricsAddr = cfg.MetricsAddr
	a.closeStore = closeStore
	return a, nil
}

func newApp(auth services.AuthService, newRecords func(string) services.RecordService, credential string, reader *bufio.Reader, out io.Writer, logger logging.Logger) *App {
	return &App{
		auth:             auth,
		newRecords:       newRecords,
		configCredential: credential,
		credential:       credential,
		reader:           reader,
		out:              out,
		logger:           logger,
	}
}

// Run executes args as a single command when given, otherwise it starts
// the REPL and blocks until the user exits or ctx is done.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.Close()

	if a.metricsAddr != "" {
		stop := a.serveMetrics(ctx)
		defer stop()
	}

	if len(args) > 0 {
		err := dispatch(ctx, a, commandLine(args))
		if errors.Is(err, errExit) {
			return nil
		}
		return err
	}

	printlnFn("fmdata CLI (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.promptStatus(ctx) }, a.reader)
	return nil
}

// Close releases the session store.
func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.closeStore = nil
	return err
}

func (a *App) records() services.RecordService {
	return a.newRecords(a.credential)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	st, err := a.auth.Status(ctx)
	return err == nil && st.Active
}

func (a *App) promptStatus(ctx context.Context) string {
	if a.isLoggedIn(ctx) {
		return "(active)"
	}
	return ""
}

func (a *App) serveMetrics(ctx context.Context) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))
	srv := &http.Server{Addr: a.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server failed", "addr", a.metricsAddr, "error", err)
		}
	}()
	a.logger.Info(ctx, "serving metrics", "addr", a.metricsAddr)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// commandLine joins shell arguments back into one command line. Arguments
// with spaces are quoted so a layout like "Contact Details" stays one word;
// JSON bodies and anything already holding a double quote are left as is.
func commandLine(args []string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if strings.ContainsFunc(arg, unicode.IsSpace) && !strings.ContainsRune(arg, '"') &&
			!strings.HasPrefix(arg, "{") {
			arg = `"` + arg + `"`
		}
		parts[i] = arg
	}
	return strings.Join(parts, " ")
}
