package serve

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/capture"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/config"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/logging"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/middleware"
)

var (
	flagAddr       string
	flagConfigPath string
)

type contextKey string

const requestIDKey contextKey = "request_id"

func NewCmdServe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo HTTP server that reports its failures to raygun",
		Long: `Run a demo HTTP server that reports its failures to raygun.

Routes:
  GET /orders/{id}   panics for any id other than 1
  GET /fail          logs an error through logrus
  GET /health        always succeeds

Examples:
  # Serve on the default address using RAYGUN_* environment variables
  raygun-reporter serve

  # Custom address and config file
  raygun-reporter serve --addr :9090 --config raygun.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return start()
		},
	}

	cmd.Flags().StringVarP(&flagAddr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().StringVarP(&flagConfigPath, "config", "c", "", "Path to a YAML config file")

	return cmd
}

func start() error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err == nil {
		log.SetLevel(level)
	} else {
		log.WithError(err).Warning("Can't setup log level")
	}

	reporter := capture.New(cfg)
	log.AddHook(logging.NewHook(reporter, cfg.Node))

	log.WithField("addr", flagAddr).Info("Starting server")
	return http.ListenAndServe(flagAddr, NewRouter(reporter))
}

// NewRouter builds the demo routes. chi's Recoverer sits outside raygun's so
// the panic is reported before it is turned into a 500.
func NewRouter(c middleware.Capturer) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Recoverer(c))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/orders/{id}", showOrder)
	r.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(requestIDKey).(string)
		log.WithField("request_id", id).Error("Demo failure requested")
		http.Error(w, "logged", http.StatusInternalServerError)
	})

	return r
}

type order struct {
	ID    string
	Total float64
}

var orders = map[string]*order{"1": {ID: "1", Total: 9.99}}

func showOrder(w http.ResponseWriter, r *http.Request) {
	o := orders[chi.URLParam(r, "id")]
	// Unknown ids dereference a nil order on purpose.
	fmt.Fprintf(w, "order %s: %.2f\n", o.ID, o.Total)
}

// requestID adds a unique request ID to each request
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
