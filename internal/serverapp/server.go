package serverapp

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sashankbanda/Focusly/internal/auth"
	"github.com/sashankbanda/Focusly/internal/config"
	"github.com/sashankbanda/Focusly/internal/httpmw"
	"github.com/sashankbanda/Focusly/internal/model"
	"github.com/sashankbanda/Focusly/internal/stats"
	"github.com/sashankbanda/Focusly/internal/task"
)

type Options struct {
	Config *config.Config
	Logger *logrus.Logger
}

// NewHandler assembles the full API surface: health and metrics endpoints
// plus the auth-guarded task, stats and report routes.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	scope, err := buildRepoScope(opts.Config)
	if err != nil {
		return nil, err
	}

	verifier, err := auth.NewJWTVerifier(opts.Config.Auth.JWTSecret, opts.Config.Auth.Issuer)
	if err != nil {
		return nil, err
	}
	requireAPI := auth.RequireAPI(verifier, log)

	repoForRequest := func(r *http.Request) task.Repo {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			return nil
		}
		return scope(id.UserID)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"service": "focusly",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", httpmw.MetricsHandler())

	taskHandler := task.NewHandler(nil)
	taskHandler.SetRepoResolver(repoForRequest)
	mux.Handle("/api/tasks", requireAPI(http.HandlerFunc(taskHandler.TasksRoot)))
	mux.Handle("/api/tasks/", requireAPI(http.HandlerFunc(taskHandler.TasksSub)))

	statsHandler := stats.NewHandler(func(r *http.Request) ([]model.Task, error) {
		repo := repoForRequest(r)
		if repo == nil {
			return nil, errors.New("no authenticated repo")
		}
		return repo.List(r.Context())
	})
	mux.Handle("/api/stats", requireAPI(http.HandlerFunc(statsHandler.Stats)))
	mux.Handle("/api/report", requireAPI(http.HandlerFunc(statsHandler.Report)))

	return httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(log),
		httpmw.WithAccessLog(log),
		httpmw.WithMetrics,
	), nil
}

// buildRepoScope returns a function mapping a user id to that user's view
// of the configured storage backend.
func buildRepoScope(cfg *config.Config) (func(userID string) task.Repo, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		repo := task.NewMemoryRepo()
		return func(userID string) task.Repo { return repo.ForUser(userID) }, nil

	case config.BackendFile:
		repo, err := task.NewFileRepo(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		return func(userID string) task.Repo { return repo.ForUser(userID) }, nil

	case config.BackendSQLite:
		repo, err := task.NewSQLiteRepo(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return func(userID string) task.Repo { return repo.ForUser(userID) }, nil

	default:
		return nil, errors.New("unknown storage backend " + cfg.Storage.Backend)
	}
}
