package router

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	_ "medtracker/docs"
	mem "medtracker/internal/adapters/storage/memory"
	pg "medtracker/internal/adapters/storage/postgres"
	"medtracker/internal/domain/doselogs"
	"medtracker/internal/domain/medications"
	"medtracker/internal/domain/notes"
	"medtracker/internal/middleware"
	"medtracker/internal/platform/logger"
	"medtracker/internal/platform/metrics"
	"medtracker/internal/platform/respond"
	"medtracker/internal/ports/druginfo"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/samber/lo"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	DrugInfo druginfo.Lookup // puede ser nil: /info responde 502
	Logger   logger.Logger
	Metrics  *metrics.Metrics
	Location *time.Location // zona para la fecha calendario de taken_at

	ServiceName string
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type storePinger struct{ s *mem.Store }

func (p storePinger) PingContext(ctx context.Context) error { return p.s.Ping(ctx) }

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	name := opts.ServiceName
	if name == "" {
		name = "medtracker"
	}

	r := chi.NewRouter()

	r.Use(chimw.StripSlashes)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Tracing(name))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Recover(log))

	// Antes de registrar rutas: chi copia estos handlers a los subrouters.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(methodNotAllowed(r))

	var (
		medRepo  medications.Repository
		logRepo  doselogs.Repository
		noteRepo notes.Repository
		ready    pinger
	)

	if opts.DB != nil {
		medRepo = pg.NewMedicationsRepo(opts.DB)
		logRepo = pg.NewDoseLogsRepo(opts.DB)
		noteRepo = pg.NewNotesRepo(opts.DB)
		ready = opts.DB
	} else {
		store := mem.NewStore()
		medRepo = store.Medications()
		logRepo = store.DoseLogs()
		noteRepo = store.Notes()
		ready = storePinger{s: store}
	}

	// Services por módulo
	medsSvc := medications.NewService(medRepo, logRepo, opts.DrugInfo, opts.Location)
	logsSvc := doselogs.NewService(logRepo, medsSvc, opts.Location)
	notesSvc := notes.NewService(noteRepo, medsSvc)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := ready.PingContext(ctx); err != nil {
			log.Warn("readiness check failed", map[string]any{"err": err})
			respond.Error(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	medications.RegisterRoutes(r, medsSvc)
	doselogs.RegisterRoutes(r, logsSvc)
	notes.RegisterRoutes(r, notesSvc)

	return r
}

var routeMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// methodNotAllowed responde 405 JSON con Allow armado desde el árbol de rutas.
func methodNotAllowed(routes chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path
		if len(path) > 1 {
			path = strings.TrimSuffix(path, "/")
		}
		allowed := lo.Filter(routeMethods, func(m string, _ int) bool {
			return routes.Match(chi.NewRouteContext(), m, path)
		})
		respond.MethodNotAllowed(strings.Join(allowed, ", "))(w, req)
	}
}
