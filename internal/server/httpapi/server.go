// Package httpapi exposes the REST API: auth, containers and admin routes
// on a chi router.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	ResolveCurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

type ContainerService interface {
	Upload(ctx context.Context, owner *models.User, fileName string, r io.Reader) (*models.Container, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Container, error)
	DownloadResult(ctx context.Context, user *models.User, containerID int64) (string, []byte, error)
}

type AdminService interface {
	ListUsersWithFiles(ctx context.Context, requester *models.User, nameFilter string) ([]*models.UserWithFiles, error)
	TriggerEmail(ctx context.Context, requester *models.User, targetUserID int64) error
}

type Server struct {
	address        string
	auth           AuthService
	containers     ContainerService
	admin          AdminService
	logger         logging.Logger
	maxUploadBytes int64
}

func NewServer(address string, l logging.Logger, as AuthService, cs ContainerService, ads AdminService, maxUploadBytes int64) *Server {
	return &Server{
		address:        address,
		auth:           as,
		containers:     cs,
		admin:          ads,
		logger:         l.With("module", "http_server"),
		maxUploadBytes: maxUploadBytes,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", s.hello)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/token/refresh", s.refresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/containers", func(r chi.Router) {
			r.Post("/add-file", s.addFile)
			r.Get("/container", s.listContainers)
			r.Get("/get_result/download", s.downloadResult)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", s.listUsers)
			r.Post("/send-email/{userId}", s.sendEmail)
		})
	})

	return r
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
