package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/algoarena/backend/contestsrvc"
	"github.com/algoarena/backend/httpjson"
	"github.com/algoarena/backend/lbsrvc"
	"github.com/algoarena/backend/logger"
	"github.com/algoarena/backend/ratingsrvc"
	"github.com/algoarena/backend/submsrvc"
)

type HttpServer struct {
	tracker  *submsrvc.SubmTracker
	contests *contestsrvc.ScoringCoordinator
	ratings  *ratingsrvc.RatingSrvc
	lb       *lbsrvc.LbSrvc
	jwtKey   []byte
	logger   *slog.Logger
	router   *chi.Mux
}

func NewHttpServer(
	tracker *submsrvc.SubmTracker,
	contests *contestsrvc.ScoringCoordinator,
	ratings *ratingsrvc.RatingSrvc,
	lb *lbsrvc.LbSrvc,
	jwtKey []byte,
) *HttpServer {
	router := chi.NewRouter()

	logger := httplog.NewLogger("algoarena", httplog.Options{
		LogLevel:         slog.LevelInfo,
		Concise:          true,
		MessageFieldName: "message",
	})

	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(logger))
	router.Use(requestLoggerCtx)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://algoarena.dev", "https://www.algoarena.dev"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	server := &HttpServer{
		tracker:  tracker,
		contests: contests,
		ratings:  ratings,
		lb:       lb,
		jwtKey:   jwtKey,
		logger:   slog.Default().With("module", "http"),
		router:   router,
	}

	router.Use(server.jwtClaimsMiddleware)

	server.routes()

	return server
}

// requestLoggerCtx puts a request-scoped logger on the context so that
// handlers and services log with the request id attached.
func requestLoggerCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HttpServer) Start(address string) error {
	s.logger.Info("listening", "address", address)
	return http.ListenAndServe(address, s.router)
}

func (s *HttpServer) handleError(w http.ResponseWriter, r *http.Request, err error) {
	httpjson.HandleError(logger.FromContext(r.Context()), w, err)
}

// Handler exposes the router, used by tests.
func (s *HttpServer) Handler() http.Handler {
	return s.router
}

func (s *HttpServer) routes() {
	r := s.router

	r.Get("/programming-languages", s.listProgrammingLanguages)
	r.Get("/leaderboard", s.getLeaderboard)
	r.Get("/users/{userId}/rating", s.getUserRating)

	r.Get("/submissions", s.listSubmissions)
	r.Get("/submissions/{submId}", s.getSubmission)
	r.With(s.requireAuth).Post("/submissions", s.createSubmission)

	r.Get("/contests", s.listContests)
	r.Get("/contests/{contestId}", s.getContest)
	r.Get("/contests/{contestId}/standings", s.getContestStandings)
	r.With(s.requireAuth).Post("/contests", s.createContest)
	r.With(s.requireAuth).Post("/contests/{contestId}/close", s.closeContest)
}
