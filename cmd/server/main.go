package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/algoarena/backend/conf"
	"github.com/algoarena/backend/contestsrvc"
	"github.com/algoarena/backend/evalsrvc"
	"github.com/algoarena/backend/http"
	"github.com/algoarena/backend/lbsrvc"
	"github.com/algoarena/backend/problemsrvc"
	"github.com/algoarena/backend/ratelimit"
	"github.com/algoarena/backend/ratingsrvc"
	"github.com/algoarena/backend/submsrvc"
	"github.com/algoarena/backend/testsrvc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "error", err)
	}

	jwtKey := os.Getenv("JWT_KEY")
	if jwtKey == "" {
		slog.Error("JWT_KEY is not set")
		os.Exit(1)
	}

	cfg, err := conf.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var pool *pgxpool.Pool
	if connStr := conf.GetPgConnStrFromEnv(); connStr != "" {
		pool, err = pgxpool.New(ctx, connStr)
		if err != nil {
			slog.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	var problems problemsrvc.Store
	if pool != nil {
		problems = problemsrvc.NewPgStore(pool)
	} else {
		slog.Warn("postgres not configured, using in-memory stores")
		problems = problemsrvc.NewInMemStore(nil)
	}

	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		limiter = ratelimit.NewRedisLimiter(rdb,
			cfg.RateLimit.MaxSubmissionsPerMinute, cfg.RateLimit.Window())
	default:
		limiter = ratelimit.NewMemLimiter(
			cfg.RateLimit.MaxSubmissionsPerMinute, cfg.RateLimit.Window())
	}

	var submRepo submsrvc.Repo
	if pool != nil {
		submRepo = submsrvc.NewPgSubmRepo(pool)
	} else {
		submRepo = submsrvc.NewInMemRepo()
	}

	// the real SQS-backed judge needs its queues configured; local runs
	// fall back to the in-process stub that accepts everything
	var tracker *submsrvc.SubmTracker
	if os.Getenv("SUBM_SQS_QUEUE_URL") != "" {
		eval, err := evalsrvc.NewEvalSrvc()
		if err != nil {
			slog.Error("failed to init judge gateway", "error", err)
			os.Exit(1)
		}
		tracker = submsrvc.NewSubmTracker(cfg.Submissions, eval, problems, limiter, submRepo)
		go eval.StartReceiving(ctx, tracker)
	} else {
		slog.Warn("judge queues not configured, using stub judge")
		stub := evalsrvc.NewStubJudge()
		tracker = submsrvc.NewSubmTracker(cfg.Submissions, stub, problems, limiter, submRepo)
		stub.SetListener(tracker)
	}

	if bucket := os.Getenv("TEST_S3_BUCKET"); bucket != "" {
		region := os.Getenv("AWS_REGION")
		if region == "" {
			region = "eu-central-1"
		}
		tests, err := testsrvc.NewTestFileStore(region, bucket)
		if err != nil {
			slog.Error("failed to init test file store", "error", err)
			os.Exit(1)
		}
		tracker.SetTestFileStore(tests)
	}

	go tracker.StartSweeping(ctx)

	var ratingRepo ratingsrvc.Repo
	if pool != nil {
		ratingRepo = ratingsrvc.NewPgRatingRepo(pool)
	} else {
		ratingRepo = ratingsrvc.NewInMemRepo()
	}
	ratings := ratingsrvc.NewRatingSrvc(cfg.Rating, ratingRepo)

	var contestRepo contestsrvc.Repo
	if pool != nil {
		contestRepo = contestsrvc.NewPgContestRepo(pool)
	} else {
		contestRepo = contestsrvc.NewInMemRepo()
	}
	contests := contestsrvc.NewScoringCoordinator(contestRepo, problems, ratings)

	lb := lbsrvc.NewLbSrvc(cfg.Leaderboard, ratings, tracker, problems)
	contests.SetChangeHook(lb.RequestRefresh)
	go lb.StartRefreshing(ctx)

	go contests.Run(ctx, tracker.ListenFinalized())

	// finalized submissions also move the leaderboard's acceptance and
	// solved aggregates, not just contest scores
	go func() {
		for range tracker.ListenFinalized() {
			lb.RequestRefresh()
		}
	}()

	httpServer := http.NewHttpServer(tracker, contests, ratings, lb, []byte(jwtKey))

	address := os.Getenv("LISTEN_ADDR")
	if address == "" {
		address = ":8080"
	}
	log.Printf("Starting server on %s", address)
	err = httpServer.Start(address)
	log.Printf("Server stopped with error: %v", err)
}
