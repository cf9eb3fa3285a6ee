package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"match-service/config"
	"match-service/constant"
	"match-service/handler"
	"match-service/pkg/queue"
	"match-service/repository"
	"match-service/service"
	"match-service/storage"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	jobQueue, err := newQueue(ctx, cfg)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to set up job queue")
		return
	}
	defer jobQueue.Close()

	store, err := storage.New(cfg)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to set up blob store")
		return
	}

	repo := repository.NewRepo(cfg.DB)
	matchService := service.NewMatchService(repo, store, jobQueue, cfg)
	workerService := service.NewWorkerService(repo, store, jobQueue, cfg)

	serviceDeps := handler.ServiceDependencies{
		MatchService:  matchService,
		WorkerService: workerService,
	}

	r := gin.Default()
	addHealth(r)
	addRoutes(r, cfg, serviceDeps)

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func newQueue(ctx context.Context, cfg *config.Config) (queue.Queue, error) {
	if cfg.Queue.Driver == "memory" {
		return queue.NewMemoryQueue(), nil
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		return nil, err
	}
	return queue.NewRabbitQueue(conn, cfg.Queue.Kind)
}

func addRoutes(r *gin.Engine, cfg *config.Config, deps handler.ServiceDependencies) {
	v1 := r.Group("/v1")

	matches := v1.Group("/matches", handler.Identity())
	matches.GET("", handler.ListMatches(deps))
	matches.POST("", handler.CreateMatch(deps))
	matches.GET("/:id", handler.GetMatch(deps))

	videos := v1.Group("/videos", handler.Identity())
	videos.GET("/:id", handler.StreamVideo(deps))
	videos.GET("/:id/url", handler.VideoDownloadURL(deps))

	worker := v1.Group("/worker", handler.WorkerAllowList(cfg.Worker.AllowedIPs))
	worker.GET("/jobs/next", handler.NextJob(deps))
	worker.POST("/complete", handler.CompleteJob(deps))
	worker.GET("/matches/:id/original-video", handler.WorkerStreamVideo(deps))
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
