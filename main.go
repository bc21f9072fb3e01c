package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"trade-service/internal/catalog"
	"trade-service/internal/config"
	"trade-service/internal/db"
	grpcclient "trade-service/internal/grpc"
	"trade-service/internal/handlers"
	"trade-service/internal/middleware"
	"trade-service/internal/observability"
	"trade-service/internal/rabbitmq"
	"trade-service/internal/repositories"
	"trade-service/internal/reviews"
	"trade-service/internal/telemetry"
	"trade-service/internal/trading"
	"trade-service/internal/ws"
)

const auditRoutingKey = "audit.trade"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("service", cfg.ServiceName), zap.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.ServiceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	logger.Info("event publisher ready", zap.String("mode", rabbitmq.PublisherMode(publisher)), zap.String("noop_reason", rabbitmq.PublisherNoopReason(publisher)))
	audit := telemetry.NewAuditEmitter(publisher, auditRoutingKey, cfg.ServiceName, cfg.Environment, logger)

	authConn, err := grpcclient.Dial(cfg.AuthGRPCAddr)
	if err != nil {
		log.Fatalf("failed to connect to auth grpc: %v", err)
	}
	defer authConn.Close()

	pointsConn, err := grpcclient.Dial(cfg.PointsGRPCAddr)
	if err != nil {
		log.Fatalf("failed to connect to points grpc: %v", err)
	}
	defer pointsConn.Close()

	catalogConn, err := grpcclient.Dial(cfg.CatalogGRPCAddr)
	if err != nil {
		log.Fatalf("failed to connect to catalog grpc: %v", err)
	}
	defer catalogConn.Close()

	authClient := grpcclient.NewAuthClient(authConn)
	pointsClient := grpcclient.NewPointsClient(pointsConn)
	cards, err := catalog.NewService(grpcclient.NewCatalogClient(catalogConn), cfg.CatalogCacheSize)
	if err != nil {
		log.Fatalf("failed to init card catalog: %v", err)
	}

	listRepo := repositories.NewTradeListRepo(database)
	locationRepo := repositories.NewLocationRepo(database)
	matchRepo := repositories.NewMatchRepo(database)
	messageRepo := repositories.NewTradeMessageRepo(database)

	hub := ws.NewHub(logger.Named("ws"))

	lists := trading.NewLists(listRepo, locationRepo)
	finder := trading.NewFinder(listRepo, locationRepo, matchRepo, trading.FinderOptions{
		MaxRadiusKm: cfg.Matching.MaxRadiusKm,
		Limit:       cfg.Matching.ResultLimit,
	}, logger.Named("finder"))
	completion := trading.NewCompletionCoordinator(pointsClient, reviews.NewPublisher(publisher), logger.Named("completion"))
	sessions := trading.NewSessionManager(matchRepo, completion, hub, audit, logger.Named("sessions"))
	messages := trading.NewMessageLog(matchRepo, messageRepo, hub, logger.Named("messages"))

	listHandler := handlers.NewTradeListHandler(lists)
	matchHandler := handlers.NewMatchHandler(finder, cards, cfg.Matching.DefaultRadiusKm, logger.Named("http"))
	sessionHandler := handlers.NewSessionHandler(sessions, messages, logger.Named("http"))
	sessionWS := ws.NewSessionWebSocketHandler(hub, sessions, authClient)

	router := gin.New()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.RequestID())
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(observability.MetricsHandler()))
	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	authMiddleware := middleware.AuthMiddleware(authClient)

	router.GET("/trade-lists", authMiddleware, listHandler.ListEntries)
	router.POST("/trade-lists", authMiddleware, listHandler.AddEntry)
	router.DELETE("/trade-lists/:kind/:card_id", authMiddleware, listHandler.RemoveEntry)
	router.PUT("/location", authMiddleware, listHandler.UpdateLocation)

	router.GET("/trade-matches", authMiddleware, matchHandler.FindMatches)

	router.GET("/trade-sessions", authMiddleware, sessionHandler.ListSessions)
	router.POST("/trade-sessions", authMiddleware, sessionHandler.StartSession)
	router.GET("/trade-sessions/:session_id", authMiddleware, sessionHandler.GetSession)
	router.GET("/trade-sessions/:session_id/messages", authMiddleware, sessionHandler.GetMessages)
	router.POST("/trade-sessions/:session_id/messages", authMiddleware, sessionHandler.PostMessage)
	router.POST("/trade-sessions/:session_id/complete", authMiddleware, sessionHandler.CompleteSession)
	router.POST("/trade-sessions/:session_id/cancel", authMiddleware, sessionHandler.CancelSession)

	router.GET("/ws/trade-sessions/:session_id", sessionWS.Handle)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	completion.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
