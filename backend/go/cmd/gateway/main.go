package main

import (
	"WebShop_AI/backend/go/internal/agent"
	"WebShop_AI/backend/go/internal/config"
	"WebShop_AI/backend/go/internal/gateway/api"
	"WebShop_AI/backend/go/internal/gateway/service"
	"WebShop_AI/backend/go/pkg/circuitbreaker"
	gwhttp "WebShop_AI/backend/go/pkg/http"
	"WebShop_AI/backend/go/pkg/logger"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const ServiceName = "gateway"

func main() {
	configPath := pflag.String("config", "config.yaml", "path to the YAML configuration file")
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	pflag.Parse()

	// 1. 加载 .env 与配置。.env 不存在时忽略。
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load %s: %v", *envFile, err)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// 2. 初始化 Logger
	level := logger.ParseLevel(cfg.Logger.Level)
	logger.Init(level, os.Stdout)
	if len(cfg.Logger.Kafka.Brokers) > 0 {
		hook, err := logger.NewKafkaHook(cfg.Logger.Kafka.Brokers, cfg.Logger.Kafka.Topic, logger.ParseLevel(cfg.Logger.Kafka.Level))
		if err != nil {
			log.Fatalf("failed to create kafka log hook: %v", err)
		}
		defer hook.Close()
		logger.AddHook(hook)
	}
	appLogger := logger.New(ServiceName, "", "")
	appLogger.Info("Logger initialized")
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// JWT 密钥目前只加载不使用。
	appLogger.WithField("jwt_secret_configured", cfg.Auth.JwtSecret != config.DefaultJwtSecret).
		Debug("auth secret loaded but not enforced")

	// 3. 初始化依赖 (Registry, Upstream client -> Forwarder -> Handler)
	registry := agent.NewDefaultRegistry()
	client := gwhttp.NewClient(gwhttp.ClientOptions{
		Timeout:          cfg.Upstream.Timeout,
		MaxResponseBytes: cfg.Upstream.MaxResponseBytes,
		CircuitBreaker:   cfg.Middleware.CircuitBreaker,
		OnBreakerStateChange: func(name string, from, to circuitbreaker.State) {
			appLogger.WithFields(map[string]interface{}{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state change")
		},
	})
	forwarder := service.NewForwarder(client, cfg, appLogger)
	handler := api.NewHandler(forwarder, registry, cfg.App, appLogger)
	appLogger.WithFields(map[string]interface{}{"agents": registry.Len(), "upstream": cfg.UpstreamBase()}).
		Info("Dependencies injected")

	// 4. 配置路由并启动服务
	router := api.SetupRouter(handler, cfg, appLogger)
	srv, err := gwhttp.NewServer(cfg, router)
	if err != nil {
		appLogger.Fatal(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info(fmt.Sprintf("Starting server on %s", srv.Addr()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Fatal(err.Error())
		}
	case <-ctx.Done():
		appLogger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(fmt.Sprintf("graceful shutdown failed: %v", err))
		}
	}
}
