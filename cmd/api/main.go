package main

import (
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"orientation-api/internal/app"
	"orientation-api/internal/core/config"
	"orientation-api/internal/core/logger"
	"orientation-api/internal/core/server"
	"orientation-api/internal/transport/http/handler"
	mdw "orientation-api/internal/transport/http/middleware"
	"orientation-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 依赖（DB 失败直接 Fatal）
	a, err := app.Build(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	// 路由（用户端）
	authMW := mdw.AuthJWT(a.JWT, "")
	gate := mdw.EventWindow(cfg.App.GroupWindow.Open, nil)
	reg := (&router.Registry{}).Register(
		handler.NewAuthHandler(a.Users, log),
		handler.NewUserHandler(a.Users, authMW, log),
		handler.NewGroupHandler(a.Groups, authMW, gate, log),
		handler.NewHouseHandler(a.Houses, authMW, log),
		handler.NewCheckInHandler(a.CheckIns, authMW, log),
	)
	r := router.NewAPIEngine(log, cfg.Limits, a.Ping, reg)

	// 定期对账
	if cfg.Reconcile.Spec != "" {
		c, err := a.Reconciler.Schedule(cfg.Reconcile.Spec, time.Duration(cfg.Reconcile.TimeoutSec)*time.Second)
		if err != nil {
			log.Fatal("reconcile schedule", zap.String("spec", cfg.Reconcile.Spec), zap.Error(err))
		}
		defer c.Stop()
		log.Info("reconcile scheduled", zap.String("spec", cfg.Reconcile.Spec))
	}

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
		zap.Bool("group_window", cfg.App.GroupWindow.Enabled),
	)

	if err := server.Serve(srv, log, 10*time.Second); err != nil {
		log.Error("user api stopped with error", zap.Error(err))
		return
	}
	log.Info("user api stopped gracefully")
}
