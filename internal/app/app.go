package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"orientation-api/internal/core/auth"
	"orientation-api/internal/core/cache"
	"orientation-api/internal/core/config"
	"orientation-api/internal/core/database"
	"orientation-api/internal/core/events"
	"orientation-api/internal/repo"
	"orientation-api/internal/service"
)

// App 两个进程共用的依赖图
type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Store *repo.Store
	JWT   *auth.JWTer

	Cache     *cache.Cache // 未配置 Redis 时为 nil
	Publisher events.Publisher

	Users      *service.UserService
	Groups     *service.GroupService
	Houses     *service.HouseService
	CheckIns   *service.CheckInService
	Reconciler *service.Reconciler
}

// Build 打开 DB（失败返回错误），Redis/AMQP 连不上则降级并告警
func Build(cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
		ConnectRetries:     cfg.DB.ConnectRetries,
	})
	if err != nil {
		return nil, err
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			return nil, err
		}
		l.Info("automigrate done")
	}

	a := &App{
		Cfg:       cfg,
		Log:       l,
		DB:        db,
		Store:     repo.NewStore(db),
		Cache:     openCache(cfg.Redis, l),
		Publisher: openPublisher(cfg.AMQP, l),
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
	}
	a.wire()
	return a, nil
}

func (a *App) wire() {
	cfg := a.Cfg
	a.Houses = service.NewHouseService(a.Store, a.Cache,
		time.Duration(cfg.Redis.HousesTTLSec)*time.Second, a.Log.Named("houses"))
	a.Groups = service.NewGroupService(a.Store, service.NewInviteCodeGenerator(), a.Houses,
		a.Publisher, a.Log.Named("groups"))
	a.Users = service.NewUserService(a.Store, a.Groups, a.JWT, a.Log.Named("users"))

	windows := make([]service.EventWindow, 0, len(cfg.Events))
	for _, e := range cfg.Events {
		windows = append(windows, service.EventWindow{Event: e.Name, Start: e.Start, End: e.End})
	}
	a.CheckIns = service.NewCheckInService(a.Store, service.NewEventSchedule(windows),
		service.WorkshopCatalog{Workshops: cfg.Workshops.Names, Slots: cfg.Workshops.Slots},
		a.Log.Named("checkin"))
	a.Reconciler = service.NewReconciler(a.Store, a.Houses, a.Log.Named("reconcile"))
}

// Ping /health 用
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) Close() {
	if err := a.Publisher.Close(); err != nil {
		a.Log.Warn("amqp close", zap.Error(err))
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func openCache(c config.Redis, l *zap.Logger) *cache.Cache {
	if c.Addr == "" {
		return nil
	}
	rc := cache.New(c.Addr, c.Password, c.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Warn("redis unavailable, house cache disabled", zap.String("addr", c.Addr), zap.Error(err))
		_ = rc.Close()
		return nil
	}
	l.Info("redis connected", zap.String("addr", c.Addr))
	return rc
}

func openPublisher(c config.AMQP, l *zap.Logger) events.Publisher {
	if c.URL == "" {
		return events.Nop{}
	}
	p, err := events.NewAMQP(c.URL, events.QueueGroupConfirmed)
	if err != nil {
		l.Warn("amqp unavailable, events disabled", zap.Error(err))
		return events.Nop{}
	}
	l.Info("amqp connected")
	return p
}
