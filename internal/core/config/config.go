package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

// Window 报名开放时间段，Enabled=false 表示不限制
type Window struct {
	Enabled bool
	Start   time.Time
	End     time.Time
}

func (w Window) Open(now time.Time) bool {
	if !w.Enabled {
		return true
	}
	return !now.Before(w.Start) && now.Before(w.End)
}

type App struct {
	Name        string
	Env         string
	HTTP        HTTP
	Admin       AdminHTTP
	GroupWindow Window `mapstructure:"groupWindow"`
}

type Log struct {
	Level string
	JSON  bool
	File  string // 为空则只输出到 stdout
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr         string `mapstructure:"addr"` // 为空则不启用缓存
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	HousesTTLSec int    `mapstructure:"housesTTLSec"`
}

type AMQP struct {
	URL string `mapstructure:"url"` // 为空则不发布事件
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	ConnectRetries     int
}

type Limits struct {
	RPS           float64
	Burst         int
	PerIPRPS      float64 `mapstructure:"perIPRPS"`
	PerIPBurst    int     `mapstructure:"perIPBurst"`
	MaxConcurrent int64
	MaxBodyBytes  int64
	TimeoutSec    int
}

type Reconcile struct {
	Spec       string // cron 表达式，为空不调度
	TimeoutSec int
}

type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

type Workshops struct {
	Names []string
	Slots []string
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	AMQP      AMQP  `mapstructure:"amqp"`
	Limits    Limits
	Reconcile Reconcile
	Events    []Event
	Workshops Workshops
}

// Load 读不到配置直接退出
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}

func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&c, hook); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("config: jwt.secret is required")
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "orientation-api")
	v.SetDefault("jwt.accessTokenTTLMin", 60*24)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxOpenConns", 50)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.connectRetries", 5)
	v.SetDefault("redis.housesTTLSec", 5)
	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIPRPS", 20)
	v.SetDefault("limits.perIPBurst", 40)
	v.SetDefault("limits.maxConcurrent", 300)
	v.SetDefault("limits.maxBodyBytes", 1<<20)
	v.SetDefault("limits.timeoutSec", 10)
	v.SetDefault("reconcile.timeoutSec", 60)
}
