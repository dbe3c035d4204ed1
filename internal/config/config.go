package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Database Database `koanf:"db"`
	Auth     Auth     `koanf:"auth"`
	Session  Session  `koanf:"session"`
	Cache    Cache    `koanf:"cache"`
	Market   Market   `koanf:"market"`
	Amqp     Amqp     `koanf:"amqp"`
	Google   Google   `koanf:"google"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Auth points at the hosted auth service that issues session tokens.
type Auth struct {
	BaseUrl   string `koanf:"baseurl"`
	AnonKey   string `koanf:"anonkey"`
	JwtSecret string `koanf:"jwtsecret"`
	// MaxAttempts bounds retries of outbound auth calls.
	MaxAttempts uint `koanf:"maxattempts"`
}

type Session struct {
	RefreshCooldown time.Duration `koanf:"refreshcooldown"`
	// MaxFailures is the number of consecutive failed refreshes after which
	// the client has to log in again.
	MaxFailures int `koanf:"maxfailures"`
}

type Cache struct {
	Size            int           `koanf:"size"`
	Ttl             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanupinterval"`
}

type Market struct {
	WebhookSecret string `koanf:"webhooksecret"`
	MaxBatchSize  int    `koanf:"maxbatchsize"`
}

type Amqp struct {
	Url      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
	Queue    string `koanf:"queue"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
}

func Default() Application {
	return Application{
		Host: "http://localhost:3000",
		Port: 8181,
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "fintrack",
			Pass:   "",
			Name:   "fintrack",
			Schema: "fintrack",
		},
		Auth: Auth{
			MaxAttempts: 3,
		},
		Session: Session{
			RefreshCooldown: 5 * time.Second,
			MaxFailures:     3,
		},
		Cache: Cache{
			Size:            1000,
			Ttl:             5 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Market: Market{
			MaxBatchSize: 500,
		},
		Amqp: Amqp{
			Exchange: "fintrack.market",
			Queue:    "price_ticks",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Default(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "FINTRACK_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "FINTRACK_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
