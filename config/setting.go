package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type serverConfig struct {
	Port        int    `koanf:"port" validate:"required"`
	Mode        string `koanf:"mode" validate:"required"`
	Concurrency int    `koanf:"concurrency" validate:"required"`
	BodyLimit   int    `koanf:"body_limit" validate:"required"`
	AppName     string `koanf:"app_name" validate:"required"`
}

type logLevel string

const (
	Debug logLevel = "debug"
	Info  logLevel = "info"
	Warn  logLevel = "warn"
	Error logLevel = "error"
	Fatal logLevel = "fatal"
	Panic logLevel = "panic"
)

type Module string

const (
	ModuleServer   Module = "server"
	ModuleSetting  Module = "setting"
	ModuleOpenAI   Module = "openai"
	ModuleParse    Module = "parse"
	ModuleGenerate Module = "generate"
	ModuleExport   Module = "export"
	ModuleLeads    Module = "leads"
	ModuleS3       Module = "s3"
	ModuleCors     Module = "cors"
)

type openaiConfig struct {
	Key     string `koanf:"key"`
	Model   string `koanf:"model" validate:"required"`
	BaseURL string `koanf:"base_url"`
}

type extractConfig struct {
	MaxBytes int           `koanf:"max_bytes" validate:"required"`
	MaxPages int           `koanf:"max_pages" validate:"required"`
	Timeout  time.Duration `koanf:"timeout" validate:"required"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"required"`
}

type generateConfig struct {
	Timeout           time.Duration `koanf:"timeout" validate:"required"`
	QuizTextLimit     int           `koanf:"quiz_text_limit" validate:"required"`
	FeedbackTextLimit int           `koanf:"feedback_text_limit" validate:"required"`
}

type leadsConfig struct {
	LogPath    string `koanf:"log_path" validate:"required"`
	ForwardURL string `koanf:"forward_url"`
}

type s3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
	Bucket    string `koanf:"bucket"`
}

type corsConfig struct {
	AllowOrigins []string `koanf:"allow_origins" validate:"required"`
	AllowMethods []string `koanf:"allow_methods" validate:"required"`
	AllowHeaders []string `koanf:"allow_headers" validate:"required"`
}

type config struct {
	Server   serverConfig   `koanf:"server"`
	LogLevel logLevel       `koanf:"log_level"`
	OpenAI   openaiConfig   `koanf:"openai"`
	Extract  extractConfig  `koanf:"extract"`
	Generate generateConfig `koanf:"generate"`
	Leads    leadsConfig    `koanf:"leads"`
	S3       s3Config       `koanf:"s3"`
	Cors     corsConfig     `koanf:"cors"`
}

var defaultConfig = config{
	Server: serverConfig{
		Port:        8000,
		Mode:        "release",
		Concurrency: 256,
		BodyLimit:   32 * 1024 * 1024,
		AppName:     "training-copilot",
	},
	LogLevel: Info,
	OpenAI: openaiConfig{
		Key:     "",
		Model:   "deepseek-chat",
		BaseURL: "https://api.deepseek.com/v1",
	},
	Extract: extractConfig{
		MaxBytes: 20 * 1024 * 1024,
		MaxPages: 50,
		Timeout:  10 * time.Second,
		CacheTTL: 5 * time.Minute,
	},
	Generate: generateConfig{
		Timeout:           120 * time.Second,
		QuizTextLimit:     15000,
		FeedbackTextLimit: 10000,
	},
	Leads: leadsConfig{
		LogPath: "storage/leads.jsonl",
	},
	S3: s3Config{
		Region: "us-east-1",
	},
	Cors: corsConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	},
}

var (
	Cfg  = defaultConfig
	once sync.Once
)

// Init loads the yaml file (if present) and APP_-prefixed env overrides
// into Cfg, then validates. Only the first call loads.
func Init(path string) error {
	var initErr error
	once.Do(func() {
		k := koanf.New(".")
		Cfg = defaultConfig

		// file
		if e := k.Load(file.Provider(path), yaml.Parser()); e != nil && !os.IsNotExist(e) {
			initErr = e
			return
		}

		// env APP_SERVER_PORT -> server.port
		if e := k.Load(env.Provider("APP_", ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "APP_")), "_", ".")
		}), nil); e != nil {
			initErr = e
			return
		}

		// bind
		if e := k.Unmarshal("", &Cfg); e != nil {
			log.Errorf("failed to unmarshal config: %v", e)
			initErr = e
			return
		}

		// validate config
		validate := validator.New()
		if err := validate.Struct(Cfg); err != nil {
			if errs, ok := err.(validator.ValidationErrors); ok {
				var sb strings.Builder
				sb.WriteString(fmt.Sprintf("%v Config validation failed:\n", ModuleSetting))
				for _, e := range errs {
					sb.WriteString(
						fmt.Sprintf("  %s: failed '%s' (value: %v)\n", e.Field(), e.Tag(), e.Value()),
					)
				}
				log.Error(sb.String())
			} else {
				log.Errorf("config validation failed: %v", err)
			}
			initErr = err
		}
	})
	return initErr
}

func init() {
	_ = Init("config.yaml")
}
