package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	Secret    string `yaml:"secret" json:"secret"`
	JwtExpire int    `yaml:"jwt_expire" json:"jwt_expire"` // hours
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type SmtpConfig struct {
	Enable   bool   `yaml:"enable" json:"enable"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
}

type NotifyConfig struct {
	Enable     bool   `yaml:"enable" json:"enable"`
	WebhookURL string `yaml:"webhook_url" json:"webhook_url"`
	Workers    int    `yaml:"workers" json:"workers"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Logger   LoggerConfig `yaml:"logger" json:"logger"`
	Smtp     SmtpConfig   `yaml:"smtp" json:"smtp"`
	Notify   NotifyConfig `yaml:"notify" json:"notify"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "tienda",
		Location: "America/Argentina/Buenos_Aires",
		Workdir:  "/var/tienda",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1899,
		Secret:    "9b6de5cc-0001-1203-xxtt-0f568ac9da37",
		JwtExpire: 24,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "tienda",
		User:     "postgres",
		Passwd:   "root",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/tienda/tienda.log",
	},
	Smtp: SmtpConfig{
		Host: "smtp.example.com",
		Port: 465,
		From: "no-reply@example.com",
	},
	Notify: NotifyConfig{
		Workers: 4,
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v == "true" || v == "1" || v == "on")
	}
}

func setEnvIntValue(name string, f func(v int)) {
	if v, ok := os.LookupEnv(name); ok {
		f(cast.ToInt(v))
	}
}

// LoadConfig loads the YAML config file, falling back to defaults,
// with TIENDA_* environment variables taking precedence.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if _, err := os.Stat(cfile); err == nil {
			data, err := os.ReadFile(cfile)
			if err != nil {
				panic(err)
			}
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(fmt.Errorf("parse config %s: %w", cfile, err))
			}
		}
	}

	setEnvValue("TIENDA_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvBoolValue("TIENDA_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })
	setEnvValue("TIENDA_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvIntValue("TIENDA_WEB_PORT", func(v int) { cfg.Web.Port = v })
	setEnvValue("TIENDA_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("TIENDA_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvIntValue("TIENDA_DB_PORT", func(v int) { cfg.Database.Port = v })
	setEnvValue("TIENDA_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("TIENDA_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("TIENDA_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("TIENDA_SMTP_HOST", func(v string) { cfg.Smtp.Host = v })
	setEnvValue("TIENDA_NOTIFY_WEBHOOK", func(v string) { cfg.Notify.WebhookURL = v })

	return cfg
}
