package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Customer    CustomerConfig    `mapstructure:"customer"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	MermaidFlow MermaidFlowConfig `mapstructure:"mermaidflow"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Env          string `mapstructure:"env"`  // development, production ...
	Mode         string `mapstructure:"mode"` // debug, release, test
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// CustomerConfig 客户标识，部署时按客户注入
type CustomerConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// RedisConfig Redis 配置
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// MermaidFlowConfig 远端工具服务配置
type MermaidFlowConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

// 环境变量绑定，保持与既有部署脚本一致
var envBindings = map[string][]string{
	"server.port":                 {"PORT", "APP_SERVER_PORT"},
	"server.env":                  {"NODE_ENV", "APP_ENV"},
	"server.mode":                 {"GIN_MODE", "APP_SERVER_MODE"},
	"server.read_timeout":         {"APP_SERVER_READ_TIMEOUT"},
	"server.write_timeout":        {"APP_SERVER_WRITE_TIMEOUT"},
	"customer.id":                 {"CUSTOMER_ID"},
	"database.url":                {"DATABASE_URL"},
	"database.max_open_conns":     {"APP_DATABASE_MAX_OPEN_CONNS"},
	"database.max_idle_conns":     {"APP_DATABASE_MAX_IDLE_CONNS"},
	"database.conn_max_lifetime":  {"APP_DATABASE_CONN_MAX_LIFETIME"},
	"redis.url":                   {"REDIS_URL"},
	"mermaidflow.base_url":        {"MERMAIDFLOW_URL"},
	"mermaidflow.timeout_seconds": {"MERMAIDFLOW_TIMEOUT_SECONDS"},
	"log.level":                   {"LOG_LEVEL"},
	"log.format":                  {"LOG_FORMAT"},
	"log.output_path":             {"LOG_OUTPUT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("customer.id", "development")
	v.SetDefault("database.url", "postgres://postgres:postgres@db:5432/app_dev")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("redis.url", "redis://redis:6379")
	v.SetDefault("mermaidflow.base_url", "http://localhost:5000")
	v.SetDefault("mermaidflow.timeout_seconds", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "stdout")
}

// Load 加载配置
// configPath: 配置文件路径（可选）。为空时按环境名查找 ./config/<env>.yaml，找不到不报错
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("绑定环境变量失败: %w", err)
		}
	}

	v.SetConfigType("yaml")
	if configPath == "" {
		v.SetConfigName(v.GetString("server.env"))
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
	} else {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Customer.ID = strings.TrimSpace(c.Customer.ID)
	if c.Customer.ID == "" {
		c.Customer.ID = "development"
	}
	if c.Customer.Name == "" {
		c.Customer.Name = "Customer " + c.Customer.ID
	}
	c.MermaidFlow.BaseURL = strings.TrimRight(strings.TrimSpace(c.MermaidFlow.BaseURL), "/")
	if c.MermaidFlow.TimeoutSeconds <= 0 {
		c.MermaidFlow.TimeoutSeconds = 10
	}
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
