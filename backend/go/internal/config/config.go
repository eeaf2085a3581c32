package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值与原网关保持一致。
const (
	DefaultHost             = "0.0.0.0"
	DefaultPort             = "8080"
	DefaultAgentURL         = "http://localhost:8000"
	DefaultJwtSecret        = "super-secret-key"
	DefaultAgent            = "marie"
	DefaultLanguage         = "fr"
	DefaultUpstreamTimeout  = 10 * time.Second
	DefaultMaxRequestBytes  = 1 << 20
	DefaultMaxResponseBytes = 1 << 20
	DefaultShutdownTimeout  = 15 * time.Second
	DefaultKafkaTopic       = "gateway_logs"
)

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// ServerConfig 定义了入站 HTTP 服务的监听配置。
type ServerConfig struct {
	Host            string        `yaml:"host"`            // 监听地址
	Port            string        `yaml:"port"`            // 监听端口
	ReadTimeout     time.Duration `yaml:"readTimeout"`     // 读取请求的超时
	WriteTimeout    time.Duration `yaml:"writeTimeout"`    // 写入响应的超时
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"` // 优雅关闭的最长等待时间
}

// Addr 返回 host:port 形式的监听地址。
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// UpstreamConfig 定义了上游 Agent 编排服务的连接配置。
type UpstreamConfig struct {
	AgentURL         string        `yaml:"agentURL"`         // 上游基础地址
	Timeout          time.Duration `yaml:"timeout"`          // 单次调用的超时
	MaxRequestBytes  int64         `yaml:"maxRequestBytes"`  // 转发请求体的最大字节数
	MaxResponseBytes int64         `yaml:"maxResponseBytes"` // 读取上游响应体的最大字节数
}

// GatewayConfig 定义了转发时使用的默认值。
type GatewayConfig struct {
	DefaultAgent    string `yaml:"defaultAgent"`    // 未指定 agent 时使用的 Agent ID
	DefaultLanguage string `yaml:"defaultLanguage"` // 未指定 language 时使用的语言代码
}

// AuthConfig 用于配置认证相关设置。
// JwtSecret 目前只被加载，不参与任何校验。
type AuthConfig struct {
	JwtSecret string `yaml:"jwtSecret"` // JWT 密钥
}

// KafkaLogConfig 定义了日志投递到 Kafka 的配置。Brokers 为空时不启用。
type KafkaLogConfig struct {
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表
	Topic   string   `yaml:"topic"`   // 日志主题
	Level   string   `yaml:"level"`   // 投递的最低日志级别
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string         `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
	Kafka KafkaLogConfig `yaml:"kafka"` // Kafka 日志投递
}

// CORSConfig 定义了跨域策略。默认全部放开。
type CORSConfig struct {
	AllowOrigins []string      `yaml:"allowOrigins"`
	AllowMethods []string      `yaml:"allowMethods"`
	AllowHeaders []string      `yaml:"allowHeaders"`
	MaxAge       time.Duration `yaml:"maxAge"`
}

// AllowAllOrigins 判断是否允许任意来源。
func (c CORSConfig) AllowAllOrigins() bool {
	for _, o := range c.AllowOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// RateLimiterConfig 定义了入站限流器的配置 (令牌桶)。
type RateLimiterConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Rate       float64       `yaml:"rate"` // 每秒速率
	Capacity   int           `yaml:"capacity"`
	PerClient  bool          `yaml:"perClient"`  // 按客户端 IP 分别限流
	MaxClients int           `yaml:"maxClients"` // 同时跟踪的客户端数量上限
	IdleTTL    time.Duration `yaml:"idleTTL"`    // 客户端令牌桶的闲置回收时间
}

// CircuitBreakerConfig 定义了上游调用熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold uint32        `yaml:"failureThreshold"`
	SuccessThreshold uint32        `yaml:"successThreshold"`
	Timeout          time.Duration `yaml:"timeout"` // 例如: "30s"
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`        // 应用程序信息
	Server     ServerConfig     `yaml:"server"`     // 入站服务配置
	Upstream   UpstreamConfig   `yaml:"upstream"`   // 上游配置
	Gateway    GatewayConfig    `yaml:"gateway"`    // 转发默认值
	Auth       AuthConfig       `yaml:"auth"`       // 认证配置
	Logger     LoggerConfig     `yaml:"logger"`     // 日志记录器配置
	CORS       CORSConfig       `yaml:"cors"`       // 跨域配置
	Middleware MiddlewareConfig `yaml:"middleware"` // 中间件配置
}

// Default 返回一份填充了全部默认值的配置。
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig 函数从指定路径加载 YAML 配置文件，并用环境变量覆盖。
//
// 文件不存在时不视为错误，直接使用默认值与环境变量。
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		yamlFile, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
		default:
			if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
				return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
			}
		}
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "WebShop-AI Gateway"
	}
	if c.App.Version == "" {
		c.App.Version = "0.1.0"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Upstream.AgentURL == "" {
		c.Upstream.AgentURL = DefaultAgentURL
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if c.Upstream.MaxRequestBytes == 0 {
		c.Upstream.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if c.Upstream.MaxResponseBytes == 0 {
		c.Upstream.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if c.Gateway.DefaultAgent == "" {
		c.Gateway.DefaultAgent = DefaultAgent
	}
	if c.Gateway.DefaultLanguage == "" {
		c.Gateway.DefaultLanguage = DefaultLanguage
	}
	if c.Auth.JwtSecret == "" {
		c.Auth.JwtSecret = DefaultJwtSecret
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Kafka.Topic == "" {
		c.Logger.Kafka.Topic = DefaultKafkaTopic
	}
	if c.Logger.Kafka.Level == "" {
		c.Logger.Kafka.Level = "warn"
	}
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"*"}
	}
	if len(c.CORS.AllowMethods) == 0 {
		c.CORS.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	}
	if len(c.CORS.AllowHeaders) == 0 {
		c.CORS.AllowHeaders = []string{"*"}
	}
	if c.CORS.MaxAge == 0 {
		c.CORS.MaxAge = time.Hour
	}
	if c.Middleware.RateLimiter.Rate == 0 {
		c.Middleware.RateLimiter.Rate = 50
	}
	if c.Middleware.RateLimiter.Capacity == 0 {
		c.Middleware.RateLimiter.Capacity = 100
	}
	if c.Middleware.RateLimiter.MaxClients == 0 {
		c.Middleware.RateLimiter.MaxClients = 10000
	}
	if c.Middleware.RateLimiter.IdleTTL == 0 {
		c.Middleware.RateLimiter.IdleTTL = 10 * time.Minute
	}
	if c.Middleware.CircuitBreaker.FailureThreshold == 0 {
		c.Middleware.CircuitBreaker.FailureThreshold = 5
	}
	if c.Middleware.CircuitBreaker.SuccessThreshold == 0 {
		c.Middleware.CircuitBreaker.SuccessThreshold = 1
	}
	if c.Middleware.CircuitBreaker.Timeout == 0 {
		c.Middleware.CircuitBreaker.Timeout = 30 * time.Second
	}
}

// applyEnv 用环境变量覆盖配置。lookup 便于测试时注入。
func (c *AppConfig) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("HOST"); ok && v != "" {
		c.Server.Host = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Port = v
	}
	if v, ok := lookup("AGENT_URL"); ok && v != "" {
		c.Upstream.AgentURL = v
	}
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		c.Auth.JwtSecret = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logger.Level = v
	}
	if v, ok := lookup("UPSTREAM_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UPSTREAM_TIMEOUT 格式无效: %w", err)
		}
		c.Upstream.Timeout = d
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Logger.Kafka.Brokers = strings.Split(v, ",")
	}
	return nil
}

// Validate 检查配置是否可用。
func (c *AppConfig) Validate() error {
	u, err := url.Parse(c.Upstream.AgentURL)
	if err != nil {
		return fmt.Errorf("upstream.agentURL 无效: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream.agentURL 必须使用 http 或 https: %q", c.Upstream.AgentURL)
	}
	if u.Host == "" {
		return fmt.Errorf("upstream.agentURL 缺少主机名: %q", c.Upstream.AgentURL)
	}
	if _, err := strconv.ParseUint(c.Server.Port, 10, 16); err != nil {
		return fmt.Errorf("server.port 无效: %q", c.Server.Port)
	}
	if c.Upstream.Timeout < 0 {
		return fmt.Errorf("upstream.timeout 不能为负数")
	}
	return nil
}

// UpstreamBase 返回去掉尾部斜杠的上游基础地址。
func (c *AppConfig) UpstreamBase() string {
	return strings.TrimRight(c.Upstream.AgentURL, "/")
}
