package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/w0nsdoof/diplomatch/params"
)

const (
	DefaultListenAddr = ":3000"
)

type MySQLConfig struct {
	Dsn             string `mapstructure:"dsn"`
	TablePrefix     string `mapstructure:"tablePrefix"`
	MaxIdleConns    int    `mapstructure:"maxIdleConns"`
	MaxOpenConns    int    `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime int    `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime int    `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessExpires  time.Duration `mapstructure:"accessExpires"`
	RefreshExpires time.Duration `mapstructure:"refreshExpires"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSL      bool   `mapstructure:"ssl"`
}

type MailConfig struct {
	Backend string     `mapstructure:"backend"`
	From    string     `mapstructure:"from"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

type Config struct {
	Debug        bool        `mapstructure:"debug"`
	SiteName     string      `mapstructure:"siteName"`
	BaseURL      string      `mapstructure:"baseURL"`
	FrontendURL  string      `mapstructure:"frontendURL"`
	ListenAddr   string      `mapstructure:"listenAddr"`
	AllowOrigins []string    `mapstructure:"allowOrigins"`
	Redis        RedisConfig `mapstructure:"redis"`
	MySQL        MySQLConfig `mapstructure:"mysql"`
	JWT          JWTConfig   `mapstructure:"jwt"`
	Mail         MailConfig  `mapstructure:"mail"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.FrontendURL == "" {
		c.FrontendURL = c.BaseURL
	}
	if c.JWT.AccessExpires == 0 {
		c.JWT.AccessExpires = params.AccessTokenExpiration
	}
	if c.JWT.RefreshExpires == 0 {
		c.JWT.RefreshExpires = params.RefreshTokenExpiration
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
