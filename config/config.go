package config

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

type Config struct {
	App     App           `yaml:"app"`
	Server  Server        `yaml:"server"`
	DB      *sql.DB       `yaml:"db"`
	Queue   *RabbitMQ     `yaml:"rabbitmq"`
	Blob    Blob          `yaml:"blob"`
	Worker  Worker        `yaml:"worker"`
	Storage *minio.Client `yaml:"storage"`
}

type App struct {
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`
	Protocol    string `yaml:"protocol"`
}

type Server struct {
	HttpPort string `yaml:"http_port"`
}

type RabbitMQ struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	User   string `json:"user"`
	Pass   string `json:"pass"`
	Kind   string `json:"kind"`
	Driver string `json:"driver"`
}

// Blob configures the blob store. Driver is "local" or "minio".
type Blob struct {
	Driver                 string `yaml:"driver"`
	Root                   string `yaml:"root"`
	PublicBaseURL          string `yaml:"public_base_url"`
	Bucket                 string `yaml:"bucket"`
	Prefix                 string `yaml:"prefix"`
	SignedURLExpirySeconds int    `yaml:"signed_url_expiry_seconds"`
}

// Worker configures the worker-facing surface: the pull timeout and the
// IP allow-list guarding worker endpoints (empty list allows all).
type Worker struct {
	AllowedIPs            []string `yaml:"allowed_ips"`
	JobPollTimeoutSeconds int      `yaml:"job_poll_timeout_seconds"`
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", viper.GetString("postgresql_host"))
	if err != nil {
		return nil, err
	}

	rabbitmq := &RabbitMQ{
		Host:   viper.GetString("rabbitmq_host"),
		Port:   viper.GetInt("rabbitmq_port"),
		User:   viper.GetString("rabbitmq_user"),
		Pass:   viper.GetString("rabbitmq_pass"),
		Kind:   viper.GetString("rabbitmq_kind"),
		Driver: viper.GetString("queue_driver"),
	}

	viper.SetDefault("blob.driver", "local")
	viper.SetDefault("blob.root", "uploads")
	viper.SetDefault("blob.public_base_url", "http://localhost:8080")
	viper.SetDefault("blob.prefix", "videos/")
	viper.SetDefault("blob.signed_url_expiry_seconds", 900)
	viper.SetDefault("worker.job_poll_timeout_seconds", 20)

	cfg := &Config{
		App: App{
			Environment: viper.GetString("app.environment"),
			Host:        viper.GetString("app.host"),
			Protocol:    viper.GetString("app.protocol"),
		},
		Server: Server{
			HttpPort: viper.GetString("server.port"),
		},
		DB:    db,
		Queue: rabbitmq,
		Blob: Blob{
			Driver:                 viper.GetString("blob.driver"),
			Root:                   viper.GetString("blob.root"),
			PublicBaseURL:          viper.GetString("blob.public_base_url"),
			Bucket:                 viper.GetString("blob.bucket"),
			Prefix:                 viper.GetString("blob.prefix"),
			SignedURLExpirySeconds: viper.GetInt("blob.signed_url_expiry_seconds"),
		},
		Worker: Worker{
			AllowedIPs:            viper.GetStringSlice("worker.allowed_ips"),
			JobPollTimeoutSeconds: viper.GetInt("worker.job_poll_timeout_seconds"),
		},
	}

	if cfg.Blob.Driver == "minio" {
		minioClient, err := minio.New(viper.GetString("minio.url"), &minio.Options{
			Creds:  credentials.NewStaticV4(viper.GetString("minio.access_id"), viper.GetString("minio.secret_access_key"), ""),
			Secure: false,
		})
		if err != nil {
			return nil, err
		}
		cfg.Storage = minioClient
	}

	return cfg, nil
}
