package api

import "time"

type Config struct {
	HTTPAddr        string        `envconfig:"WSO_HTTP_ADDR" default:"0.0.0.0:8080"`
	MetricsAddr     string        `envconfig:"WSO_METRICS_ADDR" default:"0.0.0.0:9090"`
	LogLevel        string        `envconfig:"WSO_LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"WSO_SHUTDOWN_TIMEOUT" default:"30s"`

	Namespace  string `envconfig:"WSO_NAMESPACE" default:"workspaces"`
	Kubeconfig string `envconfig:"WSO_KUBECONFIG" default:""`

	DefaultImage string `envconfig:"WSO_DEFAULT_IMAGE" default:"codercom/code-server:latest"`
	DiskSize     string `envconfig:"WSO_DISK_SIZE" default:"10Gi"`

	ScheduleInterval time.Duration `envconfig:"WSO_SCHEDULE_INTERVAL" default:"30s"`

	RateLimitWindow   time.Duration `envconfig:"WSO_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitRequests int           `envconfig:"WSO_RATE_LIMIT_REQUESTS" default:"120"`
}
