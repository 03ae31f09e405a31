package models

import "time"

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

type ServerConfig struct {
	Port string
}

type AuthConfig struct {
	JWTSecret string
}

// TrackingConfig holds the operational constants of the live-tracking core.
// Radii are meters; the idle timeout is the window after which a journey with
// no accepted ping is force-ended with reason "timeout".
type TrackingConfig struct {
	ArrivalRadiusM   float64
	SafetyRadiusM    float64
	IdleTimeoutMin   int
	SweepIntervalSec int
	MirrorBuffer     int
}

func (t TrackingConfig) IdleTimeout() time.Duration {
	return time.Duration(t.IdleTimeoutMin) * time.Minute
}

func (t TrackingConfig) SweepInterval() time.Duration {
	return time.Duration(t.SweepIntervalSec) * time.Second
}

type Config struct {
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Server   ServerConfig
	Auth     AuthConfig
	Tracking TrackingConfig
}
