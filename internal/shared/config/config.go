package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"tutor-track/internal/shared/models"
)

// LoadConfig reads a flat two-level yaml file (section: / key: value pairs).
// Values may use ${ENV_VAR:-default} expansion so the same file works in
// docker-compose and on bare metal.
func LoadConfig(filename string) (*models.Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := defaults()
	var section string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !strings.Contains(line, ":") {
			continue
		}

		if strings.HasSuffix(line, ":") {
			section = strings.TrimSuffix(line, ":")
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := expandEnv(strings.TrimSpace(parts[1]))

		applyValue(cfg, section, key, val)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *models.Config {
	return &models.Config{
		Server: models.ServerConfig{Port: "3000"},
		Tracking: models.TrackingConfig{
			ArrivalRadiusM:   150,
			SafetyRadiusM:    2000,
			IdleTimeoutMin:   10,
			SweepIntervalSec: 60,
			MirrorBuffer:     1024,
		},
	}
}

// expandEnv resolves ${VAR} and ${VAR:-default} references.
func expandEnv(val string) string {
	if !strings.HasPrefix(val, "${") || !strings.HasSuffix(val, "}") {
		return val
	}

	inside := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
	parts := strings.SplitN(inside, ":-", 2)

	envVar := parts[0]
	defVal := ""
	if len(parts) == 2 {
		defVal = parts[1]
	}

	if v, ok := os.LookupEnv(envVar); ok {
		return v
	}
	return defVal
}

func applyValue(cfg *models.Config, section, key, val string) {
	switch section {
	case "database":
		switch key {
		case "host":
			cfg.Database.Host = val
		case "port":
			cfg.Database.Port = val
		case "user":
			cfg.Database.User = val
		case "password":
			cfg.Database.Password = val
		case "database":
			cfg.Database.Database = val
		}
	case "rabbitmq":
		switch key {
		case "host":
			cfg.RabbitMQ.Host = val
		case "port":
			cfg.RabbitMQ.Port = val
		case "user":
			cfg.RabbitMQ.User = val
		case "password":
			cfg.RabbitMQ.Password = val
		}
	case "server":
		if key == "port" {
			cfg.Server.Port = val
		}
	case "auth":
		if key == "jwt_secret" {
			cfg.Auth.JWTSecret = val
		}
	case "tracking":
		switch key {
		case "arrival_radius_m":
			if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
				cfg.Tracking.ArrivalRadiusM = f
			}
		case "safety_radius_m":
			if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
				cfg.Tracking.SafetyRadiusM = f
			}
		case "idle_timeout_min":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.Tracking.IdleTimeoutMin = n
			}
		case "sweep_interval_sec":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.Tracking.SweepIntervalSec = n
			}
		case "mirror_buffer":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.Tracking.MirrorBuffer = n
			}
		}
	}
}
