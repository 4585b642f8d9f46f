package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overrides cfg with NUTRI_* environment variables:
//
//	NUTRI_GOAL_KCAL, NUTRI_GOAL_PROTEIN, NUTRI_GOAL_FAT, NUTRI_GOAL_CARB
//	NUTRI_TIMEZONE, NUTRI_LOG_LEVEL
//	NUTRI_NOTIFY_BACKEND, NUTRI_AMQP_URL, NUTRI_AMQP_EXCHANGE, NUTRI_AMQP_ROUTING_KEY
//	NUTRI_WEB_ENABLED, NUTRI_WEB_BIND, NUTRI_WEB_PORT
//	NUTRI_DISABLED_TOOLS (comma separated, merged with the file list)
//
// Unparseable numbers are ignored.
func ApplyEnv(cfg *Config) {
	cfg.Goals.Kcal = getEnvFloat("NUTRI_GOAL_KCAL", cfg.Goals.Kcal)
	cfg.Goals.ProteinG = getEnvFloat("NUTRI_GOAL_PROTEIN", cfg.Goals.ProteinG)
	cfg.Goals.FatG = getEnvFloat("NUTRI_GOAL_FAT", cfg.Goals.FatG)
	cfg.Goals.CarbG = getEnvFloat("NUTRI_GOAL_CARB", cfg.Goals.CarbG)

	cfg.Timezone = getEnv("NUTRI_TIMEZONE", cfg.Timezone)
	cfg.LogLevel = getEnv("NUTRI_LOG_LEVEL", cfg.LogLevel)

	cfg.Notify.Backend = getEnv("NUTRI_NOTIFY_BACKEND", cfg.Notify.Backend)
	cfg.Notify.AMQPURL = getEnv("NUTRI_AMQP_URL", cfg.Notify.AMQPURL)
	cfg.Notify.AMQPExchange = getEnv("NUTRI_AMQP_EXCHANGE", cfg.Notify.AMQPExchange)
	cfg.Notify.AMQPRoutingKey = getEnv("NUTRI_AMQP_ROUTING_KEY", cfg.Notify.AMQPRoutingKey)

	cfg.Web.Enabled = getEnvBool("NUTRI_WEB_ENABLED", cfg.Web.Enabled)
	cfg.Web.Bind = getEnv("NUTRI_WEB_BIND", cfg.Web.Bind)
	cfg.Web.Port = getEnvInt("NUTRI_WEB_PORT", cfg.Web.Port)

	if v := os.Getenv("NUTRI_DISABLED_TOOLS"); v != "" {
		cfg.DisabledTools = mergeStringSlice(cfg.DisabledTools, strings.Split(v, ","))
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
