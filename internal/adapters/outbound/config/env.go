package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SENTINEL"

var envKeys = []string{
	"scoring.minimum_score",
	"ci.fail_on_violations",
	"guards.build",
	"events.nats_url",
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func applyEnv(cfg *domain.SentinelConfig, lookup func(string) (string, bool)) error {
	v := viper.New()
	for _, key := range envKeys {
		if val, ok := lookup(EnvName(key)); ok && val != "" {
			v.Set(key, val)
		}
	}

	if v.IsSet("scoring.minimum_score") {
		n, err := toInt(v.GetString("scoring.minimum_score"))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvName("scoring.minimum_score"), err)
		}
		cfg.Scoring.MinimumScore = n
	}
	if v.IsSet("ci.fail_on_violations") {
		cfg.CI.FailOnViolations = v.GetBool("ci.fail_on_violations")
	}
	if v.IsSet("guards.build") {
		cfg.Guards.Build = v.GetBool("guards.build")
	}
	if v.IsSet("events.nats_url") {
		cfg.Events.NATSURL = v.GetString("events.nats_url")
	}
	return nil
}

func toInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}
