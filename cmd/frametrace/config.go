package main

import "github.com/ilyakaznacheev/cleanenv"

type ServiceConfig struct {
	Environment string `env:"FRAMETRACE_ENVIRONMENT" env-default:"development"`
	Port        string `env:"PORT" env-default:"8080"`

	SentryDSN string `env:"SENTRY_DSN"`

	// SnapshotsBucket selects GCS persistence when set; otherwise
	// finalized imports land in a local Badger database.
	SnapshotsBucket string `env:"FRAMETRACE_SNAPSHOTS_BUCKET"`
	BadgerPath      string `env:"FRAMETRACE_BADGER_PATH"      env-default:"/var/lib/frametrace/badger"`

	ImportsKafkaBrokers []string `env:"FRAMETRACE_IMPORTS_KAFKA_BROKERS" env-default:"localhost:9092"`
	ImportsKafkaTopic   string   `env:"FRAMETRACE_IMPORTS_KAFKA_TOPIC"   env-default:"frametrace-imports"`
}

func loadConfig() (ServiceConfig, error) {
	var c ServiceConfig
	err := cleanenv.ReadEnv(&c)
	return c, err
}
