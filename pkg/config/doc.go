// Package config loads environment-driven configuration structs.
//
// It combines github.com/caarlos0/env for struct parsing with
// github.com/joho/godotenv for optional .env files. Each configuration type is
// parsed once per process and cached, so independent components can load the
// same config without re-reading the environment.
//
// Usage:
//
//	type StoreConfig struct {
//		URI      string        `env:"MONGODB_URL,required"`
//		Timeout  time.Duration `env:"MONGODB_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg StoreConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
package config
