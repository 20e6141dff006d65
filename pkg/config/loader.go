package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]any)

	defaultEnvOnce sync.Once
)

// Load parses environment variables into v. The first successful parse of a
// given type is cached; subsequent calls for the same type return the cached
// value so every component observes the same configuration.
//
// A .env file in the working directory is loaded once per process if present;
// a missing file is not an error.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	key := typeKey[T]()

	cacheMu.RLock()
	if cached, ok := cache[key]; ok {
		cacheMu.RUnlock()
		*v = cached.(T)
		return nil
	}
	cacheMu.RUnlock()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	// Another goroutine may have parsed the type while we waited for the lock.
	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache[key] = *v
	return nil
}

// MustLoad works like Load but panics on failure. Intended for configuration
// the application cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(err)
	}
}

// LoadEnv loads one or more explicit .env files before any Load call.
// Later files override earlier ones. Unlike the implicit default file, a
// missing explicit file is an error.
func LoadEnv(paths ...string) error {
	if err := godotenv.Overload(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// ResetCache clears all cached configuration values. Intended for tests.
func ResetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	clear(cache)
}

func typeKey[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return fmt.Sprintf("%s.%s", t.PkgPath(), t.Name())
}
