// Package featureflags exposes the runtime kill-switch and log level served by
// the rollout (CloudBees Feature Management) SDK. Without an API key the flags
// stay at their defaults and the SDK is never contacted.
package featureflags

import (
	"context"
	"fmt"
	"sync"

	"github.com/rollout/rox-go/v5/server"
)

// Namespace under which the container is registered.
const Namespace = "catalog"

// LogLevels are the values the LogLevel flag may take.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Container holds the registered flags. Field names become flag names.
type Container struct {
	Offline  server.RoxFlag
	LogLevel server.RoxString
}

var (
	mu           sync.RWMutex
	values       = newContainer("info")
	rox          *server.Rox
	ready        bool
	defaultLevel = "info"
)

func newContainer(level string) *Container {
	return &Container{
		Offline:  server.NewRoxFlag(false),
		LogLevel: server.NewRoxString(level, LogLevels),
	}
}

// Init registers the flags and, when apiKey is set, waits for the SDK to
// fetch its first configuration or for ctx to expire.
func Init(ctx context.Context, apiKey, level string) error {
	mu.Lock()
	defer mu.Unlock()
	stopSDK()

	if level == "" {
		level = "info"
	}
	defaultLevel = level
	values = newContainer(level)
	ready = false

	if apiKey == "" {
		return nil
	}

	rox = server.NewRox()
	rox.Register(Namespace, values)
	if err := awaitSetup(ctx, rox.Setup(apiKey, server.NewRoxOptions(server.RoxOptionsBuilder{}))); err != nil {
		stopSDK()
		return err
	}
	ready = true
	return nil
}

// awaitSetup waits for the SDK to report its first configuration.
func awaitSetup(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("featureflags setup: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("featureflags setup: %w", ctx.Err())
	}
}

// stopSDK must be called with mu held for writing.
func stopSDK() {
	if rox != nil {
		<-rox.Shutdown()
		rox = nil
	}
}

// Values returns the registered container.
func Values() *Container {
	mu.RLock()
	defer mu.RUnlock()
	return values
}

// Offline reports whether the service should refuse traffic.
func Offline() bool {
	mu.RLock()
	defer mu.RUnlock()
	if !ready {
		return false
	}
	return values.Offline.IsEnabled(nil)
}

// LogLevel returns the desired log level.
func LogLevel() string {
	mu.RLock()
	defer mu.RUnlock()
	if !ready {
		return defaultLevel
	}
	return values.LogLevel.GetValue(nil)
}

// Ready reports whether the SDK finished setup.
func Ready() bool {
	mu.RLock()
	defer mu.RUnlock()
	return ready
}

// Shutdown detaches from the SDK; flags fall back to their defaults.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	ready = false
	stopSDK()
}
