package liftoff

import "context"

// Plugin extends the manager with optional functionality: config watchers,
// cleanup runners, metrics exporters. Register plugins with WithPlugin;
// the manager initializes them in registration order before the init
// phase and shuts them down in reverse order after a granted shutdown.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize starts the plugin. An error aborts startup: plugins
	// initialized so far are shut down in reverse order and Start fails
	// with ErrPluginInit.
	Initialize(ctx context.Context, env PluginEnv) error

	// Shutdown stops the plugin and releases its resources.
	Shutdown(ctx context.Context) error
}

// PluginEnv is the environment handed to a plugin at initialization.
type PluginEnv struct {
	// Logger is the manager's logger.
	Logger Logger

	// Manager is the owning lifecycle manager. Plugins may register
	// hooks, subscribe to events, or update the retry policy through it.
	Manager *Manager
}
