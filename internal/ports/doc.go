// Package ports defines the interfaces that connect the lifecycle engine
// to the surfaces it collaborates with.
//
// The engine core (internal/app, internal/recovery) depends only on these
// interfaces. Adapters (internal/adapters) implement them for concrete
// environments: a terminal splash, a stdin prompt, OS signals. Hosts
// embedding the engine supply their own implementations for GUI shells.
//
// # Port Interfaces
//
//   - [ProgressSurface]: Displays startup and shutdown progress
//   - [RecoveryDialog]: Asks the user how to handle a critical failure
//   - [ExitSignal]: Delivers the host's process-exit requests
//
// Keeping these as ports means engine tests run against inline fakes and
// no package in the core imports a terminal or GUI library.
package ports
