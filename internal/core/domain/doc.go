// Package domain defines the core business entities for mediasync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RunState and RunHandle: the single sync lifecycle and its current run
//   - RunResult and Event: how a cycle ended and what sinks are told
//   - Folder and MediaItem: what gets uploaded
//   - ScheduledTask and TaskResult: periodic trigger state and history
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
