// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - UploaderFactory and Uploader: produce and drain one cycle's upload queue
//   - Transport: hands a single media item to its destination
//   - StatusSink: receives structured run events
//   - FolderStore: folder configuration persistence
//   - SentLedger: which files have already been uploaded
//   - SchedulerStore: periodic task state and run history
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
//   - Constraint: external run conditions (network, power). Nil means always ready.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
