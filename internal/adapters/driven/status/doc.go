// Package status provides driven.StatusSink implementations that report
// run events to logs, Prometheus metrics and the persisted run history.
package status
