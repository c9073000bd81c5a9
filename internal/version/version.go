// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Population runs with worker pool, catalog browser, Prometheus metrics
// 0.2.0 - Moon veto with halo criterion, YAML/JSON records, reference comparison
// 0.1.0 - Initial release: night and horizon windows, compute command, text report
