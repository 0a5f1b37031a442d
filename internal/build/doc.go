// Package build runs the docsite pipeline: discovery, parallel parsing,
// assembly, rendering, link verification, writing and reporting. The CLI
// build, check and serve commands all route through BuildService.
package build
