// Package version holds the build version string for the gateway binary.
package version

// V is the gateway version, overridden at build time with -ldflags.
var V = "v0.1.0"
