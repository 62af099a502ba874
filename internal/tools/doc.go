// Package tools provides reusable runtime helpers shared by control-plane
// modules: command execution and the host-utility wrappers built on it.
package tools
