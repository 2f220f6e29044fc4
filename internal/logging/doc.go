// Package logging builds the zap loggers used by the CLI and the node.
package logging
