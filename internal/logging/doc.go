// Package logging configures structured logging for gen-file-index.
//
// By default log output is terse and goes to stderr. With --debug, JSON
// logs are also written to a size-rotated file under ~/.gen-file-index/logs/
// so a full trace of a run can be inspected afterwards.
package logging
