// Package logs reads the vidscribe log file for the logs command.
//
// Last returns the final lines with bounded memory, and Follow streams lines
// appended after an offset until its context is cancelled.
package logs
