// Package schedule runs a job on a cron expression for the watch command.
//
// Runs never overlap: a tick that fires while the previous job is still
// working is skipped and logged. The watcher stops when its context is
// cancelled and waits for the in-flight job to return.
package schedule
