// Package preflight provides readiness checks for the tools, credentials, and
// directories vidscribe depends on.
//
// The CLI "vidscribe check" command prints every result. The watch command
// calls Require at startup so a missing binary or unwritable output directory
// fails before the first scheduled run instead of hours later.
package preflight
