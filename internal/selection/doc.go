// Package selection narrows and orders video candidates before a batch run.
//
// Filter drops candidates without an identifier and those known to exceed a
// duration limit, then places live recordings (was live or currently live)
// ahead of regular uploads, each group newest first. It is a pure function of
// its inputs and never mutates the caller's slice.
package selection
