// Package report shapes pipeline results into the summary records written at
// the end of a batch or channel run.
package report
