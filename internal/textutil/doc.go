// Package textutil provides filename helpers for artifacts derived from
// video titles and paths.
package textutil
