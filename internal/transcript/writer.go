package transcript

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vidscribe/internal/fileutil"
)

// Format selects the on-disk representation of a transcript.
type Format string

const (
	FormatJSON Format = "json"
	FormatTXT  Format = "txt"
	FormatCSV  Format = "csv"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatJSON, FormatTXT, FormatCSV}

// ParseFormat resolves a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatTXT:
		return FormatTXT, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported transcript format %q (want json, txt, or csv)", value)
	}
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

var csvHeader = []string{"start_time", "end_time", "formatted_start", "formatted_end", "text"}

// Write renders t in the requested format.
func Write(w io.Writer, t *Transcript, format Format) error {
	if t == nil {
		return fmt.Errorf("write transcript: nil transcript")
	}
	switch format {
	case FormatTXT:
		return writeTXT(w, t)
	case FormatCSV:
		return writeCSV(w, t)
	case FormatJSON, "":
		data, err := fileutil.MarshalJSON(t)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("write transcript: unsupported format %q", format)
	}
}

// Save atomically writes t to path in the requested format.
func Save(t *Transcript, path string, format Format) error {
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		return Write(w, t, format)
	})
}

func writeTXT(w io.Writer, t *Transcript) error {
	for _, seg := range t.Segments {
		line := fmt.Sprintf("[%s - %s] %s\n",
			FormatTimestamp(seg.Start),
			FormatTimestamp(seg.End),
			strings.TrimSpace(seg.Text),
		)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, t *Transcript) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, seg := range t.Segments {
		record := []string{
			formatSeconds(seg.Start),
			formatSeconds(seg.End),
			FormatTimestamp(seg.Start),
			FormatTimestamp(seg.End),
			strings.TrimSpace(seg.Text),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatSeconds keeps at least one decimal so whole seconds read as 12.0.
func formatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
