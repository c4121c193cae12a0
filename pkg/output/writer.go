package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

type Format string

const (
	FormatPlain  Format = "plain"
	FormatPaired Format = "paired"
	FormatJSON   Format = "json"
)

// Formats lists the accepted values for the output-format parameter.
var Formats = []string{string(FormatPlain), string(FormatPaired), string(FormatJSON)}

// RecordWriter renders records one per line. Each Write call is flushed
// before it returns so that finished batches are visible downstream even if
// a later batch fails.
type RecordWriter struct {
	w      *bufio.Writer
	format Format
	count  int
}

func NewRecordWriter(w io.Writer, format Format) (*RecordWriter, error) {
	switch format {
	case "":
		format = FormatPlain
	case FormatPlain, FormatPaired, FormatJSON:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &RecordWriter{w: bufio.NewWriter(w), format: format}, nil
}

func (rw *RecordWriter) Write(records []Record) error {
	for _, rec := range records {
		if err := rw.writeOne(rec); err != nil {
			return fmt.Errorf("failed to write output record %d: %w", rec.Index, err)
		}
	}
	if err := rw.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	rw.count += len(records)
	log.Trace().Int("records", len(records)).Int("total", rw.count).Msg("records written")
	return nil
}

// Count returns the number of records written so far.
func (rw *RecordWriter) Count() int {
	return rw.count
}

func (rw *RecordWriter) writeOne(rec Record) error {
	switch rw.format {
	case FormatPaired:
		_, err := fmt.Fprintf(rw.w, "%s\t%s\n", rec.Input, rec.Output)
		return err
	case FormatJSON:
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		b = append(b, '\n')
		_, err = rw.w.Write(b)
		return err
	default:
		_, err := rw.w.WriteString(rec.Output + "\n")
		return err
	}
}
