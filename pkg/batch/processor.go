package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/go-go-golems/xcopr/pkg/lines"
	"github.com/go-go-golems/xcopr/pkg/output"
	"github.com/go-go-golems/xcopr/pkg/pool"
	"github.com/go-go-golems/xcopr/pkg/render"
	"github.com/go-go-golems/xcopr/pkg/runner"
	"github.com/go-go-golems/xcopr/pkg/xerr"
)

// Processor drives a run. It owns the temp file pool for the whole run and
// processes batches strictly one after the other.
type Processor struct {
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer
}

// Summary reports how far a run got. It is returned on failure too.
type Summary struct {
	Lines   int
	Batches int
	Done    int
	Records int
}

func NewProcessor() *Processor {
	return &Processor{Fs: afero.NewOsFs(), Stdout: os.Stdout, Stderr: os.Stderr}
}

// Process validates cfg, reads all of in, then runs one command per batch.
// The first failing batch stops the run; records of earlier batches have
// already been written to Stdout. Pool files are removed on every return path.
func (p *Processor) Process(ctx context.Context, cfg *Config, in io.Reader) (sum Summary, err error) {
	if err := cfg.ValidateFs(p.Fs); err != nil {
		return sum, err
	}
	writer, err := output.NewRecordWriter(p.Stdout, output.Format(cfg.OutputFormat))
	if err != nil {
		return sum, fmt.Errorf("%w: %w", xerr.ErrInvalidConfiguration, err)
	}

	input, err := lines.ReadContext(ctx, in)
	if err != nil {
		return sum, err
	}
	sum.Lines = len(input)

	parts, err := Partition(input, cfg.BatchSize)
	if err != nil {
		return sum, err
	}
	sum.Batches = parts.Count()
	if sum.Batches == 0 {
		log.Debug().Msg("no input lines, nothing to do")
		return sum, nil
	}
	if !render.Contains(cfg.Command, cfg.Replace) {
		log.Warn().Str("command", cfg.Command).Str("replace", cfg.Replace).Msg("replacement string not found in command; temp files will not be passed")
		p.warn("replacement string %q not found in command; temp files will not be passed", cfg.Replace)
	}

	tp, err := pool.New(p.Fs, cfg.TempDir, pool.DefaultPrefix, cfg.BatchSize)
	if err != nil {
		return sum, err
	}
	defer func() {
		if cerr := tp.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to remove temp files: %w", cerr))
		}
	}()

	r := &runner.Runner{Shell: cfg.Shell}
	log.Info().Int("lines", sum.Lines).Int("batches", sum.Batches).Int("batch_size", cfg.BatchSize).Msg("batch run start")

	for number := 1; ; number++ {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("interrupted before batch %d/%d: %w", number, sum.Batches, err)
		}
		offset := parts.Offset()
		chunk, ok := parts.Next()
		if !ok {
			break
		}
		n, err := p.processBatch(ctx, cfg, tp, r, writer, number, sum.Batches, offset, chunk)
		if err != nil {
			return sum, err
		}
		sum.Done++
		sum.Records += n
	}

	log.Info().Int("batches", sum.Done).Int("records", sum.Records).Msg("batch run completed")
	return sum, nil
}

func (p *Processor) processBatch(
	ctx context.Context,
	cfg *Config,
	tp *pool.Pool,
	r *runner.Runner,
	writer *output.RecordWriter,
	number, total, offset int,
	chunk []string,
) (int, error) {
	paths, err := tp.Populate(chunk)
	if err != nil {
		return 0, fmt.Errorf("batch %d/%d: %w", number, total, err)
	}
	command := render.Command(cfg.Command, cfg.Replace, paths)
	log.Debug().Int("batch", number).Int("lines", len(chunk)).Str("command", command).Msg("batch start")

	res, err := r.Run(ctx, command)
	if err != nil {
		p.reportFailure(number, total, command, err)
		return 0, fmt.Errorf("batch %d/%d: %w", number, total, err)
	}

	records, mismatch := output.Correlate(number, offset, chunk, res.Lines)
	if mismatch.Any() {
		if cfg.StrictCorrelation {
			err := fmt.Errorf("%w: %d input lines, %d output lines", xerr.ErrOutputMismatch, mismatch.Inputs, mismatch.Outputs)
			p.reportFailure(number, total, command, err)
			return 0, fmt.Errorf("batch %d/%d: %w", number, total, err)
		}
		log.Warn().
			Int("batch", number).
			Int("inputs", mismatch.Inputs).
			Int("outputs", mismatch.Outputs).
			Msg("output line count differs from input; pairing truncated to the shorter")
		p.warn("batch %d/%d: %d input lines but %d output lines; unmatched lines dropped", number, total, mismatch.Inputs, mismatch.Outputs)
	}

	if err := writer.Write(records); err != nil {
		return 0, fmt.Errorf("batch %d/%d: %w", number, total, err)
	}
	log.Debug().Int("batch", number).Int("records", len(records)).Dur("duration", res.Duration).Msg("batch done")
	return len(records), nil
}

func (p *Processor) reportFailure(number, total int, command string, err error) {
	if p.Stderr == nil {
		return
	}
	reason := output.ShortError(err)
	var stderr []byte
	var ee *xerr.ExitError
	if errors.As(err, &ee) {
		reason = fmt.Sprintf("exit status %d", ee.Code)
		stderr = ee.Stderr
	}
	_, _ = fmt.Fprint(p.Stderr, output.FailureReport(number, total, command, reason, stderr))
}

func (p *Processor) warn(format string, a ...interface{}) {
	if p.Stderr == nil {
		return
	}
	_, _ = fmt.Fprintln(p.Stderr, output.Warnf(format, a...))
}
