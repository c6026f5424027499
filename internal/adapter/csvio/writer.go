package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"seeding-auction/internal/core/domain"
)

// Header is written once, when the results file is created.
var Header = []string{
	"advertisers", "iterations", "spread", "weighted", "mode", "revenue", "sw",
	"runtime_accumulated", "runtime_mean", "group_seed", "random_allocation_seed",
}

// FileWriter appends trial records to a CSV file. Rows already in the file
// are never rewritten.
type FileWriter struct {
	path string
}

// NewFileWriter returns a writer for path. The file and its directory are
// created on the first write.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// WriteTrials implements port.ResultWriter.
func (w *FileWriter) WriteTrials(ctx context.Context, records []domain.TrialRecord) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}

	writeHeader := false
	if _, err = os.Stat(w.path); errors.Is(err, fs.ErrNotExist) {
		writeHeader = true
	} else if err != nil {
		return err
	}
	if writeHeader {
		if err = os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	cw := csv.NewWriter(f)
	if writeHeader {
		if err = cw.Write(Header); err != nil {
			return err
		}
	}
	for i := range records {
		if err = cw.Write(row(&records[i])); err != nil {
			return fmt.Errorf("write trial %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(r *domain.TrialRecord) []string {
	return []string{
		r.AdvertiserSource,
		strconv.Itoa(r.Iterations),
		r.SpreadSource,
		formatBool(r.Weighted),
		r.Mode,
		formatFloat(r.Revenue),
		formatFloat(r.SocialWelfare),
		formatSeconds(r.Elapsed),
		formatSeconds(r.MeanElapsed),
		strconv.FormatInt(r.GroupSeed, 10),
		strconv.FormatInt(r.AllocationSeed, 10),
	}
}

// formatBool matches the capitalised flags of results written by earlier
// versions of the tool.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatSeconds(d time.Duration) string {
	return formatFloat(d.Seconds())
}
