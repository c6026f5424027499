// Package csvio reads the advertiser and spread tables and appends trial
// results to a CSV log.
package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"seeding-auction/internal/core/domain"
)

// ErrMalformedRow is wrapped by every parse error of an input table.
var ErrMalformedRow = errors.New("malformed row")

// Loader builds the advertiser pool from a sparse spread table of
// (advertiser, seeder, engagement) rows and an advertiser table of
// (value per engagement, budget) rows joined by row position.
type Loader struct {
	spreadPath      string
	advertisersPath string
	countSeeder     bool
}

// NewLoader joins dir with both file names. With countSeeder every
// engagement quantity is increased by one.
func NewLoader(dir, spreadFile, advertisersFile string, countSeeder bool) *Loader {
	return &Loader{
		spreadPath:      filepath.Join(dir, spreadFile),
		advertisersPath: filepath.Join(dir, advertisersFile),
		countSeeder:     countSeeder,
	}
}

// Load implements port.AdvertiserLoader. Advertisers without spread rows get
// an empty spread; spread rows naming a missing advertiser are an error.
func (l *Loader) Load(ctx context.Context) (*domain.Pool, error) {
	spreads, err := l.readSpread(ctx)
	if err != nil {
		return nil, err
	}

	pool := &domain.Pool{}
	err = eachRow(ctx, l.advertisersPath, 2, func(row []string) error {
		vpe, err := parseFloat(row[0])
		if err != nil {
			return err
		}
		budget, err := parseFloat(row[1])
		if err != nil {
			return err
		}
		var spread map[domain.SeederID]float64
		if id := pool.Len(); id < len(spreads) {
			spread = spreads[id]
		}
		pool.Add(vpe, budget, spread)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(spreads) > pool.Len() {
		return nil, fmt.Errorf("%s: spread rows reference advertiser %d, only %d advertisers in %s",
			l.spreadPath, len(spreads)-1, pool.Len(), l.advertisersPath)
	}
	return pool, nil
}

func (l *Loader) readSpread(ctx context.Context) ([]map[domain.SeederID]float64, error) {
	var spreads []map[domain.SeederID]float64
	err := eachRow(ctx, l.spreadPath, 3, func(row []string) error {
		adv, err := parseIndex(row[0])
		if err != nil {
			return err
		}
		seeder, err := parseIndex(row[1])
		if err != nil {
			return err
		}
		q, err := parseFloat(row[2])
		if err != nil {
			return err
		}
		if l.countSeeder {
			q++
		}
		for len(spreads) <= adv {
			spreads = append(spreads, make(map[domain.SeederID]float64))
		}
		spreads[adv][domain.SeederID(seeder)] = q
		return nil
	})
	return spreads, err
}

// eachRow calls fn for every record of the file. Errors returned by fn are
// annotated with the file and the 1-based line number.
func eachRow(ctx context.Context, path string, fields int, fn func(row []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	r.TrimLeadingSpace = true
	r.ReuseRecord = true
	for {
		if err = ctx.Err(); err != nil {
			return err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err = fn(row); err != nil {
			line, _ := r.FieldPos(0)
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
	}
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedRow, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative value %v", ErrMalformedRow, v)
	}
	return v, nil
}

func parseIndex(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an index", ErrMalformedRow, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative index %d", ErrMalformedRow, v)
	}
	return v, nil
}
