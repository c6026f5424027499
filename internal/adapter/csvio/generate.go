package csvio

import (
	"encoding/csv"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

// Synthetic describes a generated data set: every advertiser receives a
// uniform engagement in [0, MaxSpread) from every seeder, a uniform value per
// engagement in [0, 1) and the same budget.
type Synthetic struct {
	Advertisers int
	Seeders     int
	MaxSpread   float64
	Budget      float64
	Seed        int64
}

// DefaultSynthetic mirrors the shape of the bundled data set: spread drawn
// from [0, 2000) and a budget of 5000.
func DefaultSynthetic(n int, seed int64) Synthetic {
	return Synthetic{Advertisers: n, Seeders: n, MaxSpread: 2000, Budget: 5000, Seed: seed}
}

// Generate writes the spread and advertiser tables of s into dir, replacing
// existing files. The output only depends on s.
func Generate(dir, spreadFile, advertisersFile string, s Synthetic) error {
	r := rand.New(rand.NewSource(s.Seed))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	spread := make([][]string, 0, s.Advertisers*s.Seeders)
	for a := 0; a < s.Advertisers; a++ {
		for sd := 0; sd < s.Seeders; sd++ {
			spread = append(spread, []string{
				strconv.Itoa(a),
				strconv.Itoa(sd),
				formatFloat(r.Float64() * s.MaxSpread),
			})
		}
	}
	if err := writeAll(filepath.Join(dir, spreadFile), spread); err != nil {
		return err
	}

	advertisers := make([][]string, 0, s.Advertisers)
	for a := 0; a < s.Advertisers; a++ {
		advertisers = append(advertisers, []string{
			formatFloat(r.Float64()),
			formatFloat(s.Budget),
		})
	}
	return writeAll(filepath.Join(dir, advertisersFile), advertisers)
}

func writeAll(path string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return csv.NewWriter(f).WriteAll(rows)
}
