package configs

import "strings"

// Supported result sinks.
const (
	SinkCSV      = "csv"
	SinkPostgres = "postgres"
)

// Output selects where trial results are appended. File is only used by the
// csv sink; the postgres sink writes to the database configured under PSQL_.
type Output struct {
	Sink string `env:"SINK" envDefault:"csv"`
	File string `env:"FILE" envDefault:"Data/Results/results.csv"`
}

// SinkName normalises the configured sink name.
func (c Output) SinkName() string {
	return strings.ToLower(strings.TrimSpace(c.Sink))
}
