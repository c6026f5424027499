package configs

// Input locates the input tables. Path is joined with each file name.
// CountSeeder adds one engagement unit to every entry of the spread table,
// so a seeder is worth at least its own participation.
type Input struct {
	Path        string `env:"PATH" envDefault:"Data/Synthetic/"`
	Spread      string `env:"SPREAD" envDefault:"influence=random(0,2000)_n=100.csv"`
	Advertisers string `env:"ADVERTISERS" envDefault:"value=random(0,1)_b=5000_n=100.csv"`
	CountSeeder bool   `env:"COUNT_SEEDER" envDefault:"false"`
	// Generate, when positive, writes a synthetic data set with that many
	// advertisers and seeders to the input files before the run.
	Generate     int   `env:"GENERATE" envDefault:"0"`
	GenerateSeed int64 `env:"GENERATE_SEED" envDefault:"1"`
}
