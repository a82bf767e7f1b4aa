package cli

import (
	"flag"

	"github.com/pennywise-app/pennywise-backend/internal/application/importer"
)

// ImportFlags are common flags for the import command
type ImportFlags struct {
	DryRun       bool
	LookbackDays int
	MaxRecords   int
	Provider     string
	Verbose      bool
}

// ParseImportFlags parses common import flags from command line
func ParseImportFlags() ImportFlags {
	var flags ImportFlags
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Run without persisting suggestions")
	flag.IntVar(&flags.LookbackDays, "days", 14, "Number of days to look back")
	flag.IntVar(&flags.MaxRecords, "max", 0, "Maximum records per provider (0 = all)")
	flag.StringVar(&flags.Provider, "provider", "", "Only fetch from this provider")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// ToImportOptions converts ImportFlags to importer.Options
func (f ImportFlags) ToImportOptions() importer.Options {
	return importer.Options{
		DryRun:       f.DryRun,
		LookbackDays: f.LookbackDays,
		MaxRecords:   f.MaxRecords,
		Provider:     f.Provider,
	}
}
