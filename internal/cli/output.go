package cli

import (
	"fmt"
	"strings"

	"github.com/pennywise-app/pennywise-backend/internal/application/importer"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// PrintHeader prints the application header
func PrintHeader(dryRun bool) {
	mode := "PRODUCTION"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Printf("pennywise import (%s mode)\n", mode)
}

// PrintConfiguration prints import configuration
func PrintConfiguration(provider string, lookbackDays, maxRecords int) {
	if provider == "" {
		provider = "all"
	}
	fmt.Printf("Provider: %s | Lookback: %d days", provider, lookbackDays)
	if maxRecords > 0 {
		fmt.Printf(" | Max records: %d", maxRecords)
	}
	fmt.Print("\n\n")
}

// PrintImportSummary prints the import result summary
func PrintImportSummary(result *importer.Result, store *storage.Storage, dryRun bool) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Summary: Fetched=%d Skipped=%d Suggestions=%d Transfers=%d Errors=%d\n",
		result.RecordsFetched,
		result.RecordsSkipped,
		result.SuggestionsCreated,
		result.TransfersMatched,
		len(result.Errors))

	// Print errors if any
	if len(result.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, err := range result.Errors {
			fmt.Printf("  - %v\n", err)
		}
	}

	// Get stats from database
	if store != nil {
		stats, _ := store.GetStats()
		if stats != nil && stats.TotalTransactions > 0 {
			fmt.Printf("\nAll-Time Stats: Transactions=%d Transfers=%d Expenses=$%.2f Income=$%.2f\n",
				stats.TotalTransactions,
				stats.TransferCount,
				float64(stats.ExpenseCents)/100,
				float64(stats.IncomeCents)/100)
		}
	}

	if !dryRun && result.SuggestionsCreated > 0 {
		fmt.Printf("\n%d suggestions awaiting review.\n", result.SuggestionsCreated)
	}
}
