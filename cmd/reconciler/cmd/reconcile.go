package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ledger-reconciliation-service/cmd/reconciler/config"
	"ledger-reconciliation-service/internal/reconciler"
	"ledger-reconciliation-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	bankFile   string
	ledgerFile string
	outputFile string
	keyColumns []string

	requireMatchingHeaders bool
	filterSummaryRows      bool
	filterInvalidDates     bool
	filterInvalidAmounts   bool
	summaryMarkers         []string
	delimiter              string
)

// Environment variables honored for backward compatibility with earlier
// deployments of this tool. Flags take precedence.
const (
	envBankFile   = "BANK_STATEMENT_FILE_PATH"
	envLedgerFile = "LEDGER_FILE_PATH"
	envOutputFile = "OUTPUT_FILE_PATH"
)

const defaultOutputFile = "reconciliation_report.xlsx"

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a bank statement against a ledger",
	Long: `Reconcile compares a bank statement export with a ledger export to
identify matched and unmatched records on both sides.

Both sources may be Excel workbooks (.xlsx, .xlsm) or delimited text files
(.csv, .tsv, .txt). Rows above the header banner and aggregate footer rows
are handled by a configurable filter pipeline before matching.

Examples:
  # Basic reconciliation on all shared columns
  reconciler reconcile --bank-file bank.xlsx --ledger-file ledger.xlsx

  # Explicit match key and output path
  reconciler reconcile --bank-file bank.csv --ledger-file ledger.csv \
    --key-columns "Transaction ID,Amount" --output-file report.xlsx

  # Drop summary/total rows before matching
  reconciler reconcile --bank-file bank.xlsx --ledger-file ledger.xlsx \
    --filter-summary-rows

  # Reconcile despite differing column sets
  reconciler reconcile --bank-file bank.xlsx --ledger-file ledger.xlsx \
    --require-matching-headers=false`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Source and output flags
	reconcileCmd.Flags().StringVarP(&bankFile, "bank-file", "b", "", "path to bank statement file (or BANK_STATEMENT_FILE_PATH)")
	reconcileCmd.Flags().StringVarP(&ledgerFile, "ledger-file", "l", "", "path to ledger file (or LEDGER_FILE_PATH)")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output workbook path (default: "+defaultOutputFile+")")

	// Matching flags
	reconcileCmd.Flags().StringSliceVarP(&keyColumns, "key-columns", "k", []string{}, "comma-separated key columns (default: all shared columns)")
	reconcileCmd.Flags().BoolVar(&requireMatchingHeaders, "require-matching-headers", true, "abort when the two sources carry different column sets")

	// Filter pipeline flags
	reconcileCmd.Flags().BoolVar(&filterSummaryRows, "filter-summary-rows", false, "drop aggregate rows (totals, balances) before matching")
	reconcileCmd.Flags().BoolVar(&filterInvalidDates, "filter-invalid-dates", false, "drop rows whose date column does not parse")
	reconcileCmd.Flags().BoolVar(&filterInvalidAmounts, "filter-invalid-amounts", true, "drop rows whose amount column is empty, non-numeric, or zero")
	reconcileCmd.Flags().StringSliceVar(&summaryMarkers, "summary-markers", []string{}, "override the aggregate-row marker phrases")

	// Input format flags
	reconcileCmd.Flags().StringVar(&delimiter, "delimiter", "", "field delimiter for text sources (default: ',')")

	// Bind flags to viper
	viper.BindPFlag("bank-file", reconcileCmd.Flags().Lookup("bank-file"))
	viper.BindPFlag("ledger-file", reconcileCmd.Flags().Lookup("ledger-file"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("key-columns", reconcileCmd.Flags().Lookup("key-columns"))
	viper.BindPFlag("require-matching-headers", reconcileCmd.Flags().Lookup("require-matching-headers"))
	viper.BindPFlag("filter-summary-rows", reconcileCmd.Flags().Lookup("filter-summary-rows"))
	viper.BindPFlag("filter-invalid-dates", reconcileCmd.Flags().Lookup("filter-invalid-dates"))
	viper.BindPFlag("filter-invalid-amounts", reconcileCmd.Flags().Lookup("filter-invalid-amounts"))
	viper.BindPFlag("summary-markers", reconcileCmd.Flags().Lookup("summary-markers"))
	viper.BindPFlag("delimiter", reconcileCmd.Flags().Lookup("delimiter"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	bankFile = viper.GetString("bank-file")
	ledgerFile = viper.GetString("ledger-file")
	outputFile = viper.GetString("output-file")
	keyColumns = viper.GetStringSlice("key-columns")
	requireMatchingHeaders = viper.GetBool("require-matching-headers")
	filterSummaryRows = viper.GetBool("filter-summary-rows")
	filterInvalidDates = viper.GetBool("filter-invalid-dates")
	filterInvalidAmounts = viper.GetBool("filter-invalid-amounts")
	summaryMarkers = viper.GetStringSlice("summary-markers")
	delimiter = viper.GetString("delimiter")

	// Fall back to the legacy environment variables
	if bankFile == "" {
		bankFile = os.Getenv(envBankFile)
	}
	if ledgerFile == "" {
		ledgerFile = os.Getenv(envLedgerFile)
	}
	if outputFile == "" {
		outputFile = os.Getenv(envOutputFile)
	}
	if outputFile == "" {
		outputFile = defaultOutputFile
	}

	// Validate required inputs
	if bankFile == "" {
		return fmt.Errorf("bank-file is required (flag or %s)", envBankFile)
	}
	if ledgerFile == "" {
		return fmt.Errorf("ledger-file is required (flag or %s)", envLedgerFile)
	}

	if err := validateFileExists(bankFile, "bank statement file"); err != nil {
		return err
	}
	if err := validateFileExists(ledgerFile, "ledger file"); err != nil {
		return err
	}

	if len(delimiter) > 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}

	// Validate output file directory exists if specified
	dir := filepath.Dir(outputFile)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	handler := NewCLIErrorHandler()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting reconciliation...\n")
		fmt.Fprintf(os.Stderr, "Bank file: %s\n", bankFile)
		fmt.Fprintf(os.Stderr, "Ledger file: %s\n", ledgerFile)
		fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
	}

	serviceConfig := config.CreateServiceConfig(config.Options{
		KeyColumns:             keyColumns,
		RequireMatchingHeaders: requireMatchingHeaders,
		FilterSummaryRows:      filterSummaryRows,
		FilterInvalidDates:     filterInvalidDates,
		FilterInvalidAmounts:   filterInvalidAmounts,
		SummaryMarkers:         summaryMarkers,
		Delimiter:              delimiter,
	})

	service, err := reconciler.NewService(serviceConfig)
	if err != nil {
		return fmt.Errorf("failed to create reconciliation service: %w", err)
	}

	result, err := service.Process(ctx, &reconciler.Request{
		BankFile:   bankFile,
		LedgerFile: ledgerFile,
	})
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	printConsoleSummary(result)

	writer := reporter.NewWorkbookWriter()
	if err := writer.Write(result.Report, outputFile); err != nil {
		os.Exit(handler.HandleError(err))
	}

	fmt.Printf("Report written to %s\n", outputFile)
	return nil
}

// printConsoleSummary mirrors the workbook summary sheet on stdout.
func printConsoleSummary(result *reconciler.Result) {
	s := result.Report.Summary

	fmt.Println("Reconciliation Summary")
	fmt.Println("======================")
	fmt.Printf("Bank records:          %d\n", s.TotalBank)
	fmt.Printf("Ledger records:        %d\n", s.TotalLedger)
	fmt.Printf("Matched:               %d\n", s.Matched)
	fmt.Printf("Unmatched (bank):      %d\n", s.UnmatchedBank)
	fmt.Printf("Unmatched (ledger):    %d\n", s.UnmatchedLedger)
	fmt.Printf("Match rate:            %.2f%%\n", s.MatchRate*100)

	if viper.GetBool("verbose") {
		fmt.Println("\nFilter stages (bank):")
		for _, st := range result.BankStages {
			fmt.Printf("  %-20s enabled=%-5t retained=%d\n", st.Name, st.Enabled, st.Retained)
		}
		fmt.Println("Filter stages (ledger):")
		for _, st := range result.LedgerStages {
			fmt.Printf("  %-20s enabled=%-5t retained=%d\n", st.Name, st.Enabled, st.Retained)
		}
	}
}
