package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipediff/internal"
	"recipediff/internal/config"
	"recipediff/internal/logger"
	"recipediff/internal/pipeline"
)

var (
	cfg config.Config
	log *zap.Logger

	flagLang      string
	flagTolerance float64
	flagOut       string
	flagLeft      string
	flagRight     string
	flagInput     string
)

var rootCmd = &cobra.Command{
	Use:           "recipediff",
	Short:         "Reconcile restaurant recipe sheets against supply-chain BOM exports",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("lang") {
			cfg.ReportLang = strings.ToLower(strings.TrimSpace(flagLang))
		}
		if cmd.Flags().Changed("tolerance") {
			cfg.Tolerance = flagTolerance
		}
		return cfg.Validate()
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a restaurant workbook (left) with a supplier workbook (right)",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := pipeline.NewComparisonService(cfg, log)
		if err != nil {
			return err
		}
		opts := svc.DefaultOptions()
		opts.OutputPath = outputPath()
		res, err := svc.CompareFiles(cmd.Context(), flagLeft, flagRight, opts)
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

var compareEmailCmd = &cobra.Command{
	Use:   "compare-eml",
	Short: "Compare the restaurant and supplier workbooks attached to one .eml message",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(flagInput)
		if err != nil {
			return err
		}
		svc, err := pipeline.NewComparisonService(cfg, log)
		if err != nil {
			return err
		}
		opts := svc.DefaultOptions()
		opts.OutputPath = outputPath()
		res, err := svc.CompareEmail(cmd.Context(), raw, opts)
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Detect the layout of one workbook and report how many rows survive normalization",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := pipeline.InputFromFile(flagInput)
		if err != nil {
			return err
		}
		svc, err := pipeline.NewComparisonService(cfg, log)
		if err != nil {
			return err
		}
		table, err := svc.Inspect(in)
		if err != nil {
			return err
		}
		fmt.Printf("layout=%s source=%s display=%v\n", table.Layout, table.Source, table.DisplayColumns)
		printStats(in.Name, table.Stats)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "", "report labels: zh|en")
	rootCmd.PersistentFlags().Float64Var(&flagTolerance, "tolerance", 0, "allowed dosage difference (default RECIPE_TOLERANCE)")

	compareCmd.Flags().StringVar(&flagLeft, "left", "", "restaurant workbook")
	compareCmd.Flags().StringVar(&flagRight, "right", "", "supplier workbook")
	compareCmd.Flags().StringVar(&flagOut, "out", "", "output xlsx path (default OUTPUT_DIR/recipe_diff_<time>.xlsx)")
	_ = compareCmd.MarkFlagRequired("left")
	_ = compareCmd.MarkFlagRequired("right")

	compareEmailCmd.Flags().StringVar(&flagInput, "input", "", ".eml file")
	compareEmailCmd.Flags().StringVar(&flagOut, "out", "", "output xlsx path (default OUTPUT_DIR/recipe_diff_<time>.xlsx)")
	_ = compareEmailCmd.MarkFlagRequired("input")

	inspectCmd.Flags().StringVar(&flagInput, "input", "", "workbook to inspect")
	_ = inspectCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(compareCmd, compareEmailCmd, inspectCmd)
}

func main() {
	var err error
	cfg, err = config.Load()
	must(err)

	log, err = logger.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(rootCmd.ExecuteContext(ctx))
}

func outputPath() string {
	if flagOut != "" {
		return flagOut
	}
	return filepath.Join(cfg.OutputDir, fmt.Sprintf("recipe_diff_%s.xlsx", time.Now().Format("20060102_150405")))
}

func printResult(res pipeline.CompareResult) {
	printStats("left", res.Left.Stats)
	printStats("right", res.Right.Stats)
	c := res.Counts
	fmt.Printf("compare done run=%s rows=%d matched=%d left_only=%d right_only=%d consistent=%d quantity_diff=%d unit_diff=%d\n",
		res.RunID, c.Total, c.Matched, c.LeftOnly, c.RightOnly, c.Consistent, c.QuantityMismatch, c.UnitMismatch)
	if res.OutputPath != "" {
		fmt.Printf("exported %d rows to %s\n", len(res.Report.Rows), res.OutputPath)
	}
}

func printStats(name string, s internal.NormalizeStats) {
	fmt.Printf("%s: read=%d kept=%d dropped(missing key=%d, non-numeric dosage=%d, duplicate=%d)\n",
		name, s.RowsRead, s.Kept, s.DroppedMissingKey, s.DroppedBadDosage, s.DroppedDuplicate)
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
