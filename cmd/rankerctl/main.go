package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Ranker/internal/config"
	"github.com/MikeSquared-Agency/Ranker/internal/crisp"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
	"github.com/MikeSquared-Agency/Ranker/internal/tabular"
)

var configPath string

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rankerctl",
		Short: "Rank alternatives with SAW and WP from the command line",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(
		newRankCmd(),
		newConvertCmd(),
		newCriteriaCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRankCmd() *cobra.Command {
	var (
		input         string
		variant       string
		normalization string
		weights       string
		useCrisp      bool
		scale         string
		output        string
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank the alternatives in a spreadsheet",
		Long: `Read a .xlsx or .csv decision matrix, run SAW and WP and print the report as JSON.

Example: rankerctl rank --input providers.xlsx --variant plain --weights 0.35,0.3,0.15,0.2 --output result.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), verbose)

			opts, err := cfg.RankerOptions()
			if err != nil {
				return err
			}
			ranker := scoring.NewRanker(opts, logger)

			var v scoring.Variant
			if variant != "" {
				if v, err = scoring.ParseVariant(variant); err != nil {
					return err
				}
			}
			var method scoring.NormalizationMethod
			if normalization != "" {
				if method, err = scoring.ParseNormalizationMethod(normalization); err != nil {
					return err
				}
			}
			ranker = ranker.WithOptions(v, method)

			w := cfg.RankingWeights()
			if weights != "" {
				if w, err = parseWeights(weights); err != nil {
					return err
				}
			}

			criteria := cfg.Criteria()
			reader := tabular.NewReader(criteria, tabular.Options{Sheet: cfg.Import.Sheet, Aliases: cfg.Import.Aliases})
			table, err := reader.ReadFile(input)
			if err != nil {
				return err
			}
			for _, s := range table.Skipped {
				logger.Warn("row skipped", "row", s.Name, "reason", s.Reason)
			}

			m, err := scoring.BuildDecisionMatrix(criteria, table.Rows)
			if err != nil {
				return err
			}
			if useCrisp {
				if scale == "" {
					scale = cfg.Ranking.Scale
				}
				sc, err := crisp.ParseScale(scale)
				if err != nil {
					return err
				}
				if m, err = crisp.NewConverter(criteria, crisp.DefaultTables(), sc).ConvertMatrix(m); err != nil {
					return err
				}
			}

			rep, err := ranker.Rank(m, w)
			if err != nil {
				return err
			}

			if output != "" {
				if err := writeOutput(output, rep); err != nil {
					return err
				}
				logger.Info("report written", "path", output)
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "decision matrix (.xlsx or .csv)")
	cmd.Flags().StringVar(&variant, "variant", "", "SAW variant: plain or fuzzy (default from config)")
	cmd.Flags().StringVar(&normalization, "normalization", "", "extreme_ratio or min_max (default per variant)")
	cmd.Flags().StringVar(&weights, "weights", "", "comma-separated weights in criterion order")
	cmd.Flags().BoolVar(&useCrisp, "crisp", false, "convert raw measurements to crisp levels first")
	cmd.Flags().StringVar(&scale, "scale", "", "crisp scale: 100 or 4 (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a .xlsx workbook or comparison .csv")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func newConvertCmd() *cobra.Command {
	var scale string

	cmd := &cobra.Command{
		Use:   "convert [criterion-id] [value]",
		Short: "Convert one raw measurement to its crisp level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			if scale == "" {
				scale = cfg.Ranking.Scale
			}
			sc, err := crisp.ParseScale(scale)
			if err != nil {
				return err
			}
			level, err := crisp.NewConverter(cfg.Criteria(), crisp.DefaultTables(), sc).Convert(args[0], value)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"criterion_id": args[0],
				"value":        value,
				"level":        level,
				"scale":        sc,
			})
		},
	}

	cmd.Flags().StringVar(&scale, "scale", "", "crisp scale: 100 or 4 (default from config)")
	return cmd
}

func newCriteriaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "criteria",
		Short: "Print the criterion registry with configured weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cfg.Criteria())
		},
	}
}

// parseWeights reads "0.35,0.3,0.15,0.2". Each weight must lie in [0,1];
// the set is normalized later.
func parseWeights(s string) (scoring.WeightSet, error) {
	parts := strings.Split(s, ",")
	out := make(scoring.WeightSet, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: weight %d: %q", scoring.ErrInvalidInput, i+1, p)
		}
		out[i] = v
	}
	return out, nil
}

func writeOutput(path string, rep *scoring.Report) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return tabular.SaveWorkbook(path, rep)
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := tabular.WriteComparisonCSV(f, rep); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("unsupported output %q: use .xlsx or .csv", path)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
