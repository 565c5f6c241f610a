package cmd

import (
	"fmt"
	"os"

	"github.com/Aashish23092/ocr-green-finance/config"
	"github.com/Aashish23092/ocr-green-finance/extractor"
	"github.com/Aashish23092/ocr-green-finance/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCommand assembles the CLI.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ocr-green-finance",
		Short:         "Extract bill and payslip fields from OCR text and compute green finance metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newExtractCommand(), newRulesCommand())
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadEngines builds both engines from the configuration. A broken rule
// table stops startup here.
func loadEngines(cfg *config.Config, logger *zap.Logger) (*extractor.Engine, *metrics.Engine, error) {
	table, err := loadTable(cfg.RulesPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("field table loaded",
		zap.String("path", cfg.RulesPath),
		zap.Int("version", table.Version()),
		zap.Int("fields", len(table.Specs())),
	)

	me, err := metrics.NewEngine(cfg.Metrics)
	if err != nil {
		return nil, nil, err
	}
	return extractor.NewEngine(table, logger.Named("extractor")), me, nil
}

func loadTable(path string) (*extractor.FieldTable, error) {
	if path == "" {
		return extractor.DefaultTable()
	}
	return extractor.LoadTableFile(path)
}
