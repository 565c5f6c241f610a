package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Aashish23092/ocr-green-finance/config"
	"github.com/Aashish23092/ocr-green-finance/dto"
	"github.com/Aashish23092/ocr-green-finance/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type extractOptions struct {
	file      string
	profile   string
	metrics   []string
	rate      string
	principal string
	term      int
}

func newExtractCommand() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Build the record of an OCR text file (or stdin) and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger, err := cfg.NewLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runExtract(cmd, cfg, logger, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "-", "text file to read, - for stdin")
	f.StringVarP(&opts.profile, "profile", "p", "", "document profile (utility_bill, payslip)")
	f.StringSliceVarP(&opts.metrics, "metrics", "m", nil, "metrics to compute, all when empty")
	f.StringVar(&opts.rate, "rate", "", "annual loan rate in percent")
	f.StringVar(&opts.principal, "principal", "", "loan principal, defaults to the salary based ceiling")
	f.IntVar(&opts.term, "term", 0, "loan term in months")
	return cmd
}

func runExtract(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger, opts *extractOptions) error {
	text, err := readText(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}
	loan, err := opts.loan()
	if err != nil {
		return err
	}

	ex, me, err := loadEngines(cfg, logger)
	if err != nil {
		return err
	}
	svc := service.NewDocumentService(ex, me, service.Collaborators{}, logger.Named("service"))

	resp, err := svc.BuildRecord(cmd.Context(), dto.RecordRequest{
		Text:    text,
		Profile: opts.profile,
		Metrics: opts.metrics,
		Loan:    loan,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func readText(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func (o *extractOptions) loan() (*dto.LoanParams, error) {
	if o.rate == "" && o.principal == "" && o.term == 0 {
		return nil, nil
	}
	loan := &dto.LoanParams{TermMonths: o.term}
	if o.rate != "" {
		d, err := decimal.NewFromString(o.rate)
		if err != nil {
			return nil, fmt.Errorf("--rate: %w", err)
		}
		loan.AnnualRate = &d
	}
	if o.principal != "" {
		d, err := decimal.NewFromString(o.principal)
		if err != nil {
			return nil, fmt.Errorf("--principal: %w", err)
		}
		loan.Principal = &d
	}
	return loan, nil
}
