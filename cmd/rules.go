package cmd

import (
	"fmt"
	"strings"

	"github.com/Aashish23092/ocr-green-finance/extractor"
	"github.com/spf13/cobra"
)

func newRulesCommand() *cobra.Command {
	rules := &cobra.Command{
		Use:   "rules",
		Short: "Inspect field extraction rule tables",
	}

	rules.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a rule table, the built-in one when no path is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			table, err := loadTable(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok: version %d, %d fields\n", table.Version(), len(table.Specs()))
			for _, name := range table.Profiles() {
				specs, _ := table.Profile(name)
				ids := make([]string, 0, len(specs))
				for _, s := range specs {
					ids = append(ids, string(s.ID))
				}
				fmt.Fprintf(out, "  %s: %s\n", name, strings.Join(ids, ", "))
			}
			return nil
		},
	})

	rules.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the built-in rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(extractor.DefaultTableYAML())
			return err
		},
	})

	return rules
}
