package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newPlansCmd(envFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List the subscription plan catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(*envFiles)
			if err != nil {
				return err
			}
			plans, err := loadPlans(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE\tDAYS")
			for _, p := range plans.List() {
				price := decimal.New(p.Amount, -2).StringFixed(2)
				fmt.Fprintf(w, "%s\t%s\t%s %s\t%d\n", p.ID, p.Name, p.Currency, price, p.PeriodDays)
			}
			fmt.Fprintf(w, "trial\t\t\t%d\n", plans.TrialDays)
			return w.Flush()
		},
	}
}
