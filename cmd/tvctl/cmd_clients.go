package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/tv-manager/internal/ledger"
	"github.com/magabrotheeeer/tv-manager/internal/lib/dates"
	"github.com/magabrotheeeer/tv-manager/internal/lib/password"
	"github.com/magabrotheeeer/tv-manager/internal/models"
	"github.com/magabrotheeeer/tv-manager/internal/outreach"
)

func newClientsCmd(c *cli) *cobra.Command {
	clientsCmd := &cobra.Command{
		Use:   "clients",
		Short: "Inspect clients",
	}

	var (
		query   string
		showAll bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List clients that are due soon, or all clients with --all",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.printClients(c.mgr.List(query, showAll))
		},
	}
	listCmd.Flags().StringVarP(&query, "query", "q", "", "search by name or login")
	listCmd.Flags().BoolVarP(&showAll, "all", "a", false, "show all clients")

	clientsCmd.AddCommand(listCmd)
	return clientsCmd
}

func (c *cli) printClients(views []models.ClientView) error {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	now := c.mgr.Now()
	fmt.Fprintln(w, "ID\tNAME\tUSER\tEXPIRES\tDAYS\tSTATUS\tVALUE\tLAST CONTACT")
	for _, v := range views {
		lastContact := dates.Placeholder
		if v.LastMessageDate != nil {
			lastContact = dates.FormatDateTimeLocalized(*v.LastMessageDate, now)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			v.ID, v.Name, v.User, v.ExpirationDate, v.DaysLeft, v.Status, outreach.FormatCurrency(v.Value), lastContact)
	}
	fmt.Fprintf(w, "\n%d client(s)\n", len(views))
	return w.Flush()
}

func newDashboardCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show status counters and revenue totals",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s := c.mgr.Dashboard()
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Active\t%d\n", s.Active)
			fmt.Fprintf(w, "Expired\t%d\n", s.Expired)
			fmt.Fprintf(w, "Message sent\t%d\n", s.MessageSent)
			fmt.Fprintf(w, "Inactive\t%d\n", s.Inactive)
			fmt.Fprintf(w, "Total revenue\t%s\n", outreach.FormatCurrency(s.TotalRevenue))
			fmt.Fprintf(w, "Last 30 days\t%s\n", outreach.FormatCurrency(s.Last30DaysRevenue))
			fmt.Fprintf(w, "Current month\t%s\n", outreach.FormatCurrency(s.CurrentMonthTotal))
			fmt.Fprintf(w, "Months sold\t%d\n", s.TotalMonths)
			fmt.Fprintf(w, "Forecast\t%s\n", outreach.FormatCurrency(s.Forecast))
			return w.Flush()
		},
	}
}

func newHistoryCmd(c *cli) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show payment history grouped by day, week or month",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			g, err := ledger.ParseGranularity(group)
			if err != nil {
				return err
			}
			h := c.mgr.History(g)
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			for _, grp := range h.Groups {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", grp.Label, grp.Sublabel, grp.Count, outreach.FormatCurrency(grp.Total))
				for _, tx := range grp.Transactions {
					fmt.Fprintf(w, "  %s\t%s\t%dm\t%s\n",
						tx.CreatedAt.Format("02/01/2006 15:04"), tx.ClientName, tx.DurationMonths, outreach.FormatCurrency(tx.Value))
				}
			}
			fmt.Fprintf(w, "\nCurrent month\t%s\n", outreach.FormatCurrency(h.CurrentMonthTotal))
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", string(ledger.ByDay), "grouping: day, week or month")
	return cmd
}

func newRenewCmd(c *cli) *cobra.Command {
	var (
		months int
		value  string
	)
	cmd := &cobra.Command{
		Use:   "renew <id>",
		Short: "Renew a client subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
			if err != nil {
				return fmt.Errorf("invalid --value %q: %w", value, err)
			}
			view, err := c.mgr.Renew(cmd.Context(), args[0], models.RenewInput{DurationMonths: months, Value: v})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s renewed until %s (%s)\n", view.Name, view.ExpirationDate, view.Status)
			return nil
		},
	}
	cmd.Flags().IntVarP(&months, "months", "m", 1, "renewal length in months")
	cmd.Flags().StringVar(&value, "value", "", "amount paid")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func newHashPasswordCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "hash-password",
		Short:       "Read a password from stdin and print its bcrypt hash for admin.password_hash",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipManager: "true"},
		RunE: func(_ *cobra.Command, _ []string) error {
			line, err := c.in.ReadString('\n')
			line = strings.TrimRight(line, "\r\n")
			if line == "" {
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				return errors.New("empty password")
			}
			hash, err := password.GetHash(line)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, hash)
			return nil
		},
	}
}
