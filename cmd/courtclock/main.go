// Command courtclock runs the deadline calculator and holiday calendar from
// the command line without a server or store.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/court-compliance-api/config"
	"github.com/linesmerrill/court-compliance-api/deadlines"
	"github.com/linesmerrill/court-compliance-api/holidays"
	"github.com/linesmerrill/court-compliance-api/models"
)

type options struct {
	jurisdictionsFile string
	jurisdiction      string
	asJSON            bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "courtclock",
		Short:         "Court deadline and business-day calculator",
		Long:          `Computes filing due dates under the court counting rules and answers holiday and business-day questions for a jurisdiction.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.jurisdictionsFile, "jurisdictions", os.Getenv("JURISDICTIONS_FILE"), "TOML file with additional jurisdictions")
	root.PersistentFlags().StringVarP(&opts.jurisdiction, "jurisdiction", "j", holidays.FederalCode, "jurisdiction code")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of text")

	root.AddCommand(newDueDateCmd(opts))
	root.AddCommand(newHolidaysCmd(opts))
	root.AddCommand(newBusinessDayCmd(opts))
	return root
}

func (o *options) calendar() (*holidays.Calendar, error) {
	extra, err := config.LoadJurisdictions(o.jurisdictionsFile)
	if err != nil {
		return nil, err
	}
	return holidays.NewCalendar(extra...)
}

func (o *options) print(w io.Writer, v interface{}, text func(io.Writer)) error {
	if !o.asJSON {
		text(w)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newDueDateCmd(opts *options) *cobra.Command {
	var service, direction string
	cmd := &cobra.Command{
		Use:   "due-date <trigger-date> <period-days>",
		Short: "Compute the due date for a period running from a trigger date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trigger, err := models.ParseDate(args[0])
			if err != nil {
				return err
			}
			days, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("period days must be a number: %w", err)
			}
			cal, err := opts.calendar()
			if err != nil {
				return err
			}
			comp, err := deadlines.NewClock(cal).ComputeDueDate(deadlines.ComputeRequest{
				TriggerDate:   trigger,
				PeriodDays:    days,
				ServiceMethod: models.ServiceMethod(service),
				Jurisdiction:  opts.jurisdiction,
				Direction:     models.CountDirection(direction),
			})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), comp, func(w io.Writer) {
				fmt.Fprintln(w, comp.DueDate)
				if comp.Notes != "" {
					fmt.Fprintln(w, comp.Notes)
				}
			})
		},
	}
	cmd.Flags().StringVar(&service, "service", string(models.ServiceElectronic), "service method of the triggering document")
	cmd.Flags().StringVar(&direction, "direction", string(models.CountForward), "forward or backward")
	return cmd
}

func newHolidaysCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "holidays [year]",
		Short: "List observed court holidays for a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year := time.Now().Year()
			if len(args) == 1 {
				y, err := strconv.Atoi(args[0])
				if err != nil || y < 1 || y > 9999 {
					return fmt.Errorf("invalid year %q", args[0])
				}
				year = y
			}
			cal, err := opts.calendar()
			if err != nil {
				return err
			}
			list, err := cal.ObservedHolidays(year, opts.jurisdiction)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), list, func(w io.Writer) {
				for _, h := range list {
					fmt.Fprintf(w, "%s  %s\n", h.Date, h.Name)
				}
			})
		},
	}
}

type businessDay struct {
	Date                models.Date `json:"date"`
	IsBusinessDay       bool        `json:"isBusinessDay"`
	NextBusinessDay     models.Date `json:"nextBusinessDay"`
	PreviousBusinessDay models.Date `json:"previousBusinessDay"`
}

func newBusinessDayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "business-day <date>",
		Short: "Report whether a date is a business day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := models.ParseDate(args[0])
			if err != nil {
				return err
			}
			cal, err := opts.calendar()
			if err != nil {
				return err
			}
			j, err := cal.Jurisdiction(opts.jurisdiction)
			if err != nil {
				return err
			}
			out := businessDay{
				Date:                d,
				IsBusinessDay:       j.IsBusinessDay(d),
				NextBusinessDay:     j.NextBusinessDay(d),
				PreviousBusinessDay: j.PreviousBusinessDay(d),
			}
			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "%s business day: %t\n", d, out.IsBusinessDay)
				fmt.Fprintf(w, "next: %s\n", out.NextBusinessDay)
				fmt.Fprintf(w, "previous: %s\n", out.PreviousBusinessDay)
			})
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
