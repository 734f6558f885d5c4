package stats

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/cli/completion_helper"
	"github.com/thomas-vilte/promptcache/internal/cli/flags"
	"github.com/thomas-vilte/promptcache/internal/config"
	"github.com/thomas-vilte/promptcache/internal/errors"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/services/cost"
	"github.com/thomas-vilte/promptcache/internal/ui"
)

const separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// HistoryProvider opens the activity history.
type HistoryProvider interface {
	GetActivityManager() (*cost.Manager, error)
}

type StatsCommand struct {
	history HistoryProvider
	now     func() time.Time
}

func NewStatsCommand(history HistoryProvider) *StatsCommand {
	return &StatsCommand{history: history, now: time.Now}
}

func (c *StatsCommand) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "stats",
		Aliases: []string{"cost"},
		Usage:   t.GetMessage("stats.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "monthly",
				Aliases: []string{"m"},
				Usage:   t.GetMessage("stats.monthly_flag", 0, nil),
				Local:   true,
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root := cmd.Root()
			if err := flags.Apply(cmd, cfg, t); err != nil {
				ui.HandleAppError(root.ErrWriter, err, t)
				return err
			}

			period := cost.PeriodDay
			if cmd.Bool("monthly") {
				period = cost.PeriodMonth
			}

			records, err := c.loadRecords(period)
			if err != nil {
				err = errors.ErrHistoryUnavailable.WithError(err)
				ui.HandleAppError(root.ErrWriter, err, t)
				return err
			}

			if period == cost.PeriodMonth {
				c.showMonthlyStats(root.Writer, records, t)
				return nil
			}
			c.showDailyStats(root.Writer, records, t)
			return nil
		},
	}
}

func (c *StatsCommand) loadRecords(period string) ([]cost.ActivityRecord, error) {
	manager, err := c.history.GetActivityManager()
	if err != nil {
		return nil, err
	}
	return manager.RecordsFor(period, c.now())
}

func (c *StatsCommand) showDailyStats(w io.Writer, todayRecords []cost.ActivityRecord, t *i18n.Translations) {

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	_, _ = cyan.Fprintf(w, "\n📊 %s\n", t.GetMessage("stats.daily_title", 0, nil))
	_, _ = fmt.Fprintln(w, separator)
	if len(todayRecords) == 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n\n", t.GetMessage("stats.no_activity", 0, nil))
		return
	}

	for _, record := range todayRecords {
		cacheIndicator := ""
		if record.CacheHit {
			cacheIndicator = green.Sprint(" [CACHE]")
		}
		_, _ = fmt.Fprintf(w, "%s - %s (%s): %s%s\n",
			record.Timestamp.Format("15:04"),
			record.Mode,
			record.Model,
			yellow.Sprintf("$%.6f", record.CostUSD),
			cacheIndicator,
		)
	}

	printTotals(w, cost.Summarize(todayRecords), t)
}

func (c *StatsCommand) showMonthlyStats(w io.Writer, monthRecords []cost.ActivityRecord, t *i18n.Translations) {
	now := c.now()

	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)
	_, _ = cyan.Fprintf(w, "\n📅 %s\n", t.GetMessage("stats.monthly_title", 0, map[string]interface{}{
		"Month": now.Format("January 2006"),
	}))
	_, _ = fmt.Fprintln(w, separator)
	if len(monthRecords) == 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n\n", t.GetMessage("stats.no_activity", 0, nil))
		return
	}

	dailyTotals := make(map[string]float64)
	for _, record := range monthRecords {
		dailyTotals[record.Timestamp.Format(cost.PeriodDay)] += record.CostUSD
	}
	days := make([]string, 0, len(dailyTotals))
	for day := range dailyTotals {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		_, _ = fmt.Fprintf(w, "%s: %s\n", day, yellow.Sprintf("$%.6f", dailyTotals[day]))
	}

	printTotals(w, cost.Summarize(monthRecords), t)
}

func printTotals(w io.Writer, totals cost.Totals, t *i18n.Translations) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)

	_, _ = fmt.Fprintln(w, separator)
	_, _ = cyan.Fprintf(w, "%s: ", t.GetMessage("stats.total", 0, nil))
	_, _ = yellow.Fprintf(w, "$%.6f USD\n", totals.CostUSD)
	_, _ = cyan.Fprintf(w, "%s: ", t.GetMessage("stats.saved", 0, nil))
	_, _ = green.Fprintf(w, "$%.6f USD\n", totals.SavedUSD)
	_, _ = fmt.Fprintf(w, "%s\n\n", t.GetMessage("stats.hits", 0, map[string]interface{}{
		"Hits":     totals.Hits,
		"Requests": totals.Requests,
	}))
}
