package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jaigner-hub/msgdesk/internal/dashboard"
	"github.com/jaigner-hub/msgdesk/internal/data"
)

var (
	statsYear  int
	statsMonth int
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"dashboard"},
	Short:   "Show monthly volume, delivery outcomes and top recipients",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		board := dashboard.NewBoard(e.session.Email(), time.Now(), e.cfg.CostPerMessage)
		if statsYear != 0 {
			q := board.Monthly.Query()
			q.Year = statsYear
			board.Monthly.SetQuery(q)
			s := board.Status.Query()
			s.Year = statsYear
			board.Status.SetQuery(s)
		}
		if statsMonth != 0 {
			s := board.Status.Query()
			s.Month = statsMonth
			board.Status.SetQuery(s)
		}
		runStats(cmd.Context(), e, board)
		printStats(cmd.OutOrStdout(), board)
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsYear, "year", 0, "year for the monthly and status panels (default current)")
	statsCmd.Flags().IntVar(&statsMonth, "month", 0, "month for the status panel, 1-12 (default current)")
	rootCmd.AddCommand(statsCmd)
}

// runStats fetches the three panels concurrently. Each panel keeps its own
// error; one failing does not cancel the others.
func runStats(ctx context.Context, e *env, b *dashboard.Board) {
	var g errgroup.Group
	g.SetLimit(3)

	mt := b.Monthly.Begin()
	g.Go(func() error {
		r, err := dashboard.FetchMonthly(ctx, e.client, mt.Query, b.CostPerMessage)
		b.Monthly.Resolve(mt, r, err)
		return nil
	})
	st := b.Status.Begin()
	g.Go(func() error {
		r, err := dashboard.FetchStatus(ctx, e.client, st.Query)
		b.Status.Resolve(st, r, err)
		return nil
	})
	rt := b.Ranking.Begin()
	g.Go(func() error {
		r, err := dashboard.FetchRanking(ctx, e.client, rt.Query)
		b.Ranking.Resolve(rt, r, err)
		return nil
	})
	_ = g.Wait()
}

func printStats(w io.Writer, b *dashboard.Board) {
	mq := b.Monthly.Query()
	fmt.Fprintf(w, "Monthly messages %d\n", mq.Year)
	if r, ok := b.Monthly.Result(); ok {
		var cells []string
		for i, n := range r.Counts {
			cells = append(cells, fmt.Sprintf("%02d:%s", i+1, humanize.Comma(int64(n))))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(cells, " "))
		fmt.Fprintf(w, "  total %s  cost %s\n", humanize.Comma(int64(r.Total)), humanize.FormatFloat("#,###.##", r.Cost))
	} else {
		fmt.Fprintf(w, "  error: %v\n", b.Monthly.Err())
	}

	sq := b.Status.Query()
	fmt.Fprintf(w, "\nDelivery %d-%02d\n", sq.Year, sq.Month)
	if r, ok := b.Status.Result(); ok {
		fmt.Fprintf(w, "  delivered %s (%.1f%%)  failed %s (%.1f%%)  total %s\n",
			humanize.Comma(int64(r.Delivered)), r.DeliveredRate,
			humanize.Comma(int64(r.Failed)), r.FailedRate,
			humanize.Comma(int64(r.Total)))
	} else {
		fmt.Fprintf(w, "  error: %v\n", b.Status.Err())
	}

	fmt.Fprintf(w, "\nTop %d recipients\n", dashboard.TopN)
	r, ok := b.Ranking.Result()
	switch {
	case !ok:
		fmt.Fprintf(w, "  error: %v\n", b.Ranking.Err())
	case len(r) == 0:
		fmt.Fprintln(w, "  no messages yet")
	default:
		for i, p := range dashboard.TopRanks(r, dashboard.TopN) {
			fmt.Fprintf(w, "  %d. %-15s %s\n", i+1, data.Sanitize(p.PhoneNum), humanize.Comma(int64(p.Count)))
		}
	}
}
