package orderbook

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// WriteTable renders t as an aligned text table.
func WriteTable(w io.Writer, t Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Selection ID\tBest Back Price\tBest Back Size\tBest Lay Price\tBest Lay Size\tLast Price Traded\tTotal Matched\tStatus\tRemoval Date\tAdjustment Factor")
	for _, r := range t.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.SelectionID,
			price(r.BestBackPrice),
			humanize.CommafWithDigits(r.BestBackSize, 2),
			price(r.BestLayPrice),
			humanize.CommafWithDigits(r.BestLaySize, 2),
			optPrice(r.LastPriceTraded),
			humanize.CommafWithDigits(r.TotalMatched, 2),
			r.Status,
			optTime(r.RemovalDate),
			optPrice(r.AdjustmentFactor),
		)
	}
	return tw.Flush()
}

func price(v float64) string { return humanize.Ftoa(v) }

func optPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return price(*v)
}

func optTime(v *time.Time) string {
	if v == nil {
		return "-"
	}
	return v.UTC().Format(time.RFC3339)
}
