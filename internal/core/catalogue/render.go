package catalogue

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func WriteCompetitions(w io.Writer, rows []CompetitionRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Competition\tID")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.Name, r.ID)
	}
	return tw.Flush()
}

func WriteEvents(w io.Writer, rows []EventRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Event\tID\tVenue\tCountry\tTime Zone\tOpen Date\tMarkets")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s (%s)\t%d\n",
			r.Name, r.ID, dash(r.Venue), dash(r.CountryCode), dash(r.TimeZone),
			r.OpenDate.UTC().Format("2006-01-02 15:04"), humanize.Time(r.OpenDate),
			r.MarketCount,
		)
	}
	return tw.Flush()
}

func WriteMarkets(w io.Writer, rows []MarketRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Market\tID\tTotal Matched")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.ID, humanize.CommafWithDigits(r.TotalMatched, 2))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
