package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sells-group/towerdash/internal/format"
	"github.com/sells-group/towerdash/internal/model"
	"github.com/sells-group/towerdash/internal/parse"
	"github.com/sells-group/towerdash/internal/pipeline"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatResultHeader prints the provenance line of a batch.
func formatResultHeader(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "Source: %s (%s)  Batch: %s  Fetched: %s\n",
		res.Source, res.Tier, res.BatchID, res.FetchedAt.Local().Format("2006-01-02 15:04:05"))
	if res.Notice != nil {
		fmt.Fprintf(w, "[%s] %s\n", res.Notice.Level, res.Notice.Message)
	}
	fmt.Fprintln(w)
}

// formatTowersList prints one line per tower.
func formatTowersList(w io.Writer, towers []model.Tower) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tINVESTMENT\tMONTHLY\tROI\tPAYBACK\tDEFAULTS")
	for _, t := range towers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			t.ID,
			t.Name,
			t.Location,
			format.BRL(t.Investment.Total),
			format.BRL(t.Returns.Monthly),
			format.Percent(t.Returns.ROI),
			format.Months(t.Contract.Payback),
			len(t.Missing),
		)
	}
	tw.Flush() //nolint:errcheck
}

// formatTowerDetail prints every field of one tower.
func formatTowerDetail(w io.Writer, t model.Tower) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(k, v string) { fmt.Fprintf(tw, "%s\t%s\n", k, v) }

	row("ID", t.ID)
	row("Name", t.Name)
	row("Location", t.Location)
	row("Coordinates", fmt.Sprintf("%.4f, %.4f", t.Coordinates.Lat, t.Coordinates.Lng))
	if t.Source != "" {
		row("Source", string(t.Source))
	}
	row("", "")
	row("Investment", format.BRL(t.Investment.Total))
	row("  Land", format.BRL(t.Investment.Land))
	row("  Structure", format.BRL(t.Investment.Structure))
	row("  Equipment", format.BRL(t.Investment.Equipment))
	row("  Other", format.BRL(t.Investment.Other))
	row("  Details", t.Investment.LocationDetails)
	row("", "")
	row("Monthly return", format.BRL(t.Returns.Monthly))
	row("Annual return", format.BRL(t.Returns.Annual))
	row("Operator fee", format.BRL(t.Returns.OperatorFee))
	row("Contract value", format.BRL(t.Returns.TotalContractValue))
	row("ROI", format.Percent(t.Returns.ROI))
	row("", "")
	row("Contract", format.Years(t.Contract.Duration)+" ("+t.Contract.Periods+")")
	row("Payback", format.Months(t.Contract.Payback))
	row("Lucrative at expiry", format.Percent(t.Contract.ExpiryLucrativePercentage))
	row("", "")
	row("Market CAGR", format.Percent(t.Market.CAGR))
	row("Top market", t.Market.TopMarket)
	row("Growth region", t.Market.GrowthRegion)
	row("Market value", fmt.Sprintf("%d: %s  %d: %s",
		t.Market.CurrentYear, format.Number(t.Market.CurrentValue, 0),
		t.Market.ProjectedYear, format.Number(t.Market.ProjectedValue, 0)))
	if len(t.Missing) > 0 {
		row("", "")
		row("Defaults used", strings.Join(t.Missing, ", "))
	}
	tw.Flush() //nolint:errcheck
}

// formatAttempts prints the proxy attempts of a live fetch.
func formatAttempts(w io.Writer, attempts []pipeline.Attempt) {
	if len(attempts) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROXY\tSTATUS\tOUTCOME\tROWS\tTOWERS\tDURATION")
	for _, a := range attempts {
		status := "-"
		if a.Status > 0 {
			status = fmt.Sprintf("%d", a.Status)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			a.Proxy, status, a.Outcome, a.Rows, a.Towers, a.Duration.Round(time.Millisecond))
	}
	tw.Flush() //nolint:errcheck
}

// formatDiagnostics prints the persisted fetch bookkeeping.
func formatDiagnostics(w io.Writer, d *pipeline.Diagnostics) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	ts := func(t *time.Time) string {
		if t == nil {
			return "never"
		}
		return t.Local().Format("2006-01-02 15:04:05")
	}
	status := "-"
	if d.LastHTTPStatus > 0 {
		status = fmt.Sprintf("%d", d.LastHTTPStatus)
	}
	attempted := "-"
	if len(d.ProxiesAttempted) > 0 {
		attempted = strings.Join(d.ProxiesAttempted, ", ")
	}

	fmt.Fprintf(tw, "Sheets configured\t%t\n", d.Configured)
	fmt.Fprintf(tw, "Cached towers\t%d\n", d.CachedTowers)
	fmt.Fprintf(tw, "Last fetch\t%s\n", ts(d.LastFetch))
	fmt.Fprintf(tw, "Last successful fetch\t%s\n", ts(d.LastSuccess))
	fmt.Fprintf(tw, "Last HTTP status\t%s\n", status)
	fmt.Fprintf(tw, "Proxies attempted\t%s\n", attempted)
	fmt.Fprintf(tw, "Proxies\t%s\n", strings.Join(d.Proxies, ", "))
	tw.Flush() //nolint:errcheck
}

// formatSkipped prints the rows the mapper rejected.
func formatSkipped(w io.Writer, skipped []parse.Skip) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSkipped %d row(s):\n", len(skipped))
	for _, s := range skipped {
		fmt.Fprintf(w, "  row %d: %s\n", s.Row, s.Reason)
	}
}
