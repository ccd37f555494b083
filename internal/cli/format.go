package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/evcraddock/arv/internal/comps"
	"github.com/evcraddock/arv/internal/report"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	metricStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printValuation renders the three result sections: all comps, closest
// matches and the ARV, or a warning when there are no comps.
func printValuation(w io.Writer, v *comps.Valuation, allFields bool) error {
	if v.Status() == comps.StatusNoComps {
		fmt.Fprintln(w, warnStyle.Render("No comps found. Check the provider API key or try another source."))
		return nil
	}

	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("All Comparable Sales (%d)", len(v.Comps))))
	var err error
	if allFields {
		err = printFieldTable(w, v.Comps)
	} else {
		err = printCompTable(w, v.Comps, false)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Top %d Closest Matches", len(v.Top))))
	if !v.Ranked {
		fmt.Fprintln(w, mutedStyle.Render("Not ranked: the provider did not return sqft and lot size for every comp. Showing comps as received."))
	}
	if err := printCompTable(w, v.Top, v.Ranked); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("After Repair Value (ARV)"))
	if !v.HasARV() {
		fmt.Fprintln(w, warnStyle.Render("Price data not available in this dataset."))
		return nil
	}
	fmt.Fprintln(w, "Estimated ARV: "+metricStyle.Render("$"+formatPrice(*v.ARV)))
	return nil
}

// printCompTable prints comps with the normalized columns.
func printCompTable(w io.Writer, records []comps.Record, withScore bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := "#\tADDRESS\tSALE DATE\tSQFT\tLOT\tPRICE"
	if withScore {
		header += "\tSCORE"
	}
	if _, err := fmt.Fprintln(tw, header); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for i, r := range records {
		row := fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s",
			i+1, dash(truncate(r.Address, 40)), dash(r.SaleDate),
			formatNumber(r.Sqft), formatNumber(r.LotSize), formatDollars(r.Price))
		if withScore {
			row += "\t" + formatNumber(r.Score)
		}
		if _, err := fmt.Fprintln(tw, row); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printFieldTable prints every raw provider field, one column per key.
func printFieldTable(w io.Writer, records []comps.Record) error {
	cols := comps.Columns(records)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "#\t"+strings.ToUpper(strings.Join(cols, "\t"))); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for i, r := range records {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = dash(truncate(formatField(r.Fields[c]), 30))
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\n", i+1, strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printReportTable prints saved valuation summaries.
func printReportTable(w io.Writer, reports []*report.Report) error {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No saved valuations.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tDATE\tADDRESS\tPROVIDER\tCOMPS\tARV"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, r := range reports {
		arv := "-"
		if r.ARV != nil {
			arv = "$" + formatPrice(*r.ARV)
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02"), truncate(r.Address, 40),
			r.Provider, r.CompCount, arv); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(w, "\nTotal: %d valuations\n", len(reports))
	return nil
}

// formatPrice formats a dollar amount as a string with commas.
func formatPrice(dollars int64) string {
	if dollars < 0 {
		return "-" + formatPrice(-dollars)
	}
	s := fmt.Sprintf("%d", dollars)
	if len(s) <= 3 {
		return s
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	return strings.Join(parts, ",")
}

// formatNumber renders an optional measurement rounded to a whole number.
func formatNumber(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatPrice(int64(math.Round(*v)))
}

// formatDollars renders an optional price.
func formatDollars(v *float64) string {
	if v == nil {
		return "-"
	}
	return "$" + formatNumber(v)
}

// formatField renders a raw provider value for a table cell.
func formatField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return "?"
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens s to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
