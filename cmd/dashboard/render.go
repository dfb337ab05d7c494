package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ridersklan/preorderflow/internal/dashboard"
	"github.com/ridersklan/preorderflow/internal/orders"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func itemLabel(it orders.Item) string {
	if it.Error != "" {
		return it.Name + " (" + it.Error + ")"
	}
	return fmt.Sprintf("%s %s/%s", it.Name, it.Gender, it.Size)
}

func printView(w io.Writer, view dashboard.View, list []orders.Order) {
	if view.Warning != "" {
		fmt.Fprintln(w, "WARNING:", view.Warning)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tEMAIL\tPHONE\tSTATUS\tSOURCE\tITEMS")
	for _, o := range list {
		labels := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			labels = append(labels, itemLabel(it))
		}
		date := ""
		if o.Timestamp > 0 {
			date = time.UnixMilli(o.Timestamp).UTC().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, date, o.Customer, o.Email, o.Phone, o.Status, o.Source, strings.Join(labels, ", "))
	}
	_ = tw.Flush()

	st := orders.ComputeStats(list)
	fmt.Fprintf(w, "%d orders", st.TotalOrders)
	for _, s := range orders.Statuses {
		fmt.Fprintf(w, ", %d %s", st.Statuses[s], s)
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, view dashboard.View) {
	if view.Warning != "" {
		fmt.Fprintln(w, "WARNING:", view.Warning)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "PRODUCT\tGENDER\tSIZE\tCOUNT")
	for _, p := range dashboard.ProductSummary(view.Orders) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.Name, p.Gender, p.Size, p.Count)
	}
	_ = tw.Flush()
}

func printSync(w io.Writer, res dashboard.SyncResults) {
	if res.Total == 0 {
		fmt.Fprintln(w, "No local orders to sync.")
		return
	}
	fmt.Fprintf(w, "Sync completed: %d orders synced, %d failed\n", res.Successful, res.Failed)
	for _, d := range res.Details {
		if !d.Success {
			fmt.Fprintf(w, "  %s: %s\n", d.ID, d.Error)
		}
	}
}

// parseItems reads name/gender/size triples; gender and size may be left out.
func parseItems(raw []string) (orders.Items, error) {
	out := make(orders.Items, 0, len(raw))
	for _, r := range raw {
		parts := strings.Split(r, "/")
		if len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid item %q, want name/gender/size", r)
		}
		it := orders.Item{Name: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			it.Gender = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			it.Size = strings.TrimSpace(parts[2])
		}
		out = append(out, it)
	}
	return out, nil
}
