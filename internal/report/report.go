// Package report renders engine output into Telegram HTML messages.
package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ladiossato/k2-inventory/internal/model"
	"github.com/ladiossato/k2-inventory/internal/schedule"
)

// FormatUnit renders a quantity with its unit, pluralized and without
// trailing decimal noise (1 case, 2 cases, 2.5 quarts).
func FormatUnit(qty float64, unit model.UnitType) string {
	return formatQty(qty) + " " + unit.Plural(qty)
}

func formatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return strconv.FormatInt(int64(qty), 10)
	}
	return strconv.FormatFloat(qty, 'g', -1, 64)
}

// StatusDigest renders the per-item status report for a location.
func StatusDigest(loc model.Location, statuses []model.ItemStatus, nextDelivery time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>\U0001F4CA %s STATUS</b>\n", strings.ToUpper(loc.Display()))
	fmt.Fprintf(&b, "\U0001F69A Next Delivery: %s\n", nextDelivery.Format("Mon Jan 2"))

	var critical, low, good, missing []model.ItemStatus
	for _, st := range statuses {
		switch st.Status {
		case model.StatusRed:
			critical = append(critical, st)
		case model.StatusYellow:
			low = append(low, st)
		case model.StatusGreen:
			good = append(good, st)
		default:
			missing = append(missing, st)
		}
	}

	section := func(title string, group []model.ItemStatus) {
		if len(group) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n<b>%s</b>\n", title)
		for _, st := range group {
			qty := 0.0
			if st.OnHand != nil {
				qty = *st.OnHand
			}
			if st.Status == model.StatusMissing {
				fmt.Fprintf(&b, "%s %s: no count recorded\n", st.Status.Emoji(), st.Item.Name)
				continue
			}
			fmt.Fprintf(&b, "%s %s: %s", st.Status.Emoji(), st.Item.Name, FormatUnit(qty, st.Item.Unit))
			if st.Status == model.StatusRed {
				shortage := math.Ceil(st.Required - qty)
				fmt.Fprintf(&b, " (need %s more)", formatQty(shortage))
			} else if st.DaysOfStock != nil {
				fmt.Fprintf(&b, " (%.1f days)", *st.DaysOfStock)
			}
			b.WriteString("\n")
		}
	}

	section("\U0001F6A8 WON'T LAST TO DELIVERY", critical)
	section("⚠️ BELOW PAR", low)
	section("✅ STOCKED", good)
	section("❓ NOT COUNTED", missing)

	return b.String()
}

// OrderAnalysis renders the manager view of a request batch: every
// item with current stock, coverage, and what to order.
func OrderAnalysis(loc model.Location, window schedule.Window, bufferDays float64, lines []model.RequestLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>\U0001F4CB %s ORDER ANALYSIS</b>\n", strings.ToUpper(loc.Display()))
	fmt.Fprintf(&b, "\U0001F69A For: <b>%s</b>\n", window.Label)
	fmt.Fprintf(&b, "\U0001F4CA Coverage: %.1f days\n", window.TotalDays+bufferDays)

	for _, line := range lines {
		if line.FullyStocked {
			continue
		}
		coverage := 0.0
		if line.Item.ADU > 0 {
			coverage = line.OnHand / line.Item.ADU
		}
		fmt.Fprintf(&b, "\n• <b>%s</b>\n", line.Item.Name)
		fmt.Fprintf(&b, "  Current: %s (%.1f days)\n", FormatUnit(line.OnHand, line.Item.Unit), coverage)
		fmt.Fprintf(&b, "  Daily use: %s • Need: <b>%s</b>\n", formatQty(line.Item.ADU), FormatUnit(float64(line.Requested), line.Item.Unit))
	}

	if len(Needed(lines)) == 0 {
		b.WriteString("\n✅ Everything is fully stocked.\n")
	}
	return b.String()
}

// OrderMessage renders the clean order list for the prep team.
func OrderMessage(loc model.Location, window schedule.Window, lines []model.RequestLine) string {
	needed := Needed(lines)
	var b strings.Builder
	fmt.Fprintf(&b, "<b>\U0001F4E6 %s ORDER</b>\n", strings.ToUpper(loc.Display()))
	fmt.Fprintf(&b, "Hey prep team! This is what we need for <b>%s</b>.\n", window.Label)

	if len(needed) == 0 {
		b.WriteString("\nNothing needed this round. ✅\n")
		return b.String()
	}
	for _, line := range needed {
		fmt.Fprintf(&b, "• <b>%s</b>: %s\n", line.Item.Name, FormatUnit(float64(line.Requested), line.Item.Unit))
	}
	return b.String()
}

// Needed filters to actionable lines. Mirrors the engine accessor so
// formatters do not import it.
func Needed(lines []model.RequestLine) []model.RequestLine {
	out := make([]model.RequestLine, 0, len(lines))
	for _, l := range lines {
		if !l.FullyStocked {
			out = append(out, l)
		}
	}
	return out
}

// MissingReport lists items without a count for the given date.
func MissingReport(loc model.Location, date time.Time, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>❓ %s MISSING COUNTS</b>\n", strings.ToUpper(loc.Display()))
	fmt.Fprintf(&b, "\U0001F4C5 %s\n", date.Format("Mon Jan 2, 2006"))
	if len(names) == 0 {
		b.WriteString("\nAll items counted. ✅\n")
		return b.String()
	}
	b.WriteString("\n")
	for _, name := range names {
		fmt.Fprintf(&b, "• %s\n", name)
	}
	return b.String()
}

// ADUTable renders usage rates per location.
func ADUTable(itemsByLocation map[model.Location][]model.Item) string {
	var b strings.Builder
	b.WriteString("<b>\U0001F4CA AVERAGE DAILY USAGE</b>\n")

	locs := make([]model.Location, 0, len(itemsByLocation))
	for loc := range itemsByLocation {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })

	for _, loc := range locs {
		fmt.Fprintf(&b, "\n<b>%s</b>\n", strings.ToUpper(loc.Display()))
		items := itemsByLocation[loc]
		sorted := make([]model.Item, len(items))
		copy(sorted, items)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
		for _, item := range sorted {
			fmt.Fprintf(&b, "• <b>%s</b>: %s/day\n", item.Name, formatQty(item.ADU))
		}
	}
	return b.String()
}

// SubmissionSummary confirms a finalized submission. For received
// deliveries, shortages against the latest matching request batch are
// flagged.
func SubmissionSummary(snap model.Snapshot, items []model.Item, requested map[string]int) string {
	var b strings.Builder
	title := "\U0001F4DD COUNT SAVED"
	if snap.EntryType == model.EntryReceived {
		title = "\U0001F4E6 DELIVERY RECEIVED"
	}
	fmt.Fprintf(&b, "<b>%s</b>\n", title)
	fmt.Fprintf(&b, "\U0001F4CD %s • \U0001F4C5 %s\n", snap.Location.Display(), snap.Date.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(&b, "\n<b>%d items recorded:</b>\n", len(snap.Quantities))

	units := make(map[string]model.UnitType, len(items))
	for _, item := range items {
		units[item.Name] = item.Unit
	}

	names := make([]string, 0, len(snap.Quantities))
	for name := range snap.Quantities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		qty := snap.Quantities[name]
		unit, ok := units[name]
		if !ok {
			unit = model.UnitCase
		}
		fmt.Fprintf(&b, "• %s: %s\n", name, FormatUnit(qty, unit))
	}

	if snap.EntryType == model.EntryReceived && len(requested) > 0 {
		var shortages []string
		for _, name := range names {
			want, ok := requested[name]
			if !ok {
				continue
			}
			got := snap.Quantities[name]
			if got < float64(want) {
				unit := units[name]
				shortages = append(shortages,
					fmt.Sprintf("• %s: requested %s, received %s",
						name, FormatUnit(float64(want), unit), FormatUnit(got, unit)))
			}
		}
		if len(shortages) > 0 {
			b.WriteString("\n<b>⚠️ SHORT OF REQUEST:</b>\n")
			b.WriteString(strings.Join(shortages, "\n"))
			b.WriteString("\n")
		}
	}

	if snap.Note != "" {
		fmt.Fprintf(&b, "\n\U0001F4AC Note: %s\n", snap.Note)
	}
	return b.String()
}
