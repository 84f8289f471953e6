package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/roach88/craftledger/internal/catalogspec"
	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/model"
)

// Text renderers for human-readable output. Column widths follow the
// longest name so output stays aligned without a table library.

const timeLayout = "2006-01-02 15:04"

func lowSuffix(stock, threshold int64) string {
	if model.BelowThreshold(stock, threshold) {
		return fmt.Sprintf(" (low: threshold %d)", threshold)
	}
	return ""
}

func renderCraft(w io.Writer, r ledger.CraftResult) {
	fmt.Fprintf(w, "Crafted %d x %s, stock now %d\n", r.Quantity, r.Product, r.ProductStock)
	for _, c := range r.Consumed {
		fmt.Fprintf(w, "  used %d %s, %d left%s\n", c.Quantity, c.Material, c.Stock, lowSuffix(c.Stock, c.Threshold))
	}
}

func renderSell(w io.Writer, actor string, r ledger.SellResult) {
	fmt.Fprintf(w, "Sold %d x %s at %d for %d, stock now %d\n",
		r.Quantity, r.Product, r.UnitPrice, r.Amount, r.ProductStock)
	fmt.Fprintf(w, "Sales total for %s: %d\n", actor, r.ActorTotal)
}

func renderAdjust(w io.Writer, r ledger.AdjustResult) {
	verb := "Restocked"
	if r.Delta < 0 {
		verb = "Withdrew from"
	}
	fmt.Fprintf(w, "%s %s %s (%+d), stock now %d%s\n",
		verb, r.Kind, r.Item, r.Delta, r.Stock, lowSuffix(r.Stock, r.Threshold))
}

func renderStockLevel(w io.Writer, s ledger.StockLevel) {
	fmt.Fprintf(w, "%s %s: stock %d, threshold %d", s.Kind, s.Item, s.Stock, s.Threshold)
	if s.Low() {
		fmt.Fprint(w, " LOW")
	}
	fmt.Fprintln(w)
}

func renderMaterials(w io.Writer, materials []model.Material) {
	if len(materials) == 0 {
		fmt.Fprintln(w, "No materials registered.")
		return
	}
	width := len("NAME")
	for _, m := range materials {
		width = max(width, len(m.Name))
	}
	fmt.Fprintf(w, "%-*s  %6s  %9s\n", width, "NAME", "STOCK", "THRESHOLD")
	for _, m := range materials {
		fmt.Fprintf(w, "%-*s  %6d  %9d%s\n", width, m.Name, m.Stock, m.Threshold, lowMark(m.Stock, m.Threshold))
	}
}

func renderProducts(w io.Writer, products []model.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products registered.")
		return
	}
	width := len("NAME")
	for _, p := range products {
		width = max(width, len(p.Name))
	}
	fmt.Fprintf(w, "%-*s  %8s  %6s  %9s\n", width, "NAME", "PRICE", "STOCK", "THRESHOLD")
	for _, p := range products {
		fmt.Fprintf(w, "%-*s  %8d  %6d  %9d%s\n", width, p.Name, p.Price, p.Stock, p.Threshold, lowMark(p.Stock, p.Threshold))
	}
}

func lowMark(stock, threshold int64) string {
	if model.BelowThreshold(stock, threshold) {
		return "  LOW"
	}
	return ""
}

func renderRecipe(w io.Writer, product string, lines []model.RecipeLine) {
	if len(lines) == 0 {
		fmt.Fprintf(w, "%s has no recipe lines; crafting it uses no materials.\n", product)
		return
	}
	fmt.Fprintf(w, "One %s uses:\n", product)
	for _, l := range lines {
		fmt.Fprintf(w, "  %d x %s\n", l.Quantity, l.Material)
	}
}

func renderLeaderboard(w io.Writer, totals []model.SalesTotal) {
	if len(totals) == 0 {
		fmt.Fprintln(w, "No sales recorded.")
		return
	}
	width := 0
	for _, t := range totals {
		width = max(width, len(t.Actor))
	}
	for i, t := range totals {
		fmt.Fprintf(w, "%2d. %-*s  %d\n", i+1, width, t.Actor, t.Amount)
	}
}

func renderAttendance(w io.Writer, worked []model.WorkedTime, open []model.WorkSession) {
	if len(worked) == 0 {
		fmt.Fprintln(w, "No completed work sessions.")
	} else {
		width := 0
		for _, t := range worked {
			width = max(width, len(t.Actor))
		}
		for _, t := range worked {
			fmt.Fprintf(w, "%-*s  %s\n", width, t.Actor, formatMinutes(t.Minutes))
		}
	}
	if len(open) > 0 {
		fmt.Fprintln(w, "On duty:")
		for _, s := range open {
			fmt.Fprintf(w, "  %s since %s\n", s.Actor, s.StartedAt.UTC().Format(timeLayout))
		}
	}
}

func renderClockIn(w io.Writer, s model.WorkSession) {
	fmt.Fprintf(w, "%s clocked in at %s\n", s.Actor, s.StartedAt.UTC().Format(timeLayout))
}

func renderClockOut(w io.Writer, s model.WorkSession) {
	end := s.StartedAt
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	fmt.Fprintf(w, "%s clocked out at %s after %s\n", s.Actor, end.UTC().Format(timeLayout), formatMinutes(s.Minutes))
}

func formatMinutes(m int64) string {
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}

func renderAudit(w io.Writer, records []model.AuditRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "Audit log is empty.")
		return
	}
	actorWidth, kindWidth := 0, 0
	for _, r := range records {
		actorWidth = max(actorWidth, len(r.Actor))
		kindWidth = max(kindWidth, len(r.Kind))
	}
	for _, r := range records {
		fmt.Fprintf(w, "%4d  %s  %-*s  %-*s  %s\n",
			r.Seq, r.CreatedAt.UTC().Format(time.DateTime), actorWidth, r.Actor, kindWidth, r.Kind, r.Detail)
	}
}

func renderReset(w io.Writer, target string, r ledger.ResetResult) {
	switch {
	case r.Actors == 0 && target != "":
		fmt.Fprintf(w, "%s has no sales to reset.\n", target)
	case r.Actors == 0:
		fmt.Fprintln(w, "No sales to reset.")
	case target != "":
		fmt.Fprintf(w, "Reset sales for %s.\n", target)
	default:
		fmt.Fprintf(w, "Reset sales for %d actors.\n", r.Actors)
	}
}

func renderDeleted(w io.Writer, kind model.ItemKind, name string, lines int64) {
	fmt.Fprintf(w, "Deleted %s %s (%d recipe lines removed)\n", kind, name, lines)
}

func renderRoleChange(w io.Writer, target, role string, granted bool) {
	if granted {
		fmt.Fprintf(w, "Granted %s to %s\n", role, target)
		return
	}
	fmt.Fprintf(w, "Revoked %s from %s\n", role, target)
}

func renderSeed(w io.Writer, path string, s catalogspec.Summary) {
	fmt.Fprintf(w, "Seeded %s: %d materials, %d products, %d recipe lines, %d stock adjustments\n",
		path, s.Materials, s.Products, s.RecipeLines, s.Adjustments)
}
