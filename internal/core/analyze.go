// Package core holds the domain types and the pure analysis logic:
// expense aggregation, category rules and persona classification.
package core

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// categoryRule assigns a category to an expense whose name contains one
// of the keywords. Rules are evaluated in order, first match wins.
type categoryRule struct {
	name     string
	keywords []string
}

var categoryRules = []categoryRule{
	{"Food", []string{"food", "restaurant", "grocery"}},
	{"Transportation", []string{"transport", "fuel", "bus", "taxi"}},
	{"Housing", []string{"rent", "utilities", "electricity"}},
}

// CategoryOther collects everything no rule matched.
const CategoryOther = "Other"

var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Categorize returns the category for an expense name. Matching is
// case-insensitive substring containment against the ordered rule set.
func Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.name
			}
		}
	}
	return CategoryOther
}

// parseMonthKey validates a dataset month key. Valid keys are integers
// in [0,11]. Invalid keys are the caller's problem to skip.
func parseMonthKey(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || n < 0 || n >= len(monthNames) {
		return 0, false
	}
	return n, true
}

// Summarize renders a human-readable breakdown of an expense fetch
// result: grand total, per-category totals with percentages and, when
// more than one month has data, the per-month pattern. Error-shaped
// results and empty datasets become explanatory prose, never an error.
func Summarize(r FetchResult) string {
	if r.Failed() {
		return fmt.Sprintf("I couldn't fetch your expense data: %s", r.Err)
	}
	if len(r.Data) == 0 {
		return "You don't have any expenses recorded yet. Start by adding some expenses to get insights!"
	}

	var total float64
	categories := map[string]float64{}
	monthly := map[int]float64{}

	for key, expenses := range r.Data {
		month, ok := parseMonthKey(key)
		if !ok {
			slog.Warn("Skipping invalid month key in expense data", "key", key)
			continue
		}
		for _, e := range expenses {
			monthly[month] += e.Amount
			total += e.Amount
			categories[Categorize(e.Name)] += e.Amount
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💰 **Total Expenses**: ₹%.2f\n\n", total)

	if len(categories) > 0 {
		b.WriteString("📊 **Expense Categories**:\n")
		for _, c := range sortedCategories(categories) {
			pct := 0.0
			if total > 0 {
				pct = c.Amount / total * 100
			}
			fmt.Fprintf(&b, "- %s: ₹%.2f (%.1f%%)\n", c.Name, c.Amount, pct)
		}
	}

	if len(monthly) > 1 {
		b.WriteString("\n📈 **Monthly Spending Pattern**:\n")
		for _, mt := range sortedMonths(monthly) {
			fmt.Fprintf(&b, "- %s: ₹%.2f\n", monthNames[mt.Month], mt.Amount)
		}
	}

	return b.String()
}

// ChartSeries aggregates a fetch result into (month, total) points
// sorted ascending by month. Returns nil when there is nothing to plot.
func ChartSeries(r FetchResult) []MonthTotal {
	if r.Failed() || len(r.Data) == 0 {
		return nil
	}

	monthly := map[int]float64{}
	for key, expenses := range r.Data {
		month, ok := parseMonthKey(key)
		if !ok {
			slog.Warn("Skipping invalid month key in chart data", "key", key)
			continue
		}
		var sum float64
		for _, e := range expenses {
			sum += e.Amount
		}
		monthly[month] += sum
	}
	if len(monthly) == 0 {
		return nil
	}
	return sortedMonths(monthly)
}

// sortedCategories orders category totals descending by amount, with a
// name tiebreak so the output is deterministic.
func sortedCategories(categories map[string]float64) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(categories))
	for name, amount := range categories {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortedMonths(monthly map[int]float64) []MonthTotal {
	out := make([]MonthTotal, 0, len(monthly))
	for month, amount := range monthly {
		out = append(out, MonthTotal{Month: month, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
