package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/thomas-vilte/promptcache/internal/errors"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/models"
	"github.com/thomas-vilte/promptcache/internal/ports"
	"github.com/thomas-vilte/promptcache/internal/services/cost"
	"github.com/thomas-vilte/promptcache/internal/services/session"
)

// PreviewLength is how much of a scripted answer is shown.
const PreviewLength = 200

var _ ports.Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter writes human-readable, colored progress to a writer.
type ConsoleReporter struct {
	w       io.Writer
	t       *i18n.Translations
	printer *message.Printer
}

func NewConsoleReporter(w io.Writer, t *i18n.Translations) *ConsoleReporter {
	return &ConsoleReporter{
		w:       w,
		t:       t,
		printer: message.NewPrinter(language.Make(t.Language())),
	}
}

func (r *ConsoleReporter) msg(id string, data map[string]interface{}) string {
	return r.t.GetMessage(id, 0, data)
}

func (r *ConsoleReporter) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

func (r *ConsoleReporter) tokens(n int) string {
	return r.printer.Sprintf("%d", n)
}

func (r *ConsoleReporter) bullet(label, value string) {
	r.printf("   - %s: %s\n", label, value)
}

func usd(amount float64) string {
	return fmt.Sprintf("$%.6f", amount)
}

func (r *ConsoleReporter) Header() {
	rule := strings.Repeat("=", 60)
	r.printf("\n%s\n", rule)
	r.printf("%s\n", color.New(color.FgCyan, color.Bold).Sprint(r.msg("header.title", nil)))
	r.printf("%s\n", color.CyanString("%s", r.msg("header.subtitle", nil)))
	r.printf("%s\n\n", rule)
}

func (r *ConsoleReporter) Info(msg string) {
	r.printf("%s\n", color.BlueString("%s", msg))
}

func (r *ConsoleReporter) CatalogLoaded(records, size int) {
	r.printf("%s\n", r.msg("demo.loaded", map[string]interface{}{"Count": records}))
	r.printf("%s\n\n", r.msg("demo.size", map[string]interface{}{"Size": r.tokens(size)}))
}

func (r *ConsoleReporter) RunStarted(prompts int) {
	r.printf("%s\n\n", Bold.Sprint(r.msg("demo.running", map[string]interface{}{"Count": prompts})))
}

func (r *ConsoleReporter) Prompt(index int, text string) {
	r.printf("%s\n", color.CyanString("%s", r.msg("demo.prompt", map[string]interface{}{
		"Number": index,
		"Text":   text,
	})))
}

func (r *ConsoleReporter) Response(text string) {
	r.printf("\n%s\n", Bold.Sprint(r.msg("demo.response", nil)))
	r.printf("%s\n", Preview(text, PreviewLength))
}

// Preview cuts text to limit runes and marks the cut with "...".
func Preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func (r *ConsoleReporter) Analysis(requestNumber int, a cost.Analysis) {
	rule := strings.Repeat("=", 50)
	r.printf("\n%s\n", Bold.Sprint(rule))
	r.printf("%s\n", Bold.Sprint(r.msg("analysis.title", map[string]interface{}{"Number": requestNumber})))
	r.printf("%s\n", rule)

	u := a.Usage
	if a.Status == models.CacheHit {
		r.printf("%s\n", color.GreenString("%s", r.msg("analysis.hit", nil)))
		r.bullet(r.msg("analysis.cached_read", nil), color.GreenString("%s", r.tokens(u.CacheReadTokens)))
		r.bullet(r.msg("analysis.new_tokens", nil), r.tokens(u.InputTokens))
		r.bullet(r.msg("analysis.total_input", nil), r.tokens(u.TotalInput()))

		r.printf("\n%s\n", color.YellowString("%s", r.msg("analysis.cost_breakdown", nil)))
		r.bullet(r.msg("analysis.without_cache", nil), usd(a.CostWithoutCache))
		r.bullet(r.msg("analysis.with_cache", nil), usd(a.CostWithCache))
		r.printf("   - %s\n", color.GreenString("%s: %s (%.1f%%)", r.msg("analysis.saved", nil), usd(a.Saved), a.SavedPercent))
	} else {
		r.printf("%s\n", color.YellowString("%s", r.msg("analysis.miss", nil)))
		r.bullet(r.msg("analysis.new_tokens", nil), r.tokens(u.InputTokens))
		if u.CacheCreationTokens > 0 {
			r.bullet(r.msg("analysis.creation_tokens", nil), color.YellowString("%s", r.tokens(u.CacheCreationTokens)))

			r.printf("\n%s\n", color.YellowString("%s", r.msg("analysis.creation_cost_title", nil)))
			r.bullet(r.msg("analysis.creation_cost", nil), usd(a.CreationCost))
			r.printf("   - %s\n", color.CyanString("%s", r.msg("analysis.future_savings", map[string]interface{}{
				"Percent": fmt.Sprintf("%.0f", a.Pricing.ReadDiscountPercent()),
			})))
		}
	}

	r.bullet(r.msg("analysis.output_tokens", nil), r.tokens(u.OutputTokens))
	r.printf("%s\n\n", rule)
}

func (r *ConsoleReporter) Continuing() {
	r.printf("%s\n\n", color.CyanString("%s", r.msg("demo.continuing", nil)))
}

func (r *ConsoleReporter) Failure(err error) {
	StopActiveSpinner()
	line := fmt.Sprintf("%s: %v", r.msg("error.label", nil), err)
	if reason := errors.ReasonOf(err); reason != errors.ReasonNone {
		line += fmt.Sprintf(" (%s: %s)", r.msg("error.reason", nil), reason)
	}
	r.printf("%s\n", color.RedString("%s", line))
}

func (r *ConsoleReporter) Summary(s session.Summary) {
	rule := strings.Repeat("=", 60)
	green := color.New(color.FgGreen, color.Bold)
	r.printf("\n%s\n", green.Sprint(rule))
	r.printf("%s\n", green.Sprint(r.msg("summary.complete", nil)))
	r.printf("%s\n", color.GreenString("%s", rule))

	r.printf("\n%s\n", Bold.Sprint(r.msg("summary.title", nil)))
	r.printf("  - %s: %d\n", r.msg("summary.requests", nil), s.Requests)
	r.printf("  - %s: %d\n", r.msg("summary.hits", nil), s.Hits)
	if failed := s.Failed(); failed > 0 {
		r.printf("  - %s: %s\n", r.msg("summary.failed", nil), color.RedString("%d %s", failed, formatFailures(s.Failures)))
	}
	r.printf("  - %s: %s\n", r.msg("summary.total_saved", nil), usd(s.TotalSaved))
	if s.TotalCreationCost > 0 {
		r.printf("  - %s: %s\n", r.msg("summary.creation", nil), usd(s.TotalCreationCost))
	}
	r.printf("  - %s\n", r.msg("summary.window", nil))

	r.printf("\n%s\n", color.CyanString("%s", r.msg("summary.takeaway_title", nil)))
	r.printf("%s\n", r.msg("summary.takeaway", nil))
	r.printf("\n%s\n\n", color.YellowString("%s", r.msg("summary.imagine", nil)))
}

// formatFailures renders counts by reason in a stable order, e.g. "(auth: 1, network: 2)".
func formatFailures(failures map[errors.FailureReason]int) string {
	reasons := make([]string, 0, len(failures))
	for reason, n := range failures {
		if n > 0 {
			reasons = append(reasons, fmt.Sprintf("%s: %d", reason, n))
		}
	}
	sort.Strings(reasons)
	return "(" + strings.Join(reasons, ", ") + ")"
}

func (r *ConsoleReporter) ChatIntro() {
	r.printf("\n%s\n", color.New(color.FgCyan, color.Bold).Sprint(r.msg("chat.title", nil)))
	r.printf("%s\n", r.msg("chat.intro", nil))
	r.printf("%s\n\n", r.msg("chat.watch", nil))
}

func (r *ConsoleReporter) ChatPrompt() {
	r.printf("%s", color.CyanString("%s", r.msg("chat.you", nil)))
}

func (r *ConsoleReporter) ChatReply(text string) {
	r.printf("\n%s\n", color.GreenString("%s%s", r.msg("chat.ai", nil), text))
}

func (r *ConsoleReporter) ChatGoodbye() {
	r.printf("%s\n", color.GreenString("%s", r.msg("chat.bye", nil)))
}
