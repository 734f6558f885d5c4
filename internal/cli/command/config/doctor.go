package config

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/cli/flags"
	"github.com/thomas-vilte/promptcache/internal/config"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/infrastructure/catalog"
	"github.com/thomas-vilte/promptcache/internal/services/cost"
	"github.com/thomas-vilte/promptcache/internal/ui"
)

// Dependencies the health checks resolve lazily.
type Dependencies interface {
	GetCalculator() (*cost.Calculator, error)
	GetActivityManager() (*cost.Manager, error)
}

type DoctorCommand struct {
	deps Dependencies
}

func NewDoctorCommand(deps Dependencies) *DoctorCommand {
	return &DoctorCommand{deps: deps}
}

func (d *DoctorCommand) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "doctor",
		Aliases: []string{"dr"},
		Usage:   t.GetMessage("doctor.command_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			root := command.Root()
			if err := flags.Apply(command, cfg, t); err != nil {
				ui.HandleAppError(root.ErrWriter, err, t)
				return err
			}
			d.runHealthCheck(root.Writer, t, cfg)
			return nil
		},
	}
}

type checkStatus int

const (
	checkStatusOK checkStatus = iota
	checkStatusWarning
	checkStatusError
)

type checkResult struct {
	status     checkStatus
	message    string
	suggestion string
}

type healthCheck struct {
	name string
	fn   func(*doctorRun) checkResult
}

// doctorRun carries state between checks of one run.
type doctorRun struct {
	t       *i18n.Translations
	cfg     *config.Config
	deps    Dependencies
	catalog *catalog.Catalog
}

func (d *DoctorCommand) runHealthCheck(w io.Writer, t *i18n.Translations, cfg *config.Config) {
	ui.PrintSectionBanner(w, t.GetMessage("doctor.running_checks", 0, nil))

	run := &doctorRun{t: t, cfg: cfg, deps: d.deps}
	checks := []healthCheck{
		{name: "doctor.check_api_key", fn: checkAPIKey},
		{name: "doctor.check_catalog", fn: checkCatalog},
		{name: "doctor.check_cache_minimum", fn: checkCacheMinimum},
		{name: "doctor.check_pricing", fn: checkPricing},
		{name: "doctor.check_history", fn: checkHistory},
	}

	var warnings, errs int
	for _, check := range checks {
		checkName := t.GetMessage(check.name, 0, nil)
		result := check.fn(run)

		switch result.status {
		case checkStatusOK:
			ui.PrintSuccess(w, checkName)
		case checkStatusWarning:
			warnings++
			ui.PrintWarning(w, checkName)
		case checkStatusError:
			errs++
			ui.PrintError(w, checkName)
		}
		if result.message != "" {
			_, _ = fmt.Fprintf(w, "   %s\n", result.message)
		}
		if result.suggestion != "" {
			_, _ = fmt.Fprintf(w, "   → %s\n", result.suggestion)
		}
	}

	ui.PrintSectionBanner(w, t.GetMessage("doctor.summary", 0, nil))
	switch {
	case errs > 0:
		ui.PrintError(w, t.GetMessage("doctor.has_errors", 0, nil))
	case warnings > 0:
		ui.PrintWarning(w, t.GetMessage("doctor.has_warnings", 0, nil))
	default:
		ui.PrintSuccess(w, t.GetMessage("doctor.all_good", 0, nil))
	}
}

func checkAPIKey(r *doctorRun) checkResult {
	if err := r.cfg.RequireAPIKey(); err != nil {
		return checkResult{
			status:     checkStatusError,
			message:    r.t.GetMessage("doctor.api_key_missing", 0, nil),
			suggestion: r.t.GetMessage("doctor.api_key_tip", 0, nil),
		}
	}
	return checkResult{status: checkStatusOK}
}

func checkCatalog(r *doctorRun) checkResult {
	cat, err := catalog.Load(r.cfg.DataPath)
	if err != nil {
		return checkResult{
			status:     checkStatusError,
			message:    err.Error(),
			suggestion: r.t.GetMessage("doctor.catalog_tip", 0, nil),
		}
	}
	r.catalog = cat
	return checkResult{
		status: checkStatusOK,
		message: r.t.GetMessage("doctor.catalog_ok", 0, map[string]interface{}{
			"Count":  cat.Records,
			"Tokens": cat.EstimatedTokens(),
			"Path":   cat.Path,
		}),
	}
}

func checkCacheMinimum(r *doctorRun) checkResult {
	if r.catalog == nil {
		return checkResult{
			status:  checkStatusWarning,
			message: r.t.GetMessage("doctor.skipped", 0, nil),
		}
	}

	minimum := config.MinCacheableTokens(r.cfg.Model)
	tokens := r.catalog.EstimatedTokens()
	if tokens < minimum {
		return checkResult{
			status: checkStatusWarning,
			message: r.t.GetMessage("doctor.cache_too_small", 0, map[string]interface{}{
				"Tokens":  tokens,
				"Minimum": minimum,
				"Model":   r.cfg.Model,
			}),
			suggestion: r.t.GetMessage("doctor.cache_too_small_tip", 0, nil),
		}
	}
	return checkResult{status: checkStatusOK}
}

func checkPricing(r *doctorRun) checkResult {
	calculator, err := r.deps.GetCalculator()
	if err != nil {
		return checkResult{
			status:     checkStatusError,
			message:    err.Error(),
			suggestion: r.t.GetMessage("doctor.pricing_tip", 0, nil),
		}
	}
	if !calculator.HasPricing(r.cfg.Model) {
		return checkResult{
			status:     checkStatusWarning,
			message:    r.t.GetMessage("doctor.pricing_default", 0, map[string]interface{}{"Model": r.cfg.Model}),
			suggestion: r.t.GetMessage("doctor.pricing_tip", 0, nil),
		}
	}
	return checkResult{status: checkStatusOK}
}

func checkHistory(r *doctorRun) checkResult {
	if !r.cfg.Record {
		return checkResult{
			status:  checkStatusOK,
			message: r.t.GetMessage("doctor.history_disabled", 0, nil),
		}
	}
	manager, err := r.deps.GetActivityManager()
	if err != nil {
		return checkResult{status: checkStatusError, message: err.Error()}
	}
	return checkResult{
		status:  checkStatusOK,
		message: r.t.GetMessage("doctor.history_ok", 0, map[string]interface{}{"Path": manager.Path()}),
	}
}
