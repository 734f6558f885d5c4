package di

import (
	"io"
	"sync"

	"github.com/thomas-vilte/promptcache/internal/config"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/infrastructure/ai/anthropic"
	"github.com/thomas-vilte/promptcache/internal/infrastructure/catalog"
	"github.com/thomas-vilte/promptcache/internal/infrastructure/httpclient"
	"github.com/thomas-vilte/promptcache/internal/ports"
	"github.com/thomas-vilte/promptcache/internal/services"
	"github.com/thomas-vilte/promptcache/internal/services/cost"
	"github.com/thomas-vilte/promptcache/internal/ui"
)

// CompleterFactory builds the completion client for a configuration.
type CompleterFactory func(cfg *config.Config) (ports.Completer, error)

// Container wires the application's dependencies. Everything is built on
// first use, so command-line overrides applied to the config beforehand are
// honoured.
type Container struct {
	config       *config.Config
	translations *i18n.Translations

	newCompleter CompleterFactory

	mu         sync.Mutex
	calculator *cost.Calculator
	manager    *cost.Manager
}

func NewContainer(cfg *config.Config, trans *i18n.Translations) *Container {
	return &Container{
		config:       cfg,
		translations: trans,
		newCompleter: NewAnthropicCompleter,
	}
}

// NewAnthropicCompleter is the default CompleterFactory.
func NewAnthropicCompleter(cfg *config.Config) (ports.Completer, error) {
	client, err := anthropic.NewClient(anthropic.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		HTTPClient: httpclient.New(),
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// SetCompleterFactory replaces how the completion client is built.
func (c *Container) SetCompleterFactory(factory CompleterFactory) {
	c.newCompleter = factory
}

func (c *Container) GetConfig() *config.Config {
	return c.config
}

func (c *Container) GetTranslations() *i18n.Translations {
	return c.translations
}

// GetCalculator returns the pricing calculator with any YAML overrides loaded.
func (c *Container) GetCalculator() (*cost.Calculator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.calculator != nil {
		return c.calculator, nil
	}

	calculator := cost.NewCalculator()
	if c.config.PricingPath != "" {
		if err := calculator.LoadPricingOverrides(c.config.PricingPath); err != nil {
			return nil, err
		}
	}
	c.calculator = calculator
	return calculator, nil
}

// GetActivityManager returns the activity history store.
func (c *Container) GetActivityManager() (*cost.Manager, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.manager != nil {
		return c.manager, nil
	}

	dir, err := c.config.HistoryDir()
	if err != nil {
		return nil, err
	}
	manager, err := cost.NewManager(dir)
	if err != nil {
		return nil, err
	}
	c.manager = manager
	return manager, nil
}

func (c *Container) NewReporter(w io.Writer) *ui.ConsoleReporter {
	return ui.NewConsoleReporter(w, c.translations)
}

// NewDemoService checks credentials, loads the catalog and assembles a
// DemoService that reports to reporter. Progress lines go to the reporter as
// each step starts.
func (c *Container) NewDemoService(w io.Writer, reporter ports.Reporter) (*services.DemoService, error) {
	if err := c.config.RequireAPIKey(); err != nil {
		return nil, err
	}

	reporter.Info(c.translations.GetMessage("demo.initializing", 0, nil))
	completer, err := c.newCompleter(c.config)
	if err != nil {
		return nil, err
	}
	completer = ui.NewSpinnerCompleter(completer, w, c.translations.GetMessage("demo.waiting", 0, nil))

	calculator, err := c.GetCalculator()
	if err != nil {
		return nil, err
	}

	reporter.Info(c.translations.GetMessage("demo.loading", 0, nil))
	cat, err := catalog.Load(c.config.DataPath)
	if err != nil {
		return nil, err
	}
	reporter.CatalogLoaded(cat.Records, cat.Size())

	opts := []services.DemoOption{
		services.WithModel(c.config.Model),
		services.WithMaxTokens(c.config.MaxTokens, c.config.ChatMaxTokens),
	}
	if c.config.Record {
		manager, err := c.GetActivityManager()
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithActivityRecorder(manager))
	}

	return services.NewDemoService(completer, calculator, reporter, cat.Payload, opts...), nil
}
