package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thomas-vilte/promptcache/internal/models"
	"github.com/thomas-vilte/promptcache/internal/services/cost"
	"github.com/thomas-vilte/promptcache/internal/services/session"
)

type (
	MockCompleter struct {
		mock.Mock
	}

	MockReporter struct {
		mock.Mock
	}

	MockActivityRecorder struct {
		mock.Mock
	}
)

func (m *MockCompleter) Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompletionResult), args.Error(1)
}

func (m *MockCompleter) GetProviderName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockActivityRecorder) SaveActivity(record cost.ActivityRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockReporter) Header()                { m.Called() }
func (m *MockReporter) Info(msg string)        { m.Called(msg) }
func (m *MockReporter) RunStarted(prompts int) { m.Called(prompts) }
func (m *MockReporter) Response(text string)   { m.Called(text) }
func (m *MockReporter) Continuing()            { m.Called() }
func (m *MockReporter) Failure(err error)      { m.Called(err) }
func (m *MockReporter) ChatIntro()             { m.Called() }
func (m *MockReporter) ChatPrompt()            { m.Called() }
func (m *MockReporter) ChatReply(text string)  { m.Called(text) }
func (m *MockReporter) ChatGoodbye()           { m.Called() }

func (m *MockReporter) CatalogLoaded(records, size int) { m.Called(records, size) }

func (m *MockReporter) Prompt(index int, text string) { m.Called(index, text) }

func (m *MockReporter) Analysis(requestNumber int, analysis cost.Analysis) {
	m.Called(requestNumber, analysis)
}

func (m *MockReporter) Summary(summary session.Summary) { m.Called(summary) }

// Lenient accepts every reporter call so tests can assert only the ones they
// care about.
func (m *MockReporter) Lenient() *MockReporter {
	for _, method := range []string{"Header", "Continuing", "ChatIntro", "ChatPrompt", "ChatGoodbye"} {
		m.On(method).Maybe()
	}
	for _, method := range []string{"Info", "RunStarted", "Response", "Failure", "ChatReply", "Summary"} {
		m.On(method, mock.Anything).Maybe()
	}
	for _, method := range []string{"CatalogLoaded", "Prompt", "Analysis"} {
		m.On(method, mock.Anything, mock.Anything).Maybe()
	}
	return m
}
