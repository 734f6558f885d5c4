package services

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thomas-vilte/promptcache/internal/errors"
	"github.com/thomas-vilte/promptcache/internal/models"
	"github.com/thomas-vilte/promptcache/internal/ports"
	"github.com/thomas-vilte/promptcache/internal/services/cost"
	"github.com/thomas-vilte/promptcache/internal/services/session"
)

const (
	ModeDemo = "demo"
	ModeChat = "chat"

	DefaultDemoMaxTokens = 500
	DefaultChatMaxTokens = 1024

	catalogHeading = "# Video Metadata Repository\n"

	demoInstructions = "You are an AI assistant analyzing YouTube video metadata. " +
		"Provide concise, helpful responses based on the video data provided."
	chatInstructions = "You are an AI assistant analyzing YouTube video metadata. " +
		"Be conversational and helpful."
)

// DefaultPrompts are the questions asked by a scripted run.
var DefaultPrompts = []string{
	"What are the main topics covered in these videos?",
	"Which video has the most views?",
	"List all videos about Python programming.",
	"What's the average duration of these videos?",
}

var exitWords = map[string]bool{"exit": true, "quit": true, "bye": true}

// DemoService sends questions about a metadata catalog with the catalog marked
// cacheable, and reports what caching saved on every request.
type DemoService struct {
	completer     ports.Completer
	calculator    *cost.Calculator
	reporter      ports.Reporter
	recorder      ports.ActivityRecorder
	catalog       string
	model         string
	maxTokens     int
	chatMaxTokens int
	historyLimit  int
	newRunID      func() string
}

type DemoOption func(*DemoService)

// WithActivityRecorder saves every successful request.
func WithActivityRecorder(r ports.ActivityRecorder) DemoOption {
	return func(s *DemoService) {
		s.recorder = r
	}
}

func WithModel(model string) DemoOption {
	return func(s *DemoService) {
		s.model = model
	}
}

// WithMaxTokens sets the response limits of scripted and chat requests.
// Non-positive values keep the defaults.
func WithMaxTokens(demo, chat int) DemoOption {
	return func(s *DemoService) {
		if demo > 0 {
			s.maxTokens = demo
		}
		if chat > 0 {
			s.chatMaxTokens = chat
		}
	}
}

func WithHistoryLimit(limit int) DemoOption {
	return func(s *DemoService) {
		s.historyLimit = limit
	}
}

func WithRunIDGenerator(fn func() string) DemoOption {
	return func(s *DemoService) {
		s.newRunID = fn
	}
}

func NewDemoService(
	completer ports.Completer,
	calculator *cost.Calculator,
	reporter ports.Reporter,
	catalog string,
	opts ...DemoOption,
) *DemoService {
	s := &DemoService{
		completer:     completer,
		calculator:    calculator,
		reporter:      reporter,
		catalog:       catalog,
		maxTokens:     DefaultDemoMaxTokens,
		chatMaxTokens: DefaultChatMaxTokens,
		historyLimit:  session.DefaultHistoryLimit,
		newRunID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SystemPrompt builds the two system segments. The breakpoint sits on the
// catalog segment, so the cached prefix is the instructions plus the catalog.
func (s *DemoService) SystemPrompt(instructions string) []models.SystemSegment {
	return []models.SystemSegment{
		{Text: instructions},
		{Text: catalogHeading + s.catalog, Cacheable: true},
	}
}

// RunScripted asks each prompt in order, each as a fresh single-turn
// conversation. A failed request is reported and skipped. The summary covers
// every prompt that was attempted.
func (s *DemoService) RunScripted(ctx context.Context, prompts []string) (session.Summary, error) {
	if len(prompts) == 0 {
		prompts = DefaultPrompts
	}

	runID := s.newRunID()
	acc := session.NewAccumulator()
	system := s.SystemPrompt(demoInstructions)

	slog.Info("starting scripted run", "run_id", runID, "model", s.model, "prompts", len(prompts))
	s.reporter.RunStarted(len(prompts))

	for i, prompt := range prompts {
		if err := ctx.Err(); err != nil {
			return acc.Snapshot(), err
		}

		number := i + 1
		s.reporter.Prompt(number, prompt)

		req := models.CompletionRequest{
			Model:     s.model,
			MaxTokens: s.maxTokens,
			System:    system,
			Messages:  []models.Message{{Role: models.RoleUser, Content: prompt}},
		}

		result, analysis, err := s.complete(ctx, runID, ModeDemo, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return acc.Snapshot(), ctxErr
			}
			acc.RecordFailure(errors.ReasonOf(err))
			s.reporter.Failure(err)
			continue
		}

		acc.Record(analysis)
		s.reporter.Response(result.Text)
		s.reporter.Analysis(number, analysis)

		if number < len(prompts) {
			s.reporter.Continuing()
		}
	}

	summary := acc.Snapshot()
	s.reporter.Summary(summary)
	return summary, nil
}

// Chat runs a multi-turn conversation read line by line from in. It stops on
// exit, quit or bye, at end of input, or as soon as ctx is done, including
// while it waits for input. Only successful turns enter the conversation
// history.
func (s *DemoService) Chat(ctx context.Context, in io.Reader) (session.Summary, error) {
	runID := s.newRunID()
	acc := session.NewAccumulator()
	history := session.NewHistory(s.historyLimit)
	system := s.SystemPrompt(chatInstructions)
	reader := bufio.NewReader(in)
	requestNumber := 0

	slog.Info("starting chat", "run_id", runID, "model", s.model)
	s.reporter.ChatIntro()

	for {
		s.reporter.ChatPrompt()
		input, err := ReadLine(ctx, reader)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return acc.Snapshot(), ctxErr
			}
			if stderrors.Is(err, io.EOF) {
				s.reporter.ChatGoodbye()
				return acc.Snapshot(), nil
			}
			return acc.Snapshot(), errors.NewAppError(errors.TypeInput, "failed to read chat input", err)
		}

		if exitWords[strings.ToLower(input)] {
			s.reporter.ChatGoodbye()
			return acc.Snapshot(), nil
		}
		if input == "" {
			continue
		}

		requestNumber++
		req := models.CompletionRequest{
			Model:     s.model,
			MaxTokens: s.chatMaxTokens,
			System:    system,
			Messages:  history.WithUser(input),
		}

		result, analysis, err := s.complete(ctx, runID, ModeChat, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return acc.Snapshot(), ctxErr
			}
			acc.RecordFailure(errors.ReasonOf(err))
			s.reporter.Failure(err)
			continue
		}

		acc.Record(analysis)
		history.Append(input, result.Text)
		s.reporter.ChatReply(result.Text)
		s.reporter.Analysis(requestNumber, analysis)
	}
}

func (s *DemoService) complete(ctx context.Context, runID, mode string, req models.CompletionRequest) (*models.CompletionResult, cost.Analysis, error) {
	start := time.Now()
	result, err := s.completer.Complete(ctx, req)
	duration := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("completion cancelled", "run_id", runID, "mode", mode)
			return nil, cost.Analysis{}, err
		}
		slog.Warn("completion failed",
			"run_id", runID,
			"mode", mode,
			"reason", errors.ReasonOf(err),
			"error", err)
		return nil, cost.Analysis{}, err
	}

	model := result.Model
	if model == "" {
		model = req.Model
	}
	analysis := s.calculator.Analyze(model, result.Usage)

	slog.Info("completion analyzed",
		"run_id", runID,
		"mode", mode,
		"cache_status", analysis.Status,
		"cache_read_tokens", result.Usage.CacheReadTokens,
		"saved_usd", analysis.Saved,
		"duration_ms", duration.Milliseconds())

	if s.recorder != nil {
		record := cost.NewActivityRecord(runID, mode, model, analysis, duration)
		if err := s.recorder.SaveActivity(record); err != nil {
			slog.Warn("failed to save activity", "run_id", runID, "error", err)
		}
	}

	return result, analysis, nil
}
