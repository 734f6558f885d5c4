package services

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thomas-vilte/promptcache/internal/errors"
	"github.com/thomas-vilte/promptcache/internal/models"
	"github.com/thomas-vilte/promptcache/internal/services/cost"
	"github.com/thomas-vilte/promptcache/internal/services/session"
)

const testModel = "claude-3-5-haiku-20241022"

var (
	missUsage = models.UsageRecord{InputTokens: 50, CacheCreationTokens: 9000, OutputTokens: 20}
	hitUsage  = models.UsageRecord{InputTokens: 100, CacheReadTokens: 9000, OutputTokens: 42}
)

func result(text string, usage models.UsageRecord) *models.CompletionResult {
	return &models.CompletionResult{Text: text, Model: testModel, StopReason: "end_turn", Usage: usage}
}

type demoFixture struct {
	completer *MockCompleter
	reporter  *MockReporter
	requests  []models.CompletionRequest
}

func newDemoFixture() *demoFixture {
	return &demoFixture{
		completer: &MockCompleter{},
		reporter:  (&MockReporter{}).Lenient(),
	}
}

func (f *demoFixture) expect(res *models.CompletionResult, err error) {
	f.completer.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			f.requests = append(f.requests, args.Get(1).(models.CompletionRequest))
		}).
		Return(res, err).
		Once()
}

func (f *demoFixture) service(opts ...DemoOption) *DemoService {
	opts = append([]DemoOption{
		WithModel(testModel),
		WithRunIDGenerator(func() string { return "run-1" }),
	}, opts...)
	return NewDemoService(f.completer, cost.NewCalculator(), f.reporter, `[{"id":"v1"}]`, opts...)
}

func TestDemoService_RunScripted(t *testing.T) {
	// Arrange
	f := newDemoFixture()
	f.expect(result("Programming.", missUsage), nil)
	f.expect(result("Video two.", hitUsage), nil)
	svc := f.service()

	// Act
	summary, err := svc.RunScripted(context.Background(), []string{"Topics?", "Most views?"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Requests)
	assert.Equal(t, 1, summary.Hits)
	assert.Equal(t, 1, summary.Misses)
	assert.InDelta(t, 0.00648, summary.TotalSaved, 1e-12)
	assert.InDelta(t, 0.009, summary.TotalCreationCost, 1e-12)
	assert.Equal(t, 0, summary.Failed())

	require.Len(t, f.requests, 2)
	for i, req := range f.requests {
		assert.Equal(t, testModel, req.Model)
		assert.Equal(t, DefaultDemoMaxTokens, req.MaxTokens)
		require.Len(t, req.System, 2)
		assert.False(t, req.System[0].Cacheable)
		assert.True(t, req.System[1].Cacheable)
		assert.Equal(t, "# Video Metadata Repository\n[{\"id\":\"v1\"}]", req.System[1].Text)
		require.Len(t, req.Messages, 1, "scripted prompts carry no history")
		assert.Equal(t, models.RoleUser, req.Messages[0].Role)
		assert.Equal(t, []string{"Topics?", "Most views?"}[i], req.Messages[0].Content)
	}

	f.reporter.AssertCalled(t, "RunStarted", 2)
	f.reporter.AssertCalled(t, "Prompt", 1, "Topics?")
	f.reporter.AssertCalled(t, "Response", "Video two.")
	f.reporter.AssertNumberOfCalls(t, "Analysis", 2)
	f.reporter.AssertNumberOfCalls(t, "Continuing", 1)
	f.reporter.AssertCalled(t, "Summary", summary)
	f.completer.AssertExpectations(t)
}

func TestDemoService_RunScripted_ContinuesAfterFailure(t *testing.T) {
	// Arrange
	f := newDemoFixture()
	f.expect(nil, errors.ErrAIAuth.WithContext("status", 401))
	f.expect(nil, errors.ErrAINetwork)
	f.expect(result("ok", hitUsage), nil)
	svc := f.service()

	// Act
	summary, err := svc.RunScripted(context.Background(), []string{"a", "b", "c"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Requests)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failures[errors.ReasonAuth])
	assert.Equal(t, 1, summary.Failures[errors.ReasonNetwork])
	assert.Equal(t, 2, summary.Failed())
	f.reporter.AssertNumberOfCalls(t, "Failure", 2)
	f.reporter.AssertNumberOfCalls(t, "Analysis", 1)
	f.reporter.AssertNumberOfCalls(t, "Summary", 1)
}

func TestDemoService_RunScripted_UnclassifiedErrorCountsAsUnknown(t *testing.T) {
	f := newDemoFixture()
	f.expect(nil, stderrors.New("boom"))
	svc := f.service()

	summary, err := svc.RunScripted(context.Background(), []string{"a"})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failures[errors.ReasonUnknown])
}

func TestDemoService_RunScripted_DefaultPrompts(t *testing.T) {
	f := newDemoFixture()
	for range DefaultPrompts {
		f.expect(result("ok", hitUsage), nil)
	}
	svc := f.service(WithMaxTokens(300, 0))

	summary, err := svc.RunScripted(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, len(DefaultPrompts), summary.Requests)
	assert.Equal(t, DefaultPrompts[1], f.requests[1].Messages[0].Content)
	assert.Equal(t, 300, f.requests[0].MaxTokens)
}

func TestDemoService_RunScripted_CancelledContext(t *testing.T) {
	f := newDemoFixture()
	svc := f.service()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunScripted(ctx, []string{"a"})

	assert.ErrorIs(t, err, context.Canceled)
	f.completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestDemoService_RecordsActivity(t *testing.T) {
	// Arrange
	f := newDemoFixture()
	f.expect(result("ok", hitUsage), nil)
	f.expect(result("ok", missUsage), nil)
	recorder := &MockActivityRecorder{}
	var saved []cost.ActivityRecord
	recorder.On("SaveActivity", mock.Anything).
		Run(func(args mock.Arguments) { saved = append(saved, args.Get(0).(cost.ActivityRecord)) }).
		Return(stderrors.New("disk full")).
		Once()
	recorder.On("SaveActivity", mock.Anything).
		Run(func(args mock.Arguments) { saved = append(saved, args.Get(0).(cost.ActivityRecord)) }).
		Return(nil).
		Once()
	svc := f.service(WithActivityRecorder(recorder))

	// Act
	summary, err := svc.RunScripted(context.Background(), []string{"a", "b"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded, "a failed save must not fail the request")
	require.Len(t, saved, 2)
	assert.Equal(t, "run-1", saved[0].RunID)
	assert.Equal(t, ModeDemo, saved[0].Mode)
	assert.Equal(t, testModel, saved[0].Model)
	assert.True(t, saved[0].CacheHit)
	assert.False(t, saved[1].CacheHit)
	recorder.AssertExpectations(t)
}

func TestDemoService_Chat(t *testing.T) {
	// Arrange
	f := newDemoFixture()
	f.expect(result("Hi there.", missUsage), nil)
	f.expect(result("Three videos.", hitUsage), nil)
	svc := f.service()
	in := strings.NewReader("hello\n\n   \nhow many?\nEXIT\nnever sent\n")

	// Act
	summary, err := svc.Chat(context.Background(), in)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Requests)
	require.Len(t, f.requests, 2)

	assert.Equal(t, DefaultChatMaxTokens, f.requests[0].MaxTokens)
	assert.Equal(t, []models.Message{{Role: models.RoleUser, Content: "hello"}}, f.requests[0].Messages)
	assert.Equal(t, []models.Message{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "Hi there."},
		{Role: models.RoleUser, Content: "how many?"},
	}, f.requests[1].Messages)
	assert.Contains(t, f.requests[0].System[0].Text, "conversational")

	f.reporter.AssertCalled(t, "ChatReply", "Three videos.")
	f.reporter.AssertCalled(t, "Analysis", 2, mock.Anything)
	f.reporter.AssertNumberOfCalls(t, "ChatGoodbye", 1)
	f.reporter.AssertNotCalled(t, "Summary", mock.Anything)
}

func TestDemoService_Chat_FailureLeavesHistoryUntouched(t *testing.T) {
	// Arrange
	f := newDemoFixture()
	f.expect(nil, errors.ErrAIRateLimited)
	f.expect(result("ok", hitUsage), nil)
	svc := f.service()

	// Act
	summary, err := svc.Chat(context.Background(), strings.NewReader("first\nsecond\n"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failures[errors.ReasonRateLimit])
	require.Len(t, f.requests, 2)
	assert.Equal(t, []models.Message{{Role: models.RoleUser, Content: "second"}}, f.requests[1].Messages)
	f.reporter.AssertCalled(t, "Analysis", 2, mock.Anything)
	f.reporter.AssertNumberOfCalls(t, "ChatGoodbye", 1)
}

func TestDemoService_Chat_HistoryIsBounded(t *testing.T) {
	// Arrange
	f := newDemoFixture()
	for i := 0; i < 4; i++ {
		f.expect(result("answer", hitUsage), nil)
	}
	svc := f.service(WithHistoryLimit(2))

	// Act
	_, err := svc.Chat(context.Background(), strings.NewReader("q1\nq2\nq3\nq4\nquit\n"))

	// Assert
	require.NoError(t, err)
	require.Len(t, f.requests, 4)
	assert.Len(t, f.requests[3].Messages, 3)
	assert.Equal(t, "q3", f.requests[3].Messages[0].Content)
	assert.Equal(t, "q4", f.requests[3].Messages[2].Content)
}

func TestDemoService_Chat_CancelledContext(t *testing.T) {
	f := newDemoFixture()
	svc := f.service()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Chat(ctx, strings.NewReader("hello\n"))

	assert.ErrorIs(t, err, context.Canceled)
	f.completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestDemoService_Chat_ReturnsWhenCancelledWhileWaitingForInput(t *testing.T) {
	// Arrange
	f := newDemoFixture()
	svc := f.service()
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Chat(ctx, pr)
		done <- err
	}()

	// Act
	time.Sleep(50 * time.Millisecond)
	cancel()

	// Assert
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Chat did not return after ctx was cancelled")
	}
	f.completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	f.reporter.AssertNotCalled(t, "Failure", mock.Anything)
	f.reporter.AssertNotCalled(t, "ChatGoodbye")
}

func TestDemoService_CancelledRequestIsNotCountedAsFailure(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, svc *DemoService) (session.Summary, error)
	}{
		{"scripted", func(ctx context.Context, svc *DemoService) (session.Summary, error) {
			return svc.RunScripted(ctx, []string{"a", "b"})
		}},
		{"chat", func(ctx context.Context, svc *DemoService) (session.Summary, error) {
			return svc.Chat(ctx, strings.NewReader("a\nb\n"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newDemoFixture()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			f.completer.On("Complete", mock.Anything, mock.Anything).
				Run(func(mock.Arguments) { cancel() }).
				Return(nil, context.Canceled).
				Once()
			svc := f.service()

			// Act
			summary, err := tt.run(ctx, svc)

			// Assert
			assert.ErrorIs(t, err, context.Canceled)
			assert.Equal(t, 0, summary.Requests)
			assert.Equal(t, 0, summary.Failed())
			f.reporter.AssertNotCalled(t, "Failure", mock.Anything)
			f.completer.AssertNumberOfCalls(t, "Complete", 1)
		})
	}
}
