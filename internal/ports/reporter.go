package ports

import (
	"github.com/thomas-vilte/promptcache/internal/services/cost"
	"github.com/thomas-vilte/promptcache/internal/services/session"
)

// Reporter renders run progress. Implementations own all console output so the
// cost analysis stays free of side effects.
type Reporter interface {
	Header()
	Info(msg string)
	CatalogLoaded(records, size int)
	RunStarted(prompts int)
	Prompt(index int, text string)
	// Response shows a preview of a scripted answer.
	Response(text string)
	Analysis(requestNumber int, analysis cost.Analysis)
	Continuing()
	Failure(err error)
	Summary(summary session.Summary)

	ChatIntro()
	ChatPrompt()
	ChatReply(text string)
	ChatGoodbye()
}

// ActivityRecorder persists per-request activity.
type ActivityRecorder interface {
	SaveActivity(record cost.ActivityRecord) error
}
