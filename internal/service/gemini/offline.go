package gemini

import (
	"context"

	"GhostSniper/internal/domain/models"
)

const OfflineReply = "Chat is in local mode. Set GEMINI_API_KEY to enable natural-language commands."

// OfflineInterpreter answers every prompt with a fixed text and never calls an action.
type OfflineInterpreter struct{}

func (OfflineInterpreter) Interpret(context.Context, models.Prompt) (models.Interpretation, error) {
	return models.Interpretation{Text: OfflineReply}, nil
}

func (OfflineInterpreter) Model() string { return "offline" }
