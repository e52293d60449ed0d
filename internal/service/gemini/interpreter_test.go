package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostSniper/internal/domain/models"
)

func TestDeclarations(t *testing.T) {
	decls := declarations([]models.ToolSpec{{
		Name:        "queueTrade",
		Description: "buy a token",
		Params: []models.ToolParam{
			{Name: "chain", Type: "string", Enum: []string{"sol", "evm"}},
			{Name: "amount", Type: "number"},
			{Name: "live", Type: "boolean"},
		},
		Required: []string{"chain", "amount"},
	}})
	require.Len(t, decls, 1)
	d := decls[0]
	assert.Equal(t, "queueTrade", d.Name)
	assert.Equal(t, genai.TypeObject, d.Parameters.Type)
	assert.Equal(t, []string{"chain", "amount"}, d.Parameters.Required)
	assert.Equal(t, genai.TypeNumber, d.Parameters.Properties["amount"].Type)
	assert.Equal(t, genai.TypeBoolean, d.Parameters.Properties["live"].Type)
	assert.Equal(t, []string{"sol", "evm"}, d.Parameters.Properties["chain"].Enum)
}

func TestParseResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{
			genai.Text("sure"),
			genai.FunctionCall{Name: "watchAddress", Args: map[string]any{"address": "W1"}},
			genai.FunctionCall{Name: "queryMarket", Args: map[string]any{}},
		}},
	}}}
	got := parseResponse(resp)
	assert.Empty(t, got.Text)
	require.Len(t, got.Calls, 2)
	assert.Equal(t, "watchAddress", got.Calls[0].Name)
	assert.Equal(t, "W1", got.Calls[0].Args["address"])

	textOnly := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("hello"), genai.Text(" there ")}},
	}}}
	assert.Equal(t, "hello\nthere", parseResponse(textOnly).Text)
	assert.Equal(t, models.Interpretation{}, parseResponse(nil))
}

func TestOfflineInterpreter(t *testing.T) {
	got, err := OfflineInterpreter{}.Interpret(context.Background(), models.Prompt{Text: "buy"})
	require.NoError(t, err)
	assert.Equal(t, OfflineReply, got.Text)
	assert.Empty(t, got.Calls)
	assert.Equal(t, "offline", OfflineInterpreter{}.Model())
}
