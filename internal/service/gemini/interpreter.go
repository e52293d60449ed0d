package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
)

// Interpreter maps prompts onto Gemini function calling. The catalog becomes
// the model's function declarations, so every call it returns names a
// catalog action.
type Interpreter struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

var _ drepo.Interpreter = (*Interpreter)(nil)

type Option func(*Interpreter)

func WithModel(name string) Option {
	return func(i *Interpreter) {
		if name != "" {
			i.model = name
		}
	}
}

func WithTemperature(t float32) Option {
	return func(i *Interpreter) { i.temperature = t }
}

// WithTimeout bounds one Interpret call. Zero leaves the caller's deadline alone.
func WithTimeout(d time.Duration) Option {
	return func(i *Interpreter) { i.timeout = d }
}

func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	cli, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return cli, nil
}

func New(client *genai.Client, opts ...Option) *Interpreter {
	i := &Interpreter{client: client, model: "gemini-2.0-flash", temperature: 0.2}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Interpreter) Model() string { return i.model }

func (i *Interpreter) Interpret(ctx context.Context, p models.Prompt) (models.Interpretation, error) {
	m := i.client.GenerativeModel(i.model)
	m.SetTemperature(i.temperature)
	if p.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}
	}
	if len(p.Catalog) > 0 {
		m.Tools = []*genai.Tool{{FunctionDeclarations: declarations(p.Catalog)}}
		m.ToolConfig = &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingAuto}}
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	resp, err := m.GenerateContent(ctx, genai.Text(p.Text))
	if err != nil {
		return models.Interpretation{}, fmt.Errorf("gemini generate: %w", err)
	}
	return parseResponse(resp), nil
}

func (i *Interpreter) Close() error { return i.client.Close() }

func declarations(catalog []models.ToolSpec) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(catalog))
	for _, tool := range catalog {
		props := make(map[string]*genai.Schema, len(tool.Params))
		for _, p := range tool.Params {
			props[p.Name] = &genai.Schema{Type: schemaType(p.Type), Description: p.Description, Enum: p.Enum}
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: props, Required: tool.Required},
		})
	}
	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// parseResponse collects function calls from the first candidate. Text parts
// are joined into the reply and only used when the model made no call.
func parseResponse(resp *genai.GenerateContentResponse) models.Interpretation {
	var out models.Interpretation
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}
	var text []string
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.FunctionCall:
			out.Calls = append(out.Calls, models.Call{Name: v.Name, Args: v.Args})
		case *genai.FunctionCall:
			out.Calls = append(out.Calls, models.Call{Name: v.Name, Args: v.Args})
		case genai.Text:
			if s := strings.TrimSpace(string(v)); s != "" {
				text = append(text, s)
			}
		}
	}
	if len(out.Calls) == 0 {
		out.Text = strings.Join(text, "\n")
	}
	return out
}
