package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostSniper/internal/domain/models"
	"GhostSniper/internal/service/broadcast"
	"GhostSniper/internal/usecase"
	xhttp "GhostSniper/pkg/http"
	xlogger "GhostSniper/pkg/logger"
)

type stubAgent struct{ running bool }

func (a *stubAgent) Start() bool {
	changed := !a.running
	a.running = true
	return changed
}

func (a *stubAgent) Stop() bool {
	changed := a.running
	a.running = false
	return changed
}

func (a *stubAgent) Status() models.AgentStatus { return models.AgentStatus{Running: a.running} }

type stubRunner struct {
	text, source string
	err          error
	patched      *models.ParamsPatch
}

func (r *stubRunner) Dispatch(_ context.Context, text, source string) (*models.DispatchResult, error) {
	r.text, r.source = text, source
	if r.err != nil {
		return nil, r.err
	}
	return &models.DispatchResult{OK: true, Text: "done"}, nil
}

func (r *stubRunner) ApplyParams(_ string, patch models.ParamsPatch) error {
	r.patched = &patch
	return nil
}

type stubTail struct{ entries []models.LogEntry }

func (t stubTail) Tail(n int) []models.LogEntry {
	if n > len(t.entries) {
		n = len(t.entries)
	}
	return t.entries[len(t.entries)-n:]
}

func (stubTail) Params() models.AgentParams { return models.AgentParams{RiskTier: "medium"} }

type fixedLimiter bool

func (l fixedLimiter) Allow(string) bool { return bool(l) }

type stubBots struct {
	started map[string]models.BotKind
	err     error
}

func (b *stubBots) Start(id string, kind models.BotKind, _ models.BotOptions) (bool, error) {
	if b.err != nil {
		return false, b.err
	}
	b.started[id] = kind
	return true, nil
}

func (b *stubBots) Stop(id string) (bool, error) {
	if _, ok := b.started[id]; !ok {
		return false, fmt.Errorf("%w: %s", usecase.ErrBotNotFound, id)
	}
	return true, nil
}

func (b *stubBots) Remove(id string) error {
	if _, ok := b.started[id]; ok {
		return usecase.ErrBotRunning
	}
	return nil
}

func (b *stubBots) List() []models.BotSummary {
	out := make([]models.BotSummary, 0, len(b.started))
	for id, kind := range b.started {
		out = append(out, models.BotSummary{ID: id, Kind: kind, State: models.BotRunning})
	}
	return out
}

type stubExecutor struct {
	got  models.TradeIntent
	live bool
	res  models.TradeResult
}

func (e *stubExecutor) Execute(_ context.Context, _ string, intent models.TradeIntent, live bool) models.TradeResult {
	e.got, e.live = intent, live
	return e.res
}

type stubQuoter struct{ err error }

func (q stubQuoter) Quote(context.Context, models.QuoteRequest) (json.RawMessage, error) {
	if q.err != nil {
		return nil, q.err
	}
	return json.RawMessage(`{"outAmount":"42"}`), nil
}

func newEcho(handlers ...xhttp.Handler) *echo.Echo {
	e := echo.New()
	for _, h := range handlers {
		h.RegisterRoutes(e)
	}
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, xhttp.APIResponse) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp xhttp.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestAgentStartStop(t *testing.T) {
	agent := &stubAgent{}
	e := newEcho(NewAgentHandler(xlogger.Nop(), agent, &stubRunner{}, stubTail{}, fixedLimiter(true)))

	rec, resp := do(t, e, http.MethodPost, "/api/agent/start", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp.Data.(map[string]any)["changed"])

	_, resp = do(t, e, http.MethodPost, "/api/agent/start", "")
	assert.Equal(t, false, resp.Data.(map[string]any)["changed"])

	_, resp = do(t, e, http.MethodPost, "/api/agent/stop", "")
	assert.Equal(t, true, resp.Data.(map[string]any)["changed"])
	assert.False(t, agent.running)
}

func TestAgentLogsLimit(t *testing.T) {
	tail := stubTail{entries: []models.LogEntry{{Message: "a"}, {Message: "b"}, {Message: "c"}}}
	e := newEcho(NewAgentHandler(xlogger.Nop(), &stubAgent{}, &stubRunner{}, tail, nil))

	_, resp := do(t, e, http.MethodGet, "/api/agent/logs?limit=2", "")
	list := resp.Data.(map[string]any)
	assert.EqualValues(t, 2, list["total"])

	_, resp = do(t, e, http.MethodGet, "/api/agent/logs?limit=abc", "")
	assert.EqualValues(t, 3, resp.Data.(map[string]any)["total"])
}

func TestAgentPrompt(t *testing.T) {
	runner := &stubRunner{}
	e := newEcho(NewAgentHandler(xlogger.Nop(), &stubAgent{}, runner, stubTail{}, fixedLimiter(true)))

	rec, _ := do(t, e, http.MethodPost, "/api/agent/prompt", `{"text":"buy 0.1 sol of BONK"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "buy 0.1 sol of BONK", runner.text)
	assert.Equal(t, "web", runner.source, "source defaults to web")

	rec, _ = do(t, e, http.MethodPost, "/api/agent/prompt", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAgentPromptRateLimited(t *testing.T) {
	runner := &stubRunner{}
	e := newEcho(NewAgentHandler(xlogger.Nop(), &stubAgent{}, runner, stubTail{}, fixedLimiter(false)))

	rec, _ := do(t, e, http.MethodPost, "/api/agent/prompt", `{"text":"status"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Empty(t, runner.text, "a limited prompt is never dispatched")
}

func TestAgentPromptInterpreterDown(t *testing.T) {
	runner := &stubRunner{err: errors.New("quota exceeded")}
	e := newEcho(NewAgentHandler(xlogger.Nop(), &stubAgent{}, runner, stubTail{}, nil))

	rec, _ := do(t, e, http.MethodPost, "/api/agent/prompt", `{"text":"status"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAgentParams(t *testing.T) {
	runner := &stubRunner{}
	e := newEcho(NewAgentHandler(xlogger.Nop(), &stubAgent{}, runner, stubTail{}, nil))

	rec, _ := do(t, e, http.MethodPost, "/api/agent/params", `{"riskTier":"high","budget":50}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, runner.patched)
	assert.Equal(t, "high", *runner.patched.RiskTier)
	assert.Equal(t, 50.0, *runner.patched.BudgetUSD)

	rec, _ = do(t, e, http.MethodPost, "/api/agent/params", `{"riskTier":"reckless"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBotsLifecycle(t *testing.T) {
	bots := &stubBots{started: map[string]models.BotKind{}}
	e := newEcho(NewBotsHandler(xlogger.Nop(), bots))

	rec, _ := do(t, e, http.MethodPost, "/api/bots/dex-1/start", `{"kind":"dexscreener"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.BotKindDexScreener, bots.started["dex-1"])

	_, resp := do(t, e, http.MethodGet, "/api/bots", "")
	assert.EqualValues(t, 1, resp.Data.(map[string]any)["total"])

	rec, _ = do(t, e, http.MethodDelete, "/api/bots/dex-1", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "running bots cannot be removed")

	rec, _ = do(t, e, http.MethodPost, "/api/bots/ghost/stop", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, e, http.MethodPost, "/api/bots/x/start", `{"kind":"arbitrage"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBotErrorMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, botError(usecase.ErrBotNotFound).Status)
	assert.Equal(t, http.StatusConflict, botError(usecase.ErrBotRunning).Status)
	assert.Equal(t, http.StatusBadRequest, botError(usecase.ErrUnknownKind).Status)
	assert.Equal(t, http.StatusUnprocessableEntity, botError(errors.New("invalid options")).Status)
}

func TestTradesDefaultsAndValidation(t *testing.T) {
	exec := &stubExecutor{res: models.TradeResult{OK: true, Paper: true}}
	e := newEcho(NewTradesHandler(xlogger.Nop(), exec, stubQuoter{}))

	rec, _ := do(t, e, http.MethodPost, "/api/trades", `{"token":"Mint111","amount":0.5}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SideBuy, exec.got.Side)
	assert.Equal(t, models.ChainSol, exec.got.Chain)
	assert.Equal(t, 1.0, exec.got.Slippage)
	assert.False(t, exec.live)

	rec, _ = do(t, e, http.MethodPost, "/api/trades", `{"token":"Mint111"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "amount or percent is required")

	rec, _ = do(t, e, http.MethodPost, "/api/trades", `{"token":"Mint111","amount":1,"chain":"tron"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradesAcceptChainAliases(t *testing.T) {
	exec := &stubExecutor{res: models.TradeResult{OK: true, Paper: true}}
	e := newEcho(NewTradesHandler(xlogger.Nop(), exec, stubQuoter{}))

	rec, _ := do(t, e, http.MethodPost, "/api/trades", `{"token":"Mint111","amount":0.5,"chain":"solana"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ChainSol, exec.got.Chain)

	rec, _ = do(t, e, http.MethodPost, "/api/trades", `{"token":"0xabc","amount":0.5,"chain":"base"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ChainEVM, exec.got.Chain)

	rec, resp := do(t, e, http.MethodPost, "/api/trades", `{"token":"Mint111","amount":1,"chain":"tron"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := resp.Data.([]any)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]any)
	assert.Equal(t, "chain", first["field"])
	assert.Contains(t, first["message"], "must be sol or evm")
}

func TestTradesFailedResult(t *testing.T) {
	exec := &stubExecutor{res: models.TradeResult{OK: false, Error: "no route"}}
	e := newEcho(NewTradesHandler(xlogger.Nop(), exec, stubQuoter{}))

	rec, resp := do(t, e, http.MethodPost, "/api/trades", `{"token":"Mint111","side":"sell","percent":50,"live":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "no route", resp.Data.(map[string]any)["error"])
	assert.True(t, exec.live)
	assert.Equal(t, 50.0, exec.got.AmountPct)
}

func TestQuote(t *testing.T) {
	e := newEcho(NewTradesHandler(xlogger.Nop(), &stubExecutor{}, stubQuoter{}))
	rec, resp := do(t, e, http.MethodGet, "/api/quote?inputMint=A&outputMint=B&amount=1000", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", resp.Data.(map[string]any)["outAmount"])

	rec, _ = do(t, e, http.MethodGet, "/api/quote?inputMint=A&outputMint=B&amount=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e = newEcho(NewTradesHandler(xlogger.Nop(), &stubExecutor{}, stubQuoter{err: errors.New("503")}))
	rec, _ = do(t, e, http.MethodGet, "/api/quote?inputMint=A&outputMint=B&amount=1000", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealth(t *testing.T) {
	e := newEcho(NewHealthHandler(map[string]HealthCheck{
		"ok": func(context.Context) error { return nil },
	}))
	rec, resp := do(t, e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp.Data.(map[string]any)["status"])

	e = newEcho(NewHealthHandler(map[string]HealthCheck{
		"engine": func(context.Context) error { return errors.New("feed disconnected") },
	}))
	rec, resp = do(t, e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	deps := resp.Data.(map[string]any)["deps"].(map[string]any)
	assert.Equal(t, "feed disconnected", deps["engine"])
}

func TestStreamRelaysHubEvents(t *testing.T) {
	hub := broadcast.NewHub(xlogger.Nop(), nil)
	srv := httptest.NewServer(newEcho(NewStreamHandler(xlogger.Nop(), hub, 8)))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Publish(models.NewEvent(models.EventLog, models.LogEntry{Message: "hello"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env struct {
		Topic   string          `json:"topic"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, "agent", env.Topic)
	assert.Contains(t, string(env.Payload), "hello")

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
