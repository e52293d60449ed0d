package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	"GhostSniper/pkg/logger"
)

// MarketQuerier produces a merged market snapshot for a chain.
type MarketQuerier interface {
	Snapshot(ctx context.Context, chain string) (models.MarketSnapshot, error)
}

type actionFunc func(ctx context.Context, source string, args map[string]any) error

var (
	errMissingFields = errors.New("missing required fields")
	errUnknownAction = errors.New("unknown action")
)

// Dispatcher turns free text into actions on the agent's components.
type Dispatcher struct {
	interp   drepo.Interpreter
	state    *AgentState
	reporter *Reporter
	gateway  Executor
	market   MarketQuerier
	catalog  []models.ToolSpec
	required map[string][]string
	actions  map[string]actionFunc
	validate *validator.Validate
	log      *logger.Logger
}

func NewDispatcher(interp drepo.Interpreter, state *AgentState, reporter *Reporter, gateway Executor, market MarketQuerier, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{
		interp:   interp,
		state:    state,
		reporter: reporter,
		gateway:  gateway,
		market:   market,
		catalog:  Catalog(),
		validate: validator.New(),
		log:      log.Named("dispatcher"),
	}
	d.required = lo.SliceToMap(d.catalog, func(t models.ToolSpec) (string, []string) { return t.Name, t.Required })
	d.actions = map[string]actionFunc{
		models.ActionQueryMarket:   d.queryMarket,
		models.ActionQueueTrade:    d.queueTrade,
		models.ActionUpdateParams:  d.updateParams,
		models.ActionWatchAddress:  d.watchAddress,
		models.ActionClosePosition: d.closePosition,
	}
	return d
}

// Dispatch interprets text and runs the resulting actions in order. An
// interpreter failure is returned as an error and no action runs; failures of
// individual actions are reported in the result and never abort the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, text, source string) (*models.DispatchResult, error) {
	if source == "" {
		source = "web"
	}
	d.reporter.Report(models.LevelUser, source, text, nil)

	out, err := d.interp.Interpret(ctx, models.Prompt{System: SystemInstruction, Text: text, Catalog: d.catalog})
	if err != nil {
		d.reporter.Error(source, "Agent error: "+err.Error())
		return nil, fmt.Errorf("interpret: %w", err)
	}

	if out.Text != "" {
		d.reporter.Report(models.LevelAssistant, source, out.Text, nil)
	}
	if len(out.Calls) == 0 {
		reply := out.Text
		if reply == "" {
			reply = "(no response)"
			d.reporter.Report(models.LevelAssistant, source, reply, nil)
		}
		return &models.DispatchResult{OK: true, Text: reply}, nil
	}

	res := &models.DispatchResult{OK: true, Text: out.Text}
	for _, call := range out.Calls {
		res.Actions = append(res.Actions, d.run(ctx, source, call))
	}
	return res, nil
}

func (d *Dispatcher) run(ctx context.Context, source string, call models.Call) models.ActionOutcome {
	outcome := models.ActionOutcome{Name: call.Name}

	action, ok := d.actions[call.Name]
	if !ok {
		outcome.Error = errUnknownAction.Error()
		d.reporter.Warn(source, "Unknown action: "+call.Name)
		return outcome
	}
	if missing := missingKeys(call.Args, d.required[call.Name]); len(missing) > 0 {
		err := fmt.Errorf("%w: %s", errMissingFields, strings.Join(missing, ", "))
		outcome.Error = err.Error()
		d.reporter.Error(source, fmt.Sprintf("%s rejected: %v", call.Name, err))
		return outcome
	}

	if err := action(ctx, source, call.Args); err != nil {
		outcome.Error = err.Error()
		d.reporter.Error(source, fmt.Sprintf("%s failed: %v", call.Name, err))
		return outcome
	}
	outcome.OK = true
	return outcome
}

func missingKeys(args map[string]any, required []string) []string {
	return lo.Filter(required, func(k string, _ int) bool {
		v, ok := args[k]
		if !ok || v == nil {
			return true
		}
		s, isString := v.(string)
		return isString && strings.TrimSpace(s) == ""
	})
}

// decode maps loosely typed call arguments onto dst, then applies defaults and constraints.
func (d *Dispatcher) decode(args map[string]any, dst any) error {
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	if err := defaults.Set(dst); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if err := d.validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid args: %w", err)
	}
	return nil
}

func (d *Dispatcher) queryMarket(ctx context.Context, source string, raw map[string]any) error {
	var a queryMarketArgs
	if err := d.decode(raw, &a); err != nil {
		return err
	}
	chain := "all"
	if c, ok := models.ParseChain(a.Chain); ok {
		chain = string(c)
	}
	if d.market == nil {
		return fmt.Errorf("market intel unavailable")
	}
	snap, err := d.market.Snapshot(ctx, chain)
	if err != nil {
		return err
	}
	d.reporter.Publish(models.NewEvent(models.EventMarkets, models.MarketsPayload{Chain: snap.Chain, Data: snap.Data, Errors: snap.Errors}))
	d.reporter.Report(models.LevelOK, source, fmt.Sprintf("Market snapshot for %s: %d sources, %d errors", chain, len(snap.Data), len(snap.Errors)), nil)
	return nil
}

func (d *Dispatcher) queueTrade(ctx context.Context, source string, raw map[string]any) error {
	var a queueTradeArgs
	if err := d.decode(raw, &a); err != nil {
		return err
	}
	chain, ok := models.ParseChain(a.Chain)
	if !ok {
		return fmt.Errorf("unsupported chain %q", a.Chain)
	}
	intent := models.TradeIntent{
		Side:          models.SideBuy,
		TokenIdentity: a.Token,
		Amount:        a.Amount,
		Chain:         chain,
		Slippage:      a.Slippage,
		PriorityFee:   a.Priority,
		Origin:        "command",
	}
	return tradeErr(d.trade(ctx, source, models.ActionQueueTrade, intent, a.Live))
}

func (d *Dispatcher) closePosition(ctx context.Context, source string, raw map[string]any) error {
	var a closePositionArgs
	if err := d.decode(raw, &a); err != nil {
		return err
	}
	chain, ok := models.ParseChain(a.Chain)
	if !ok {
		return fmt.Errorf("unsupported chain %q", a.Chain)
	}
	intent := models.TradeIntent{
		Side:          models.SideSell,
		TokenIdentity: a.Token,
		AmountPct:     a.Percent,
		Chain:         chain,
		Origin:        "command",
	}
	return tradeErr(d.trade(ctx, source, models.ActionClosePosition, intent, false))
}

// trade applies live gating, executes, broadcasts the result and logs a fill.
// Gating never escalates: a live request that is not permitted runs on paper
// with a warning. Failures are left to the caller to log.
func (d *Dispatcher) trade(ctx context.Context, source, action string, intent models.TradeIntent, live bool) models.TradeResult {
	params := d.state.Params()
	paper, downgraded := GateLive(live || params.LiveEnabled, params, d.state.LiveCeiling())
	intent.Paper = paper
	if downgraded {
		d.reporter.Warn(source, "Live trading not permitted (ceiling off or confirmation required); using paper mode.")
	}

	res := d.gateway.Execute(ctx, intent)
	d.reporter.Publish(models.NewEvent(models.EventTrade, models.TradePayload{Action: action, Intent: intent, Result: res}))
	if res.OK {
		mode := "live"
		if res.Paper {
			mode = "paper"
		}
		d.reporter.Report(models.LevelOK, source, fmt.Sprintf("%s %s %s on %s (%s): %s", action, intent.Side, intent.TokenIdentity, intent.Chain, mode, res.TxID),
			map[string]any{"txid": res.TxID, "price": res.FilledPrice})
	}
	return res
}

func tradeErr(res models.TradeResult) error {
	if res.OK {
		return nil
	}
	return errors.New(res.Error)
}

func (d *Dispatcher) updateParams(_ context.Context, source string, raw map[string]any) error {
	var patch models.ParamsPatch
	if err := d.decode(raw, &patch); err != nil {
		return err
	}
	return d.ApplyParams(source, patch)
}

// ApplyParams merges patch into the agent params, broadcasts and logs the change.
func (d *Dispatcher) ApplyParams(source string, patch models.ParamsPatch) error {
	if err := d.validate.Struct(patch); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	before, after := d.state.UpdateParams(patch)
	if patch.Live != nil && *patch.Live && !after.LiveEnabled {
		d.reporter.Warn(source, "Live trading is disabled by the operator; live stays off.")
	}
	d.reporter.Publish(models.NewEvent(models.EventParams, after))
	d.reporter.Report(models.LevelOK, source, "Params updated", map[string]any{"before": before, "after": after})
	return nil
}

func (d *Dispatcher) watchAddress(_ context.Context, source string, raw map[string]any) error {
	var a watchAddressArgs
	if err := d.decode(raw, &a); err != nil {
		return err
	}
	added := d.state.Watch(a.Address)
	d.reporter.Publish(models.NewEvent(models.EventWatch, models.WatchPayload{Address: a.Address, Added: added}))
	msg := "Watching " + a.Address
	if !added {
		msg = "Already watching " + a.Address
	}
	d.reporter.OK(source, msg)
	return nil
}

// Execute runs a direct trade request through the same gating as queueTrade.
func (d *Dispatcher) Execute(ctx context.Context, source string, intent models.TradeIntent, live bool) models.TradeResult {
	res := d.trade(ctx, source, "api", intent, live)
	if !res.OK {
		d.reporter.Error(source, "trade failed: "+res.Error)
	}
	return res
}
