package usecase

import (
	"time"

	"GhostSniper/internal/domain/models"
	"GhostSniper/pkg/logger"
)

// EventBus is the publish side of the broadcast hub.
type EventBus interface {
	Publish(ev models.Event)
}

// Reporter writes a domain log entry to the process log, the agent memory and the hub.
type Reporter struct {
	state *AgentState
	bus   EventBus
	log   *logger.Logger
}

func NewReporter(state *AgentState, bus EventBus, log *logger.Logger) *Reporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Reporter{state: state, bus: bus, log: log.Named("agent")}
}

// Detached returns a reporter that logs and publishes but never appends to
// the agent memory. Bots and the engine report through one.
func (r *Reporter) Detached() *Reporter {
	if r == nil {
		return nil
	}
	return &Reporter{bus: r.bus, log: r.log}
}

func (r *Reporter) Report(level models.LogLevel, source, msg string, fields map[string]any) {
	e := models.LogEntry{Time: time.Now().UTC(), Level: level, Message: msg, Source: source, Fields: fields}

	lf := make([]logger.Field, 0, len(fields)+1)
	if source != "" {
		lf = append(lf, logger.String("source", source))
	}
	for k, v := range fields {
		lf = append(lf, logger.Any(k, v))
	}
	switch level {
	case models.LevelError:
		r.log.Error(msg, lf...)
	case models.LevelWarn:
		r.log.Warn(msg, lf...)
	case models.LevelDebug:
		r.log.Debug(msg, lf...)
	default:
		r.log.Info(msg, append(lf, logger.String("level", string(level)))...)
	}

	if r.state != nil {
		r.state.Append(e)
	}
	r.Publish(models.NewEvent(models.EventLog, e))
}

func (r *Reporter) Info(source, msg string)  { r.Report(models.LevelInfo, source, msg, nil) }
func (r *Reporter) OK(source, msg string)    { r.Report(models.LevelOK, source, msg, nil) }
func (r *Reporter) Warn(source, msg string)  { r.Report(models.LevelWarn, source, msg, nil) }
func (r *Reporter) Error(source, msg string) { r.Report(models.LevelError, source, msg, nil) }

// Publish forwards a non-log event to the hub.
func (r *Reporter) Publish(ev models.Event) {
	if r.bus != nil {
		r.bus.Publish(ev)
	}
}
