package usecase

import (
	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
)

type nopMetrics struct{}

func (nopMetrics) RecordSignal(string, int) {}
func (nopMetrics) RecordDuplicate(string) {}
func (nopMetrics) RecordTrade(string, string) {}
func (nopMetrics) RecordBotState(string, models.BotState) {}
func (nopMetrics) RecordSubscribers(int) {}
func (nopMetrics) RecordError(string) {}
func (nopMetrics) RecordLatency(string, float64) {}

func metricsOrNop(m drepo.Metrics) drepo.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
