package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"GhostSniper/internal/domain/models"
	domrepo "GhostSniper/internal/domain/repository"
	pkgch "GhostSniper/pkg/clickhouse"
	applogger "GhostSniper/pkg/logger"
)

const (
	signalsTable = "signals"
	tradesTable  = "trades"
)

// JournalSchema is the DDL the journal expects. Applied by Init.
var JournalSchema = []string{
	`CREATE TABLE IF NOT EXISTS signals (
		observed_at DateTime64(3),
		source_id LowCardinality(String),
		token String,
		symbol String,
		chain LowCardinality(String),
		pool LowCardinality(String),
		score UInt8,
		liquidity_usd Float64,
		volume_5m Float64,
		price_change_5m Float64,
		buys_5m UInt32,
		sells_5m UInt32,
		age_seconds Int64,
		market_cap_usd Float64,
		price_usd Float64
	) ENGINE = MergeTree ORDER BY (source_id, observed_at)`,
	`CREATE TABLE IF NOT EXISTS trades (
		executed_at DateTime64(3),
		action LowCardinality(String),
		origin String,
		side LowCardinality(String),
		chain LowCardinality(String),
		token String,
		amount Float64,
		amount_pct Float64,
		paper UInt8,
		ok UInt8,
		tx_id String,
		router LowCardinality(String),
		filled_price Float64,
		error String
	) ENGINE = MergeTree ORDER BY (origin, executed_at)`,
}

// CHJournal is a write-only ClickHouse journal for signals and trades.
type CHJournal struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

var _ domrepo.Journal = (*CHJournal)(nil)

func NewCHJournal(client *pkgch.Client, l *applogger.Logger) *CHJournal {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHJournal{client: client, db: client.DB(), l: l.Named("journal")}
}

func (j *CHJournal) Init(ctx context.Context) error {
	return j.client.InitSchema(ctx, JournalSchema)
}

func (j *CHJournal) StoreSignal(ctx context.Context, s models.Signal) error {
	q := fmt.Sprintf(`INSERT INTO %s (observed_at, source_id, token, symbol, chain, pool, score,
		liquidity_usd, volume_5m, price_change_5m, buys_5m, sells_5m, age_seconds, market_cap_usd, price_usd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, signalsTable)
	m := s.Metrics
	_, err := j.db.ExecContext(ctx, q,
		s.ObservedAt, s.SourceID, s.TokenIdentity, s.Symbol, s.Chain, s.Pool, uint8(s.Score),
		m.LiquidityUSD, m.Volume5m, m.PriceChange5m, uint32(m.Buys5m), uint32(m.Sells5m), m.AgeSeconds,
		m.MarketCapUSD, m.PriceUSD,
	)
	if err != nil {
		j.l.Error("insert signal", applogger.String("token", s.TokenIdentity), applogger.Error(err))
		return fmt.Errorf("store signal: %w", err)
	}
	return nil
}

func (j *CHJournal) StoreTrade(ctx context.Context, p models.TradePayload) error {
	q := fmt.Sprintf(`INSERT INTO %s (executed_at, action, origin, side, chain, token, amount, amount_pct,
		paper, ok, tx_id, router, filled_price, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, tradesTable)
	in, res := p.Intent, p.Result
	at := res.ExecutedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx, q,
		at, p.Action, in.Origin, string(in.Side), string(in.Chain), in.TokenIdentity, in.Amount, in.AmountPct,
		boolToUInt8(res.Paper), boolToUInt8(res.OK), res.TxID, res.Router, res.FilledPrice, res.Error,
	)
	if err != nil {
		j.l.Error("insert trade", applogger.String("token", in.TokenIdentity), applogger.Error(err))
		return fmt.Errorf("store trade: %w", err)
	}
	return nil
}

func (j *CHJournal) Health(ctx context.Context) error { return j.client.Health(ctx) }

func (j *CHJournal) Close() error { return j.client.Close() }

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
