package pumpportal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	"GhostSniper/pkg/logger"
)

const SourceID = "pumpportal"

var ErrNotConnected = errors.New("pumpportal not connected")

// Client is a PushFeed over the PumpPortal data websocket. It always
// subscribes to new token creations and, when watchTrades is set, to trades
// by the wallets returned by accounts.
type Client struct {
	url          string
	watchTrades  bool
	accounts     func() []string
	pingInterval time.Duration
	log          *logger.Logger
	dialer       *websocket.Dialer

	mu        sync.Mutex // guards conn and writes
	conn      *websocket.Conn
	connected atomic.Bool
}

var _ drepo.PushFeed = (*Client)(nil)

func New(url string, watchTrades bool, accounts func() []string, pingInterval time.Duration, log *logger.Logger) *Client {
	if pingInterval <= 0 {
		pingInterval = 20 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		url:          url,
		watchTrades:  watchTrades,
		accounts:     accounts,
		pingInterval: pingInterval,
		log:          log.Named("pumpportal"),
		dialer:       websocket.DefaultDialer,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("pumpportal connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.connected.Store(true)
	c.log.Info("connected", logger.String("url", c.url))
	return nil
}

func (c *Client) Subscribe(ctx context.Context) error {
	if err := c.writeJSON(map[string]any{"method": "subscribeNewToken"}); err != nil {
		return fmt.Errorf("subscribe new tokens: %w", err)
	}
	if !c.watchTrades || c.accounts == nil {
		return nil
	}
	if keys := c.accounts(); len(keys) > 0 {
		if err := c.writeJSON(map[string]any{"method": "subscribeAccountTrade", "keys": keys}); err != nil {
			return fmt.Errorf("subscribe account trades: %w", err)
		}
		c.log.Info("watching accounts", logger.Int("count", len(keys)))
	}
	return nil
}

func (c *Client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteJSON(v)
}

// frame covers the fields needed to route a message to a decoder format.
type frame struct {
	TxType  string `json:"txType"`
	Mint    string `json:"mint"`
	Message string `json:"message"`
}

// Read streams raw items until the connection fails or ctx ends.
func (c *Client) Read(ctx context.Context) (<-chan models.RawItem, <-chan error) {
	items := make(chan models.RawItem, 1024)
	errs := make(chan error, 1)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		errs <- ErrNotConnected
		close(errs)
		close(items)
		return items, errs
	}

	// a peer that stops answering pings fails the read instead of blocking it
	timeout := 2 * c.pingInterval
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeout))
	})

	readCtx, cancel := context.WithCancel(ctx)
	go c.pingLoop(readCtx)
	go func() {
		<-readCtx.Done()
		// unblocks ReadMessage on shutdown
		if ctx.Err() != nil {
			_ = conn.Close()
		}
	}()

	go func() {
		defer cancel()
		defer close(items)
		defer close(errs)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				c.connected.Store(false)
				if ctx.Err() == nil {
					errs <- fmt.Errorf("pumpportal read: %w", err)
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(timeout))
			item, ok := classify(b)
			if !ok {
				continue
			}
			item.ReceivedAt = time.Now().UTC()
			select {
			case items <- item:
			case <-ctx.Done():
				return
			default:
				c.log.Warn("dropping frame on backpressure", logger.String("format", item.Format))
			}
		}
	}()
	return items, errs
}

func classify(b []byte) (models.RawItem, bool) {
	var f frame
	if err := json.Unmarshal(b, &f); err != nil || f.Mint == "" {
		// subscription acks and error frames carry no mint
		return models.RawItem{}, false
	}
	format := models.FormatPumpPortalNew
	if f.TxType == "buy" || f.TxType == "sell" {
		format = models.FormatPumpPortalTrade
	}
	return models.RawItem{SourceID: SourceID, Format: format, Payload: json.RawMessage(b)}, true
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.conn != nil {
				_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			}
			c.mu.Unlock()
		}
	}
}

// Reconnect drops the current connection and subscribes again. Backoff is the caller's job.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

func (c *Client) Close() error {
	c.connected.Store(false)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) IsConnected() bool { return c.connected.Load() }
