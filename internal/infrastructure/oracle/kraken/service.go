// Package krakenoracle implements the PriceSource port on top of the
// kraken websocket ticker stream. It keeps the latest observed quote per
// fiat currency; staleness and confidence gating happen in the engine.
package krakenoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
)

// KrakenWebSocketURL is the base url to open a connection with kraken.
const KrakenWebSocketURL = "ws.kraken.com"

// ErrNoQuote is returned while no ticker message has been received yet for
// the requested currency.
var ErrNoQuote = fmt.Errorf("no quote received yet for currency")

// streamConfidence is reported for every kraken quote: the stream has no
// per-quote confidence metric, so quality gating relies on quote age.
var streamConfidence = decimal.NewFromInt(1)

type quote struct {
	price     decimal.Decimal
	timestamp int64
}

// Service maintains one websocket subscription per configured fiat
// currency ticker.
type Service struct {
	conn *websocket.Conn
	lock sync.RWMutex

	currencyByTicker map[string]string
	tickerByCurrency map[string]string
	latestByCurrency map[string]quote
	quitChan         chan struct{}
}

// NewService returns a Service subscribing the given fiat currencies,
// mapped to their kraken ticker (e.g. "USD" -> "XBT/USD").
func NewService(tickerByCurrency map[string]string) *Service {
	currencyByTicker := make(map[string]string, len(tickerByCurrency))
	for currency, ticker := range tickerByCurrency {
		currencyByTicker[ticker] = currency
	}
	return &Service{
		currencyByTicker: currencyByTicker,
		tickerByCurrency: tickerByCurrency,
		latestByCurrency: make(map[string]quote),
		quitChan:         make(chan struct{}, 1),
	}
}

// GetPrice implements ports.PriceSource.
func (s *Service) GetPrice(
	_ context.Context, fiatCurrency string,
) (*ports.PriceQuote, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	q, ok := s.latestByCurrency[fiatCurrency]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoQuote, fiatCurrency)
	}
	return &ports.PriceQuote{
		Price:      q.price,
		Confidence: streamConfidence,
		Timestamp:  q.timestamp,
	}, nil
}

// Start connects to kraken and consumes ticker messages until Stop is
// called, reconnecting on dropped connections.
func (s *Service) Start() error {
	tickers := make([]string, 0, len(s.currencyByTicker))
	for ticker := range s.currencyByTicker {
		tickers = append(tickers, ticker)
	}

	conn, err := connectAndSubscribe(tickers)
	if err != nil {
		return err
	}
	s.conn = conn

	mustReconnect, err := s.consume()
	for mustReconnect {
		log.WithError(err).Warn("oracle connection dropped unexpectedly, reconnecting")

		conn, err = connectAndSubscribe(tickers)
		if err != nil {
			return err
		}
		s.conn = conn
		mustReconnect, err = s.consume()
	}
	return err
}

// Stop closes the subscription.
func (s *Service) Stop() {
	s.quitChan <- struct{}{}
}

func (s *Service) consume() (mustReconnect bool, err error) {
	// the read below can panic instead of returning an unexpected close
	// error, so a recover is mandatory to signal the reconnection
	defer func() {
		if rec := recover(); rec != nil {
			mustReconnect = true
		}
	}()

	for {
		select {
		case <-s.quitChan:
			return false, s.conn.Close()
		default:
			_, message, err := s.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				) {
					panic(err)
				}
				return false, err
			}
			s.parseAndStore(message)
		}
	}
}

func (s *Service) parseAndStore(msg []byte) {
	var i []interface{}
	if err := json.Unmarshal(msg, &i); err != nil {
		return
	}
	if len(i) != 4 {
		return
	}

	ticker, ok := i[3].(string)
	if !ok {
		return
	}
	currency, ok := s.currencyByTicker[ticker]
	if !ok {
		return
	}

	payload, ok := i[1].(map[string]interface{})
	if !ok {
		return
	}
	closePrices, ok := payload["c"].([]interface{})
	if !ok || len(closePrices) < 1 {
		return
	}
	priceStr, ok := closePrices[0].(string)
	if !ok {
		return
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.latestByCurrency[currency] = quote{
		price:     price,
		timestamp: time.Now().Unix(),
	}
}

func connectAndSubscribe(tickers []string) (*websocket.Conn, error) {
	url := fmt.Sprintf("wss://%s", KrakenWebSocketURL)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	msg := map[string]interface{}{
		"event": "subscribe",
		"pair":  tickers,
		"subscription": map[string]string{
			"name": "ticker",
		},
	}

	buf, _ := json.Marshal(msg)
	if err := conn.WriteMessage(websocket.TextMessage, buf); err != nil {
		return nil, fmt.Errorf("cannot subscribe to given tickers: %s", err)
	}
	return conn, nil
}
