package ws

import (
	"errors"
	"net/http"
	"time"

	"github.com/festpos/api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	eventWriteTimeout = 10 * time.Second
	pongTimeout       = 60 * time.Second
	pingInterval      = pongTimeout * 9 / 10

	// Subscribers only answer pings, so inbound frames stay tiny.
	maxInboundBytes = 128

	// Events queued per subscriber before the hub drops it.
	subscriberBuffer = 64
)

// Print events are a few hundred bytes of JSON. The token query parameter is
// the credential, so any origin may open the feed.
var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  256,
	WriteBufferSize: 512,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Client is one subscriber to the print events of a single printer.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	printerID uuid.UUID
	send      chan []byte
}

// discardInbound keeps the read deadline moving on pongs and returns once the
// subscriber goes away. Any data frame it sends is ignored.
func (c *Client) discardInbound() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			zap.S().Warnw("print feed subscriber dropped", "printer_id", c.printerID, "error", err)
		}
		return
	}
}

// deliverEvents writes each queued event as its own text frame so a
// subscriber can decode frames one JSON object at a time.
func (c *Client) deliverEvents() {
	keepalive := time.NewTicker(pingInterval)
	defer func() {
		keepalive.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, open := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if !open {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "print feed closed"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
				return
			}
		case <-keepalive.C:
			c.conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var (
	errMissingToken     = errors.New("missing token")
	errInvalidToken     = errors.New("invalid token")
	errInvalidPrinterID = errors.New("invalid printer id")
)

// subscription resolves the printer a feed request is for. Any valid token
// may watch any printer.
func subscription(jwtSecret string, r *http.Request) (uuid.UUID, int, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		return uuid.Nil, http.StatusUnauthorized, errMissingToken
	}
	if _, err := auth.ValidateToken(jwtSecret, token); err != nil {
		return uuid.Nil, http.StatusUnauthorized, errInvalidToken
	}
	printerID, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		return uuid.Nil, http.StatusBadRequest, errInvalidPrinterID
	}
	return printerID, 0, nil
}

// ServeWS upgrades WS /ws/printers/{pid}?token=JWT into a print event feed.
func ServeWS(hub *Hub, jwtSecret string, w http.ResponseWriter, r *http.Request) {
	printerID, status, err := subscription(jwtSecret, r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("print feed upgrade failed", "printer_id", printerID, "error", err)
		return
	}

	c := &Client{hub: hub, conn: conn, printerID: printerID, send: make(chan []byte, subscriberBuffer)}
	hub.register <- c

	go c.deliverEvents()
	go c.discardInbound()
}
