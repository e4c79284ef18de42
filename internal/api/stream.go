// ABOUTME: WebSocket streams of the live day summary and the weight series.
// ABOUTME: The underlying subscriptions are released when the client goes away.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// StreamMessage is one frame sent to a stream client.
type StreamMessage struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

// StreamDay pushes the day summary on connect and after every change.
func (a *API) StreamDay(w http.ResponseWriter, r *http.Request) {
	userID, date, err := a.dayParams(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, err := a.agg.WatchDay(ctx, userID, date)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	a.logger.Debug("day stream connected", "user", userID, "date", date)

	go a.readUntilClosed(conn, cancel)

	for sum := range updates {
		if err := a.send(conn, StreamMessage{Action: "summary", Data: sum}); err != nil {
			a.logger.Debug("day stream write failed", "err", err)
			return
		}
	}
	a.closeStream(conn)
}

// StreamProgress pushes the ordered weight series on connect and after every weigh-in.
func (a *API) StreamProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := a.userID()
	if err != nil {
		a.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, err := a.reader.Watch(ctx, userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	a.logger.Debug("progress stream connected", "user", userID)

	go a.readUntilClosed(conn, cancel)

	for series := range updates {
		if err := a.send(conn, StreamMessage{Action: "progress", Data: newProgressResponse(series)}); err != nil {
			a.logger.Debug("progress stream write failed", "err", err)
			return
		}
	}
	a.closeStream(conn)
}

// readUntilClosed drains client frames and cancels once the client disconnects.
func (a *API) readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (a *API) send(conn *websocket.Conn, msg StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (a *API) closeStream(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
