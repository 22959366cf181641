package server

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sessiondeck/internal/system"
	"sessiondeck/internal/terminal"
)

const (
	termPollInterval = 50 * time.Millisecond
	defaultCols      = 120
	defaultRows      = 32
)

// wsUpgrader upgrades HTTP connections to WebSocket.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     allowedOrigin,
}

// controlMsg is a JSON control frame sent by the client.
type controlMsg struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
	Data string `json:"data"`
}

// terminalWS opens an embedded terminal and bridges it over WebSocket.
//
// Query: session (resume it, optional), dir, cols, rows.
// Client frames are raw input, or JSON {"type":"resize","cols":n,"rows":n}
// and {"type":"input","data":"..."}. The server sends the screen text
// whenever it changed and closes the socket when the child exits.
func (s *Server) terminalWS(c *gin.Context) {
	q := c.Request.URL.Query()
	cols, rows := atoiOr(q.Get("cols"), defaultCols), atoiOr(q.Get("rows"), defaultRows)

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		system.Logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	opts := []terminal.Option{terminal.WithConfig(s.Config)}
	session, dir := q.Get("session"), q.Get("dir")
	if session == "" && dir != "" {
		opts = append(opts, terminal.WithDir(dir))
	}
	sess, err := terminal.New(cols, rows, opts...)
	if err != nil {
		closeWith(conn, websocket.CloseInternalServerErr, err.Error())
		return
	}
	defer sess.Close()
	if session != "" {
		err = sess.SpawnResume(dir, session)
	} else {
		err = sess.SpawnNew()
	}
	if err != nil {
		closeWith(conn, websocket.ClosePolicyViolation, err.Error())
		return
	}
	system.Logger.Info("web terminal opened", "pid", sess.PID(), "session", session)

	go pumpScreen(conn, sess)

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		var cm controlMsg
		if json.Unmarshal(data, &cm) == nil && cm.Type != "" {
			switch {
			case cm.Type == "resize" && cm.Cols > 0 && cm.Rows > 0:
				if err := sess.Resize(cm.Cols, cm.Rows); err != nil {
					system.Logger.Debug("web terminal resize", "err", err)
				}
				continue
			case cm.Type == "input":
				data = []byte(cm.Data)
			}
		}
		if len(data) == 0 {
			continue
		}
		if err := sess.Write(data); err != nil {
			system.Logger.Debug("web terminal write", "err", err)
			return
		}
	}
}

// pumpScreen is the only writer on conn. It sends the screen text on
// every change and a close frame once the session ends.
func pumpScreen(conn *websocket.Conn, sess *terminal.Session) {
	t := time.NewTicker(termPollInterval)
	defer t.Stop()
	var sent uint64
	send := func() bool {
		v := sess.Version()
		if v == sent {
			return true
		}
		sent = v
		return conn.WriteMessage(websocket.TextMessage, []byte(sess.Snapshot().Text())) == nil
	}
	for {
		select {
		case <-sess.Done():
			send()
			closeWith(conn, websocket.CloseNormalClosure, "session ended")
			return
		case <-t.C:
			if !send() {
				return
			}
		}
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func atoiOr(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}
