// Package sessions contains handlers exposing the current session and its
// changes.
package sessions

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matt-dz/recetario/internal/api/render"
	"github.com/matt-dz/recetario/internal/api/token"
	"github.com/matt-dz/recetario/internal/env"
	"github.com/matt-dz/recetario/internal/session"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	handshakeTimeout = 10 * time.Second
	maxMessageSize   = 512
	sendBuffer       = 16
)

// currentState returns the session state of the request.
func currentState(r *http.Request) session.State {
	userID, err := token.UserIDFromCtx(r.Context())
	if err != nil {
		return session.Anonymous
	}
	state := session.State{Authenticated: true, UserID: userID}
	if claims, err := token.ClaimsFromCtx(r.Context()); err == nil {
		state.Email = claims.Email
	}
	return state
}

// HandleGetSession godoc
//
//	@Summary	Current session state.
//	@Tags		Session
//	@Produce	json
//	@Success	200	{object}	session.State
//	@Router		/api/session [get]
func HandleGetSession(w http.ResponseWriter, r *http.Request) {
	render.JSON(r.Context(), w, http.StatusOK, currentState(r))
}

func checkOrigin(e *env.Env) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		allowed := e.Config.HTTP.AllowedOrigins
		if len(allowed) == 0 {
			if !e.Production() {
				return true
			}
			allowed = []string{e.Config.HostOrigin}
		}
		return slices.Contains(allowed, origin)
	}
}

// HandleWatchSession godoc
//
//	@Summary		Watch session changes.
//	@Description	Upgrades to a websocket that first sends the current session state, then every
//	@Description	sign-in, sign-out and upload progress event of the user. Anonymous clients
//	@Description	receive the anonymous state and the connection is closed.
//	@Tags			Session
//	@Success		101
//	@Router			/api/session/watch [get]
func HandleWatchSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)

	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: handshakeTimeout,
		CheckOrigin:      checkOrigin(env),
	}
	env.Logger.DebugContext(ctx, "Upgrading connection")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request.
		env.Logger.ErrorContext(ctx, "Failed to upgrade connection", slog.Any("error", err))
		return
	}

	state := currentState(r)
	if !state.Authenticated {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(session.Event{Kind: session.KindSignedOut, State: &state})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "anonymous"))
		_ = conn.Close()
		return
	}

	wt := &watcher{conn: conn, send: make(chan session.Event, sendBuffer), done: make(chan struct{})}
	unsubscribe := env.Sessions.Subscribe(state.UserID, wt.deliver)
	defer unsubscribe()

	wt.deliver(session.Event{Kind: session.KindSignedIn, State: &state})
	go wt.readPump()
	if err := wt.writePump(); err != nil {
		env.Logger.DebugContext(ctx, "Session watcher closed", slog.Any("error", err))
	}
}

type watcher struct {
	conn *websocket.Conn
	send chan session.Event
	done chan struct{}
}

// deliver queues e, dropping it when the client is not keeping up.
func (wt *watcher) deliver(e session.Event) {
	select {
	case wt.send <- e:
	default:
	}
}

// readPump discards client messages and keeps the read deadline alive
// while pongs arrive. It closes done when the connection fails.
func (wt *watcher) readPump() {
	defer close(wt.done)
	wt.conn.SetReadLimit(maxMessageSize)
	if err := wt.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	wt.conn.SetPongHandler(func(string) error {
		return wt.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := wt.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (wt *watcher) writePump() error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = wt.conn.Close()
	}()

	for {
		select {
		case <-wt.done:
			return nil
		case e := <-wt.send:
			if err := wt.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := wt.conn.WriteJSON(e); err != nil {
				return err
			}
			if e.Kind == session.KindSignedOut {
				_ = wt.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "signed out"))
				return nil
			}
		case <-ticker.C:
			if err := wt.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := wt.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}
