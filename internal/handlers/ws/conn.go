package ws

import (
	"strconv"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/w0nsdoof/diplomatch/internal/realtime"
	"github.com/w0nsdoof/diplomatch/params"
)

// UpgradeRequired rejects plain HTTP requests on websocket routes.
func UpgradeRequired(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// authenticateConn verifies the access token passed as a query parameter. The
// connection is always accepted first; a bad token gets a policy violation
// close frame so browser clients can observe the reason.
func authenticateConn(conn *websocket.Conn, verifier TokenVerifier) (uint, bool) {
	claims, err := verifier.VerifyAccess(conn.Query("token"))
	if err != nil {
		closeWithPolicyViolation(conn, "invalid token")
		return 0, false
	}
	userID, err := claims.UserID()
	if err != nil {
		closeWithPolicyViolation(conn, "invalid token")
		return 0, false
	}
	return userID, true
}

func closeWithPolicyViolation(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteMessage(websocket.CloseMessage, msg)
	_ = conn.Close()
}

func paramUint(conn *websocket.Conn, name string) (uint, error) {
	val, err := strconv.ParseUint(conn.Params(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(val), nil
}

// writeLoop drains the session outbox onto the wire. It exits when the
// session is unsubscribed and its outbox closed.
func writeLoop(conn *websocket.Conn, session *realtime.Session) {
	for payload := range session.Out() {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// readFrame reads one frame, allowing the client two heartbeat intervals of
// silence before the connection is considered dead.
func readFrame(conn *websocket.Conn) ([]byte, error) {
	if err := conn.SetReadDeadline(time.Now().Add(2 * params.HeartbeatInterval)); err != nil {
		return nil, err
	}
	_, payload, err := conn.ReadMessage()
	return payload, err
}
