package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/c14220110/klinik-dashboard/internal/common/middlewares"
)

// Conn adalah bagian dari *websocket.Conn yang dipakai pump.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Sesuaikan policy CORS jika diperlukan
		return true
	},
}

// ServeWS meng-upgrade request yang sudah lolos JWTMiddleware dan mendaftarkan
// koneksinya atas nama user di klaim.
func ServeWS(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := middlewares.ClaimsFrom(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"status":  http.StatusUnauthorized,
				"message": "Missing or invalid JWT claims",
				"data":    nil,
			})
		}
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		hub.Attach(&Client{User: claims.Username, Conn: conn, Send: make(chan []byte, 16)})
		return nil
	}
}

// Attach mendaftarkan client dan menjalankan pump baca/tulis.
func (h *Hub) Attach(client *Client) {
	select {
	case h.Register <- client:
	case <-h.done:
		client.Conn.Close()
		return
	}
	go client.writePump()
	go client.readPump(h)
}

// readPump hanya mendeteksi koneksi putus; pesan dari client diabaikan.
func (c *Client) readPump(hub *Hub) {
	defer func() {
		select {
		case hub.Unregister <- c:
		case <-hub.done:
		}
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
	c.Conn.Close()
}
