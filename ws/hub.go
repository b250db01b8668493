package ws

// Hub bertanggung jawab untuk:
// - menyimpan koneksi client per user dashboard,
// - menerima hasil breakdown yang sudah diterapkan,
// - mengirimkannya ke semua koneksi milik user tersebut.

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client mewakili koneksi WebSocket milik satu user.
type Client struct {
	User string
	Conn Conn
	Send chan []byte
}

// Message adalah payload untuk semua client milik User.
type Message struct {
	User    string
	Payload []byte
}

// Hub mengelola semua koneksi client
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	log        *zap.Logger
	onIdle     func(user string)
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan Message, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// OnIdle memasang fn yang dipanggil dari Run ketika koneksi terakhir milik
// user terputus. Harus dipasang sebelum Run dijalankan.
func (h *Hub) OnIdle(fn func(user string)) {
	h.onIdle = fn
}

// Run melayani registrasi dan broadcast sampai ctx selesai, lalu menutup
// semua client yang tersisa.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		close(h.done)
		for client := range h.Clients {
			delete(h.Clients, client)
			close(client.Send)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case client := <-h.Register:
			h.Clients[client] = true
			h.log.Debug("client registered", zap.String("user", client.User))
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				h.remove(client)
				h.log.Debug("client unregistered", zap.String("user", client.User))
			}
		case msg := <-h.Broadcast:
			for client := range h.Clients {
				if client.User != msg.User {
					continue
				}
				select {
				case client.Send <- msg.Payload:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.Clients, client)
	close(client.Send)
	for other := range h.Clients {
		if other.User == client.User {
			return
		}
	}
	if h.onIdle != nil {
		h.onIdle(client.User)
	}
}

// Done ditutup ketika Run berhenti.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Publish mengirim v sebagai JSON ke semua koneksi user. Bila antrean penuh
// pesan dibuang; dashboard tetap bisa membaca hasil terakhir lewat HTTP.
func (h *Hub) Publish(user string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Error("cannot encode hub message", zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- Message{User: user, Payload: b}:
	default:
		h.log.Warn("hub broadcast queue full, dropping message", zap.String("user", user))
	}
}
