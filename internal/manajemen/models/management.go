package models

import (
	"time"

	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

// Management mewakili akun manajemen di koleksi management.
type Management struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Nama      string    `json:"nama"`
	CreatedAt time.Time `json:"created_at"`
}

// ManagementFromDocument membaca akun dari dokumen; ok=false bila username
// atau hash password tidak ada.
func ManagementFromDocument(d docstore.Document) (Management, bool) {
	m := Management{ID: d.ID}
	m.Username, _ = d.String("username")
	m.Password, _ = d.String("password")
	m.Nama, _ = d.String("nama")
	if t, ok := d.Fields["createdAt"].(time.Time); ok {
		m.CreatedAt = t
	}
	return m, m.Username != "" && m.Password != ""
}

func (m Management) Document() docstore.Document {
	return docstore.Document{
		ID: m.ID,
		Fields: map[string]any{
			"username":  m.Username,
			"password":  m.Password,
			"nama":      m.Nama,
			"createdAt": m.CreatedAt,
		},
	}
}
