package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/klinik-dashboard/internal/manajemen/models"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

const ManagementCollection = "management"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
)

type ManagementService struct {
	Store docstore.ReadWriter
}

func NewManagementService(store docstore.ReadWriter) *ManagementService {
	return &ManagementService{Store: store}
}

// AuthenticateManagement memvalidasi login manajemen.
func (s *ManagementService) AuthenticateManagement(ctx context.Context, username, password string) (*models.Management, error) {
	m, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return m, nil
}

// CreateManagement menyimpan akun baru dengan password yang sudah di-hash.
func (s *ManagementService) CreateManagement(ctx context.Context, username, password, nama string) (*models.Management, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	existing, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	m := models.Management{
		Username:  username,
		Password:  string(hash),
		Nama:      nama,
		CreatedAt: time.Now(),
	}
	if m.ID, err = s.Store.Insert(ctx, ManagementCollection, m.Document()); err != nil {
		return nil, err
	}
	return &m, nil
}

// Koleksi management kecil, jadi dibaca utuh lalu dicocokkan di sini.
func (s *ManagementService) findByUsername(ctx context.Context, username string) (*models.Management, error) {
	docs, err := s.Store.Find(ctx, ManagementCollection)
	if err != nil {
		return nil, fmt.Errorf("load management accounts: %w", err)
	}
	for _, d := range docs {
		if m, ok := models.ManagementFromDocument(d); ok && m.Username == username {
			return &m, nil
		}
	}
	return nil, nil
}
