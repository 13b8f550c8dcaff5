package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"sweetshop/constants"
	"sweetshop/dto"
)

// Session ベアラートークンとログイン中のユーザーを保持する
// 起動時に Load、ログイン・登録時に Set、ログアウト時に Clear を呼ぶ
// path が空の場合はメモリ上にのみ保持する
type Session struct {
	mu    sync.RWMutex
	path  string
	token string
	user  *dto.UserResponse
}

type sessionFile struct {
	Token string           `json:"token"`
	User  dto.UserResponse `json:"user"`
}

func NewSession(path string) *Session {
	return &Session{path: path}
}

func (s *Session) Load() error {
	if s.path == "" {
		return nil
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = f.Token
	s.user = &f.User
	return nil
}

func (s *Session) Set(token string, user dto.UserResponse) error {
	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	b, err := json.Marshal(sessionFile{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (dto.UserResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return dto.UserResponse{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Session) IsAdmin() bool {
	user, ok := s.User()
	return ok && user.Role == constants.RoleAdmin
}
