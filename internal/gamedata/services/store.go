package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-guildsync/internal/gamedata/models"
	"go-guildsync/pkg/database"
)

const (
	// CacheFileName is the snapshot file inside the data directory
	CacheFileName = "game_data.json"
	// RedisKey holds the snapshot when Redis is the store
	RedisKey = "guildsync:gamedata"
)

// Store persists game data snapshots
type Store interface {
	Load(ctx context.Context) (*models.GameData, error)
	Save(ctx context.Context, data *models.GameData) error
	Name() string
}

// FileStore keeps the snapshot as a JSON file
type FileStore struct {
	path string
}

func NewFileStore(dataDir string) *FileStore {
	return &FileStore{path: filepath.Join(dataDir, CacheFileName)}
}

func (s *FileStore) Name() string {
	return "file"
}

// Path returns the snapshot file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*models.GameData, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var gd models.GameData
	if err := json.Unmarshal(data, &gd); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return &gd, nil
}

// Save writes to a temp file and renames it over the snapshot
func (s *FileStore) Save(ctx context.Context, gd *models.GameData) error {
	data, err := json.Marshal(gd)
	if err != nil {
		return fmt.Errorf("failed to marshal game data: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), CacheFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write game data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// RedisStore keeps the snapshot as JSON in Redis without expiry
type RedisStore struct {
	redis *database.Redis
	key   string
}

func NewRedisStore(redis *database.Redis) *RedisStore {
	return &RedisStore{redis: redis, key: RedisKey}
}

func (s *RedisStore) Name() string {
	return "redis"
}

func (s *RedisStore) Load(ctx context.Context) (*models.GameData, error) {
	var gd models.GameData
	if err := s.redis.GetJSON(ctx, s.key, &gd); err != nil {
		return nil, fmt.Errorf("failed to load game data from redis: %w", err)
	}
	return &gd, nil
}

func (s *RedisStore) Save(ctx context.Context, gd *models.GameData) error {
	if err := s.redis.SetJSON(ctx, s.key, gd, 0); err != nil {
		return fmt.Errorf("failed to save game data to redis: %w", err)
	}
	return nil
}
