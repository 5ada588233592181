package archive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"inventory-bridge/core/storage"
)

// Entry describes one archived snapshot object.
type Entry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Service writes a copy of every saved inventory payload to object storage
// and serves the archived history back to operators. Archiving is strictly
// best-effort: a failed upload is logged and dropped, never surfaced to the
// sync that triggered it.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates a new archive service.
func NewService(client storage.Client, bucket string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, bucket: bucket, logger: logger}
}

// EnsureBucket creates the archive bucket when it does not exist yet.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check archive bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create archive bucket: %w", err)
	}
	s.logger.Info("Created archive bucket", zap.String("bucket", s.bucket))
	return nil
}

// ArchiveSnapshot uploads one payload under <player>/<server>/<nanos>.json.
func (s *Service) ArchiveSnapshot(ctx context.Context, player uuid.UUID, serverID, data string) {
	object := fmt.Sprintf("%s/%s/%d.json", player, serverID, time.Now().UnixNano())
	_, err := s.client.PutObject(ctx, s.bucket, object,
		strings.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		s.logger.Warn("Snapshot archive upload failed",
			zap.String("player", player.String()),
			zap.String("object", object),
			zap.Error(err))
		return
	}
	s.logger.Debug("Archived snapshot",
		zap.String("player", player.String()),
		zap.String("object", object))
}

// List returns the archived snapshots for one player, every server included.
func (s *Service) List(ctx context.Context, player uuid.UUID) ([]Entry, error) {
	entries := []Entry{}
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    player.String() + "/",
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("list archived snapshots: %w", obj.Err)
		}
		entries = append(entries, Entry{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return entries, nil
}

// Fetch returns the payload stored under key.
func (s *Service) Fetch(ctx context.Context, key string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("fetch archived snapshot: %w", err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("read archived snapshot: %w", err)
	}
	return string(data), nil
}

// Prune deletes archived snapshots for a player older than the cutoff.
func (s *Service) Prune(ctx context.Context, player uuid.UUID, before time.Time) (int, error) {
	entries, err := s.List(ctx, player)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if !e.LastModified.Before(before) {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, e.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("remove archived snapshot %s: %w", e.Key, err)
		}
		removed++
	}
	return removed, nil
}
