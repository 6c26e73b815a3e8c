package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ByLCY/storeshot/model"
)

// ErrNotFound 表示 blob 不存在。
var ErrNotFound = errors.New("asset not found")

// Kind 是资源键的命名空间前缀。
type Kind string

const (
	KindScreenshot Kind = "screenshot-"
	KindBackground Kind = "bg-image-"
)

// Blobs 是底层键值存储。
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// CanonicalKey 返回 ref 的规范键：恰好带一个 kind 前缀。
// ref 本身可以带或不带前缀，重复的前缀会被去掉。
func CanonicalKey(kind Kind, ref string) string {
	return string(kind) + stripPrefix(kind, ref)
}

// legacyKey 是旧版本写入的双前缀键（例如 bg-image-bg-image-<id>）。
func legacyKey(kind Kind, ref string) string {
	return string(kind) + CanonicalKey(kind, ref)
}

func stripPrefix(kind Kind, ref string) string {
	for strings.HasPrefix(ref, string(kind)) {
		ref = strings.TrimPrefix(ref, string(kind))
	}
	return ref
}

// Store 按幻灯片引用读写截图与背景图。
type Store struct {
	blobs  Blobs
	logger *slog.Logger
}

// NewStore 包装一个 Blobs 实现；logger 为 nil 时使用 slog.Default()。
func NewStore(blobs Blobs, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{blobs: blobs, logger: logger}
}

// Get 读取 ref 对应的字节。规范键不存在而旧的双前缀键存在时，
// 会把数据迁移到规范键并删除旧键。
func (s *Store) Get(ctx context.Context, kind Kind, ref string) ([]byte, error) {
	if stripPrefix(kind, ref) == "" {
		return nil, fmt.Errorf("%w: 空引用", ErrNotFound)
	}
	key := CanonicalKey(kind, ref)
	data, err := s.blobs.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("读取 %s 失败: %w", key, err)
	}

	old := legacyKey(kind, ref)
	data, err = s.blobs.Get(ctx, old)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("读取 %s 失败: %w", old, err)
	}
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("迁移 %s 失败: %w", old, err)
	}
	if err := s.blobs.Delete(ctx, old); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("删除旧资源键失败", "key", old, "err", err)
	}
	s.logger.Info("迁移旧资源键", "from", old, "to", key)
	return data, nil
}

// Put 以规范键写入 ref 的数据。
func (s *Store) Put(ctx context.Context, kind Kind, ref string, data []byte) error {
	if stripPrefix(kind, ref) == "" {
		return fmt.Errorf("写入资源: 空引用")
	}
	return s.blobs.Put(ctx, CanonicalKey(kind, ref), data)
}

// Save 以新生成的 ref 写入数据并返回该 ref。
// 截图 ref 为裸 uuid，背景图 ref 带 bg-image- 前缀。
func (s *Store) Save(ctx context.Context, kind Kind, data []byte) (string, error) {
	ref := uuid.NewString()
	if kind == KindBackground {
		ref = string(kind) + ref
	}
	if err := s.Put(ctx, kind, ref, data); err != nil {
		return "", err
	}
	return ref, nil
}

// Delete 删除 ref 的规范键与旧键，不存在时不报错。
func (s *Store) Delete(ctx context.Context, kind Kind, ref string) error {
	if stripPrefix(kind, ref) == "" {
		return nil
	}
	for _, key := range []string{CanonicalKey(kind, ref), legacyKey(kind, ref)} {
		if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("删除 %s 失败: %w", key, err)
		}
	}
	return nil
}

// DeleteOrphans 删除 Project.DeleteSlide 返回的不再被引用的资源。
func (s *Store) DeleteOrphans(ctx context.Context, refs model.OrphanedRefs) error {
	if refs.Screenshot != "" {
		if err := s.Delete(ctx, KindScreenshot, refs.Screenshot); err != nil {
			return err
		}
		s.logger.Debug("删除孤立截图", "ref", refs.Screenshot)
	}
	if refs.BackgroundImage != "" {
		if err := s.Delete(ctx, KindBackground, refs.BackgroundImage); err != nil {
			return err
		}
		s.logger.Debug("删除孤立背景图", "ref", refs.BackgroundImage)
	}
	return nil
}
