package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gatherly/gatherly/internal/models"
)

type sessionStore struct {
	db *gorm.DB
}

func (s *sessionStore) Create(ctx context.Context, session *models.Session) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("session store: create: %w", err)
	}
	return nil
}

func (s *sessionStore) FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).Take(&session, "token_hash = ?", tokenHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session store: find by token hash: %w", err)
	}
	return &session, nil
}

func (s *sessionStore) FindActiveByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Take(&session, "token_hash = ? AND is_valid = ? AND expires_at > ?", tokenHash, true, now).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session store: find active by token hash: %w", err)
	}
	return &session, nil
}

func (s *sessionStore) Invalidate(ctx context.Context, tokenHash string) (int64, error) {
	// Idempotent: zero affected rows (unknown or already-invalid hash) is fine.
	result := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("token_hash = ? AND is_valid = ?", tokenHash, true).
		Update("is_valid", false)
	if result.Error != nil {
		return 0, fmt.Errorf("session store: invalidate: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *sessionStore) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("is_valid = ? AND expires_at > ?", true, now).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("session store: count active: %w", err)
	}
	return count, nil
}

func (s *sessionStore) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Or("is_valid = ?", false).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session store: cleanup expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}
