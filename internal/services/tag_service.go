package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pocketpilot/internal/database"
	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/models"
)

type tagService struct {
	db *gorm.DB
}

// NewTagService creates a new TagServicer.
func NewTagService(db *gorm.DB) TagServicer {
	return &tagService{db: db}
}

func (s *tagService) CreateTag(userID, name, color string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tag name is required")
	}

	tag := &models.Tag{UserID: userID, Name: name, Color: color}
	if err := s.db.Create(tag).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateTag
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

func (s *tagService) GetUserTags(userID string) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}

func (s *tagService) UpdateTag(userID, tagID string, name, color *string) (*models.Tag, error) {
	tag, err := findTag(s.db, userID, tagID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tag name cannot be empty")
		}
		updates["name"] = trimmed
	}
	if color != nil {
		updates["color"] = *color
	}
	if len(updates) > 0 {
		if err := s.db.Model(tag).Updates(updates).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return nil, apperrors.ErrDuplicateTag
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return findTag(s.db, userID, tagID)
}

// DeleteTag removes the tag and detaches it from every transaction.
func (s *tagService) DeleteTag(userID, tagID string) error {
	tag, err := findTag(s.db, userID, tagID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.TransactionTag{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(tag).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func (s *tagService) AttachTag(userID, transactionID, tagID string) error {
	if _, err := findTransaction(s.db, userID, transactionID); err != nil {
		return err
	}
	return attachTag(s.db, userID, transactionID, tagID)
}

func (s *tagService) DetachTag(userID, transactionID, tagID string) error {
	if _, err := findTransaction(s.db, userID, transactionID); err != nil {
		return err
	}
	if _, err := findTag(s.db, userID, tagID); err != nil {
		return err
	}
	if err := s.db.Where("transaction_id = ? AND tag_id = ?", transactionID, tagID).
		Delete(&models.TransactionTag{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// attachTag links a tag to a transaction; attaching twice is a no-op.
func attachTag(db *gorm.DB, userID, transactionID, tagID string) error {
	if _, err := findTag(db, userID, tagID); err != nil {
		return err
	}
	join := &models.TransactionTag{TransactionID: transactionID, TagID: tagID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(join).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func findTag(db *gorm.DB, userID, tagID string) (*models.Tag, error) {
	var tag models.Tag
	if err := db.Where("id = ? AND user_id = ?", tagID, userID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tag, nil
}
