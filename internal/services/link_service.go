package services

import (
	"errors"

	"gorm.io/gorm"

	"pocketpilot/internal/database"
	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/models"
)

type linkService struct {
	db *gorm.DB
}

// NewLinkService creates a new LinkServicer.
func NewLinkService(db *gorm.DB) LinkServicer {
	return &linkService{db: db}
}

// CreateLink connects two of the owner's transactions.
func (s *linkService) CreateLink(userID string, in LinkInput) (*models.TransactionLink, error) {
	if in.SourceTransactionID == in.TargetTransactionID {
		return nil, apperrors.ErrSelfLink
	}
	if !validLinkType(in.LinkType) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported link type")
	}
	if _, err := findTransaction(s.db, userID, in.SourceTransactionID); err != nil {
		return nil, err
	}
	if _, err := findTransaction(s.db, userID, in.TargetTransactionID); err != nil {
		return nil, err
	}

	link := &models.TransactionLink{
		UserID:              userID,
		SourceTransactionID: in.SourceTransactionID,
		TargetTransactionID: in.TargetTransactionID,
		LinkType:            in.LinkType,
		Notes:               in.Notes,
	}
	if err := s.db.Create(link).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrLinkExists
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.findLink(userID, link.ID)
}

// GetTransactionLinks lists links in either direction for a transaction.
func (s *linkService) GetTransactionLinks(userID, transactionID string) ([]models.TransactionLink, error) {
	if _, err := findTransaction(s.db, userID, transactionID); err != nil {
		return nil, err
	}

	var links []models.TransactionLink
	if err := s.db.
		Preload("SourceTransaction").Preload("TargetTransaction").
		Where("user_id = ? AND (source_transaction_id = ? OR target_transaction_id = ?)", userID, transactionID, transactionID).
		Order("created_at ASC").
		Find(&links).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return links, nil
}

func (s *linkService) DeleteLink(userID, linkID string) error {
	result := s.db.Where("id = ? AND user_id = ?", linkID, userID).Delete(&models.TransactionLink{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLinkNotFound
	}
	return nil
}

func (s *linkService) findLink(userID, linkID string) (*models.TransactionLink, error) {
	var link models.TransactionLink
	if err := s.db.
		Preload("SourceTransaction").Preload("TargetTransaction").
		Where("id = ? AND user_id = ?", linkID, userID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &link, nil
}

func validLinkType(t models.LinkType) bool {
	switch t {
	case models.LinkTypeRefund, models.LinkTypeRelated, models.LinkTypePartialRefund, models.LinkTypeChargeback:
		return true
	}
	return false
}
