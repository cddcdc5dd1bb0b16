package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/models"
	"pocketpilot/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a category. Names are unique per owner, ignoring case.
func (s *categoryService) CreateCategory(userID string, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if err := s.ensureUniqueName(userID, name, ""); err != nil {
		return nil, err
	}

	categoryType := in.Type
	if categoryType == "" {
		categoryType = models.CategoryTypeExpense
	}

	category := &models.Category{
		UserID:       userID,
		Name:         name,
		Type:         categoryType,
		Color:        in.Color,
		Icon:         in.Icon,
		IsTaxRelated: in.IsTaxRelated,
		TaxTag:       in.TaxTag,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories lists categories, hiding archived ones unless asked.
func (s *categoryService) GetUserCategories(userID string, filter CategoryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	query := s.db.Model(&models.Category{}).Where("user_id = ?", userID)
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if !filter.IncludeArchived {
		query = query.Where("is_archived = ?", false)
	}
	query = query.Session(&gorm.Session{})

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := query.Order(page.OrderBy([]string{"name", "type", "created_at"}, "name ASC")).
		Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category owned by the user, archived or not.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	return findCategory(s.db, userID, categoryID)
}

// UpdateCategory applies the non-nil fields.
func (s *categoryService) UpdateCategory(userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error) {
	category, err := findCategory(s.db, userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		if !strings.EqualFold(name, category.Name) {
			if err := s.ensureUniqueName(userID, name, category.ID); err != nil {
				return nil, err
			}
		}
		updates["name"] = name
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}
	if fields.Icon != nil {
		updates["icon"] = *fields.Icon
	}
	if fields.IsTaxRelated != nil {
		updates["is_tax_related"] = *fields.IsTaxRelated
	}
	if fields.TaxTag != nil {
		updates["tax_tag"] = *fields.TaxTag
	}
	if fields.IsArchived != nil {
		updates["is_archived"] = *fields.IsArchived
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return findCategory(s.db, userID, categoryID)
}

// DeleteCategory removes a category. When transactions still reference it the
// category is archived instead so their history keeps its label. Budgets and
// rules for the category go away in both cases.
func (s *categoryService) DeleteCategory(userID, categoryID string) (bool, error) {
	category, err := findCategory(s.db, userID, categoryID)
	if err != nil {
		return false, err
	}

	var archived bool
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND category_id = ?", userID, category.ID).
			Count(&refs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Where("user_id = ? AND category_id = ?", userID, category.ID).
			Delete(&models.Budget{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("user_id = ? AND category_id = ?", userID, category.ID).
			Delete(&models.CategorizationRule{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := compactRuleOrder(tx, userID); err != nil {
			return err
		}
		if err := tx.Model(&models.RecurringTransaction{}).
			Where("user_id = ? AND category_id = ?", userID, category.ID).
			Update("category_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if refs > 0 {
			archived = true
			if err := tx.Model(category).Update("is_archived", true).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		}

		if err := tx.Unscoped().Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return archived, nil
}

func (s *categoryService) ensureUniqueName(userID, name, exceptID string) error {
	query := s.db.Model(&models.Category{}).Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name))
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

func findCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// ensureCategory validates an optional category reference. Archived
// categories cannot receive new assignments.
func ensureCategory(db *gorm.DB, userID string, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	category, err := findCategory(db, userID, *categoryID)
	if err != nil {
		return err
	}
	if category.IsArchived {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is archived")
	}
	return nil
}
