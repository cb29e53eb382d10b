package services

import (
	"errors"
	"strings"

	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errProjectNotFound   = response.NewNotFound("project not found")
	errPortfolioNotFound = response.NewNotFound("portfolio not found")
	errNotPortfolioOwner = response.NewForbidden("you do not own this portfolio")
	errLanguageNotFound  = response.NewNotFound("language not found")
)

// isUniqueViolation reports whether err is a uniqueness constraint failure.
// gorm translates it for mysql and postgres; the pure Go sqlite driver only
// reports it in the message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// forUpdate adds a row lock where the dialect supports one.
// SQLite serializes writers already and rejects FOR UPDATE.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// findOwnedProject loads a project owned by userID; anything else is a 404.
func findOwnedProject(tx *gorm.DB, userID, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := tx.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// findPortfolioBySlug loads a portfolio by slug, optionally locking it.
func findPortfolioBySlug(tx *gorm.DB, slug string, lock bool) (*models.Portfolio, error) {
	q := tx
	if lock {
		q = forUpdate(tx)
	}
	var portfolio models.Portfolio
	if err := q.Where("slug = ?", slug).First(&portfolio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPortfolioNotFound
		}
		return nil, err
	}
	return &portfolio, nil
}

// findOwnedPortfolio loads a portfolio by slug and checks ownership.
// Slugs are public, so a foreign portfolio answers 403 rather than 404.
func findOwnedPortfolio(tx *gorm.DB, userID uint, slug string, lock bool) (*models.Portfolio, error) {
	portfolio, err := findPortfolioBySlug(tx, slug, lock)
	if err != nil {
		return nil, err
	}
	if portfolio.UserID != userID {
		return nil, errNotPortfolioOwner
	}
	return portfolio, nil
}

// trimmedOrNil trims s and maps blank values to nil.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
