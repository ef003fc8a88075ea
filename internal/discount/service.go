package discount

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/metrics"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"gorm.io/gorm"
)

type CreateInput struct {
	Code       string    `json:"code"`
	PercentOff int       `json:"percent_off"`
	ExpiresAt  time.Time `json:"expires_at"`
	MaxUse     int       `json:"max_use"`
	Active     *bool     `json:"active"`
}

type UpdateInput struct {
	PercentOff *int       `json:"percent_off"`
	ExpiresAt  *time.Time `json:"expires_at"`
	MaxUse     *int       `json:"max_use"`
	Active     *bool      `json:"active"`
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func Create(ctx context.Context, db *gorm.DB, in CreateInput, now time.Time) (*models.DiscountCode, error) {
	code := normalizeCode(in.Code)
	if code == "" {
		return nil, apperr.Validation("code is required")
	}
	if in.PercentOff < 1 || in.PercentOff > 100 {
		return nil, apperr.Validation("percent_off must be between 1 and 100")
	}
	if in.MaxUse < 1 {
		return nil, apperr.Validation("max_use must be at least 1")
	}
	if !in.ExpiresAt.After(now) {
		return nil, apperr.Validation("expires_at must be in the future")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.DiscountCode{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if count > 0 {
		return nil, apperr.Validation("discount code already exists")
	}

	d := &models.DiscountCode{
		Code:       code,
		PercentOff: in.PercentOff,
		ExpiresAt:  in.ExpiresAt,
		Active:     in.Active == nil || *in.Active,
		MaxUse:     in.MaxUse,
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return d, nil
}

func Update(ctx context.Context, db *gorm.DB, id uint, in UpdateInput) (*models.DiscountCode, error) {
	var d models.DiscountCode
	if err := db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, apperr.FromDB(err, "discount code not found")
	}

	updates := map[string]any{}
	if in.PercentOff != nil {
		if *in.PercentOff < 1 || *in.PercentOff > 100 {
			return nil, apperr.Validation("percent_off must be between 1 and 100")
		}
		updates["percent_off"] = *in.PercentOff
	}
	if in.MaxUse != nil {
		if *in.MaxUse < 1 {
			return nil, apperr.Validation("max_use must be at least 1")
		}
		updates["max_use"] = *in.MaxUse
	}
	if in.ExpiresAt != nil {
		updates["expires_at"] = *in.ExpiresAt
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if len(updates) == 0 {
		return &d, nil
	}

	if err := db.WithContext(ctx).Model(&d).Updates(updates).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if err := db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, apperr.FromDB(err, "discount code not found")
	}
	return &d, nil
}

func List(ctx context.Context, db *gorm.DB) ([]models.DiscountCode, error) {
	var codes []models.DiscountCode
	if err := db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&codes).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return codes, nil
}

// Lookup returns the code and whether it can be applied at now.
func Lookup(ctx context.Context, db *gorm.DB, code string, now time.Time) (*models.DiscountCode, bool, error) {
	var d models.DiscountCode
	if err := db.WithContext(ctx).Where("code = ?", normalizeCode(code)).First(&d).Error; err != nil {
		return nil, false, apperr.FromDB(err, "discount code not found")
	}
	return &d, d.IsValid(now), nil
}

// Claim consumes one use of code inside tx. The increment is a single
// guarded UPDATE, so two concurrent claims can never both take the last use;
// the loser gets a Conflict and should roll back its transaction.
func Claim(tx *gorm.DB, code string, now time.Time) (*models.DiscountCode, error) {
	var d models.DiscountCode
	err := tx.Where("code = ?", normalizeCode(code)).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.DiscountClaims.WithLabelValues("unknown").Inc()
		return nil, apperr.Validation("discount code does not exist")
	}
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if !d.IsValid(now) {
		metrics.DiscountClaims.WithLabelValues("invalid").Inc()
		return nil, apperr.Validation("discount code is not valid")
	}

	res := tx.Model(&models.DiscountCode{}).
		Where("id = ? AND active = ? AND used_count < max_use", d.ID, true).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return nil, apperr.FromDB(res.Error, "")
	}
	if res.RowsAffected == 0 {
		metrics.DiscountClaims.WithLabelValues("exhausted").Inc()
		return nil, apperr.Conflict("discount code usage limit reached")
	}

	metrics.DiscountClaims.WithLabelValues("claimed").Inc()
	d.UsedCount++
	return &d, nil
}
