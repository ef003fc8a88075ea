package audit

import (
	"encoding/json"
	"fmt"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog records an audit entry. Pass the caller's transaction so the
// entry commits or rolls back together with the change it describes.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  encode(opts.Before),
		AfterData:   encode(opts.After),
	}

	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}
	return nil
}

func encode(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
