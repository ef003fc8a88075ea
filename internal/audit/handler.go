package audit

import (
	"strconv"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	BeforeData  string             `json:"before_data"`
	AfterData   string             `json:"after_data"`
}

// GET /api/audit-logs?entity_type=order&entity_id=1&user_id=2
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.WithContext(c.UserContext()).Model(&models.AuditLog{})

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if id, err := strconv.ParseUint(c.Query("entity_id"), 10, 64); err == nil && id > 0 {
			dbq = dbq.Where("entity_id = ?", id)
		}
		if id, err := strconv.ParseUint(c.Query("user_id"), 10, 64); err == nil && id > 0 {
			dbq = dbq.Where("user_id = ?", id)
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC, id DESC").Limit(500).Find(&logs).Error; err != nil {
			return apperr.Internal(err, "could not list audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				BeforeData:  l.BeforeData,
				AfterData:   l.AfterData,
			})
		}
		return c.JSON(resp)
	}
}
