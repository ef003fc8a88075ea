package report

import (
	"fmt"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func parseDay(c *fiber.Ctx, key string) (time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, apperr.Validation("%s must be YYYY-MM-DD", key)
	}
	return t, nil
}

// GET /api/reports/orders.xlsx?from=2026-01-01&to=2026-02-01
// "to" is exclusive.
func OrdersXLSXHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := parseDay(c, "from")
		if err != nil {
			return err
		}
		to, err := parseDay(c, "to")
		if err != nil {
			return err
		}
		if !from.IsZero() && !to.IsZero() && !to.After(from) {
			return apperr.Validation("to must be after from")
		}

		rows, err := OrderRows(c.UserContext(), db, Period{From: from, To: to})
		if err != nil {
			return err
		}
		buf, err := OrdersWorkbook(rows)
		if err != nil {
			return apperr.Internal(err, "could not build report")
		}

		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="orders-%s.xlsx"`, time.Now().Format("20060102")))
		return c.Send(buf.Bytes())
	}
}
