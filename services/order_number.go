package services

import (
	"fmt"
	"time"

	"github.com/teatime/teashop-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderNumberDayLayout = "20060102"

// FormatOrderNumber renders ORD-YYYYMMDD-NNN for the given day and counter
func FormatOrderNumber(day time.Time, counter int) string {
	return fmt.Sprintf("ORD-%s-%03d", day.Format(orderNumberDayLayout), counter)
}

// nextOrderNumber bumps the per-day counter and returns the new order number.
// It must run inside the placement transaction so the counter row stays locked
// until the order is committed.
func nextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	day := now.Format(orderNumberDayLayout)

	seq := models.OrderSequence{Day: day, LastValue: 1}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_value": gorm.Expr("order_sequences.last_value + 1"),
		}),
	}).Create(&seq).Error
	if err != nil {
		return "", fmt.Errorf("failed to advance order sequence: %w", err)
	}

	if err := tx.Where("day = ?", day).First(&seq).Error; err != nil {
		return "", fmt.Errorf("failed to read order sequence: %w", err)
	}

	return FormatOrderNumber(now, seq.LastValue), nil
}
