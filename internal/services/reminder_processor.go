package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"aisle/internal/amqp"
	apperrors "aisle/internal/errors"
	"aisle/internal/logger"
	"aisle/internal/models"
)

// ReminderProcessor scans the ledger for unpaid payments falling due
// and publishes one reminder per payment. With no publisher configured
// it degrades to log-only operation.
type ReminderProcessor struct {
	db        *gorm.DB
	publisher ReminderPublisher
	window    time.Duration
}

// NewReminderProcessor creates a reminder processor. publisher may be
// nil for log-only operation.
func NewReminderProcessor(db *gorm.DB, publisher ReminderPublisher, window time.Duration) *ReminderProcessor {
	return &ReminderProcessor{db: db, publisher: publisher, window: window}
}

// ProcessDuePayments finds every unpaid payment with a due date inside
// the window and publishes a reminder for it. It returns the number of
// reminders published; a publish failure for one payment does not stop
// the rest.
func (p *ReminderProcessor) ProcessDuePayments(ctx context.Context) (int, error) {
	log := logger.Get()
	cutoff := time.Now().Add(p.window)

	var payments []models.Payment
	if err := p.db.WithContext(ctx).
		Preload("Node").
		Preload("Vendor").
		Where("kind = ? AND paid_at IS NULL AND due_date IS NOT NULL AND due_date <= ?", models.PaymentKindPayment, cutoff).
		Order("due_date ASC").
		Find(&payments).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(payments) == 0 {
		log.Debugw("no payments due within window", "window", p.window.String())
		return 0, nil
	}

	published := 0
	for _, payment := range payments {
		vendorName := ""
		if payment.Vendor != nil {
			vendorName = payment.Vendor.Name
		}
		msg := amqp.NewPaymentReminderMessage(
			payment.ID,
			payment.ScenarioID,
			payment.Node.Name,
			vendorName,
			payment.Amount,
			*payment.DueDate,
		)

		if p.publisher == nil {
			log.Infow("payment due (log-only, no broker configured)",
				"payment_id", msg.PaymentID,
				"node", msg.NodeName,
				"amount", msg.Amount.String(),
				"due_date", msg.DueDate.Format(time.RFC3339),
			)
			published++
			continue
		}

		if err := p.publisher.PublishReminder(ctx, msg); err != nil {
			log.Errorw("failed to publish payment reminder", "payment_id", msg.PaymentID, "error", err)
			continue
		}
		published++
	}

	log.Infow("processed due payments", "due", len(payments), "published", published)
	return published, nil
}
