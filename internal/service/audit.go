package service

import (
	"context"
	"log"

	"gopkg.in/guregu/null.v4"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/notify"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

// Mailer is the outcome-notification dispatcher consumed by the services.
// Implementations report delivery as a status, never as an error.
type Mailer interface {
	SendApproval(to, slotNumber string) notify.DeliveryStatus
	SendRejection(to, reason string) notify.DeliveryStatus
	SendOTP(to, code string) notify.DeliveryStatus
}

// recordAction appends one audit trail entry. Fire and forget: a failed
// append is logged and never surfaced to the caller.
func recordAction(ctx context.Context, logs repository.LogRepository, userID int, action string) {
	entry := &domain.LogEntry{Action: action}
	if userID != 0 {
		entry.UserID = null.IntFrom(int64(userID))
	}
	if err := logs.Create(ctx, entry); err != nil {
		log.Printf("failed to record audit entry %q: %v", action, err)
	}
}
