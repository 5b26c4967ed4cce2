package admin

import (
	"context"
	"log"

	"gorm.io/gorm"
)

// DevLogApprover stands in for the external signup workflow during
// local development: it only logs the approval.
type DevLogApprover struct{}

func (DevLogApprover) Approve(_ context.Context, _ *gorm.DB, token string) error {
	log.Printf("[DEV-APPROVER] signup request approved token=%s", token)
	return nil
}
