package admin

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrApprovalFailed = errors.New("signup approval failed")

type Service struct {
	db       *gorm.DB
	approver SignupApprover
}

func NewService(db *gorm.DB, approver SignupApprover) *Service {
	return &Service{db: db, approver: approver}
}

// ApproveSignup runs the delegated action inside one transaction:
// either the approval and its side-band state change commit together,
// or nothing persists. Authorization (authenticated superuser) is
// enforced by middleware before this is ever reached.
func (s *Service) ApproveSignup(ctx context.Context, token string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.approver.Approve(ctx, tx, token)
	})
	if err != nil {
		return errors.Join(ErrApprovalFailed, err)
	}
	return nil
}
