package admin

import (
	"context"

	"gorm.io/gorm"
)

// SignupApprover is the delegated external action behind the approval
// gate: it notifies the applicant and flips whatever pending state the
// signup workflow keeps. Its internals are not this service's concern;
// it only has to honor the transaction handle it is given so the whole
// approval can roll back as one unit.
type SignupApprover interface {
	Approve(ctx context.Context, tx *gorm.DB, token string) error
}

// ApproverFunc adapts a function to SignupApprover.
type ApproverFunc func(ctx context.Context, tx *gorm.DB, token string) error

func (f ApproverFunc) Approve(ctx context.Context, tx *gorm.DB, token string) error {
	return f(ctx, tx, token)
}
