package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"strings"
	"time"

	"finledger/internal/domain"
	"finledger/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var codeRegex = regexp.MustCompile(`^\d{6}$`)

// RequestReset issues a fresh 6-digit code for the account and mails
// it. Unknown email is a NotFound, not a masked success. The code row
// is durable before the mailer runs; a delivery failure surfaces as a
// hard error while the row stays, so a retry re-mails a newer code.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return err
	}

	now := time.Now()
	if err := s.resetCodes.Create(ctx, &domain.PasswordResetCode{
		UserID:    user.ID,
		CodeHash:  hashWithPepper(code, s.resetCodePepper),
		CreatedAt: now,
		ExpiresAt: now.Add(s.resetCodeTTL),
	}); err != nil {
		return err
	}

	mailCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	if mailErr := s.mailer.SendResetCode(mailCtx, user.Email, code); mailErr != nil {
		log.Printf("reset/request: delivery failed user_id=%d err=%v", user.ID, mailErr)
		return fmt.Errorf("%w: %v", ErrMailDelivery, mailErr)
	}

	return nil
}

// VerifyResetCode is read-only: it reports whether the newest code row
// matching (user, code) is still usable, and consumes nothing.
func (s *Service) VerifyResetCode(ctx context.Context, email, code string) (bool, error) {
	if !codeRegex.MatchString(code) {
		return false, nil
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	row, err := s.resetCodes.FindLatestByUserAndHash(ctx, user.ID, hashWithPepper(code, s.resetCodePepper))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return row.IsValid(time.Now()), nil
}

// ConfirmReset is all-or-nothing: the new password hash, the bulk
// revocation of every outstanding session and the consumption of the
// code commit together or not at all. A reset on a possibly
// compromised account must not leave old sessions alive.
func (s *Service) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	if !codeRegex.MatchString(code) {
		return ErrInvalidResetCode
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// bcrypt is CPU-bound; hash before entering the transaction so no
	// row lock is held during it.
	newHash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	codeHash := hashWithPepper(code, s.resetCodePepper)
	now := time.Now()

	return s.users.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		row, err := repository.FindLatestByUserAndHashTx(q, user.ID, codeHash)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidResetCode
			}
			return err
		}
		if !row.IsValid(now) {
			return ErrInvalidResetCode
		}

		if err := s.users.UpdatePasswordHash(tx, user.ID, newHash); err != nil {
			return err
		}

		if err := repository.RevokeAllByUserTx(tx, user.ID); err != nil {
			return err
		}

		// Delete-on-success is the single-winner gate: a concurrent
		// confirm racing on the same code finds zero rows here and the
		// whole transaction rolls back.
		affected, err := repository.DeleteByIDTx(tx, row.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidResetCode
		}

		return nil
	})
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
