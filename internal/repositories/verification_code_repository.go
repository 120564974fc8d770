package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"authcore/internal/models"

	"github.com/google/uuid"
)

type VerificationCodeRepository interface {
	Create(userID int, code, codeType string) (*models.VerificationCode, error)
	GetLatestByUserID(userID int) (*models.VerificationCode, error)
	// Consume удаляет код атомарно (сравнение в самом DELETE).
	// false — запись уже исчезла или код не совпал.
	Consume(id string, code string) (bool, error)
}

type verificationCodeRepository struct {
	DB *sql.DB
}

func NewVerificationCodeRepository(db *sql.DB) VerificationCodeRepository {
	return &verificationCodeRepository{DB: db}
}

func (r *verificationCodeRepository) Create(userID int, code, codeType string) (*models.VerificationCode, error) {
	const q = `
		INSERT INTO verification_codes (id, user_id, code, type)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	vc := &models.VerificationCode{
		ID:     uuid.NewString(),
		UserID: userID,
		Code:   code,
		Type:   codeType,
	}
	if err := r.DB.QueryRow(q, vc.ID, vc.UserID, vc.Code, vc.Type).Scan(&vc.CreatedAt); err != nil {
		return nil, fmt.Errorf("verification code create: %w", err)
	}
	return vc, nil
}

// GetLatestByUserID — берём последнюю отправку (по created_at DESC).
func (r *verificationCodeRepository) GetLatestByUserID(userID int) (*models.VerificationCode, error) {
	const q = `
		SELECT id, user_id, code, type, created_at
		FROM verification_codes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	vc := &models.VerificationCode{}
	err := r.DB.QueryRow(q, userID).Scan(&vc.ID, &vc.UserID, &vc.Code, &vc.Type, &vc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("verification code latest: %w", err)
	}
	return vc, nil
}

func (r *verificationCodeRepository) Consume(id string, code string) (bool, error) {
	const q = `
		DELETE FROM verification_codes WHERE id = $1 AND code = $2
	`
	res, err := r.DB.Exec(q, id, code)
	if err != nil {
		return false, fmt.Errorf("verification code consume: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("verification code consume: %w", err)
	}
	return n == 1, nil
}
