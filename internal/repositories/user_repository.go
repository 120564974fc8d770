package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"authcore/internal/models"

	"github.com/lib/pq"
)

// ErrEmailTaken — уникальный индекс по email сработал при вставке.
var ErrEmailTaken = errors.New("email already taken")

type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id int) (*models.User, error)
	UpdatePassword(userID int, passwordHash string) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (full_name, email, password_hash, phone_number, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(q,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.Address,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		// два конкурентных sign-up с одним email: пусть проиграет второй
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	const q = `
		SELECT id, full_name, email, password_hash, phone_number, address, created_at
		FROM users
		WHERE email = $1
	`
	u := &models.User{}
	var (
		phone   sql.NullString
		address sql.NullString
	)
	err := r.DB.QueryRow(q, email).Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &phone, &address, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user get by email: %w", err)
	}
	if phone.Valid {
		u.PhoneNumber = phone.String
	}
	if address.Valid {
		u.Address = address.String
	}
	return u, nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	const q = `
		SELECT id, full_name, email, password_hash, phone_number, address, created_at
		FROM users
		WHERE id = $1
	`
	u := &models.User{}
	var (
		phone   sql.NullString
		address sql.NullString
	)
	err := r.DB.QueryRow(q, id).Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &phone, &address, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user get by id: %w", err)
	}
	if phone.Valid {
		u.PhoneNumber = phone.String
	}
	if address.Valid {
		u.Address = address.String
	}
	return u, nil
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	const q = `
		UPDATE users SET password_hash = $1 WHERE id = $2
	`
	if _, err := r.DB.Exec(q, passwordHash, userID); err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	return nil
}
