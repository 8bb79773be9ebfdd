package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"accountsvc/internal/models"
)

// ErrDuplicateEmail is returned by Create when the unique index on
// users.email rejects the insert.
var ErrDuplicateEmail = errors.New("email already exists")

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetVerifiedByEmail returns sql.ErrNoRows both when the email is
	// unknown and when the account has not completed verification.
	GetVerifiedByEmail(email string) (*models.User, error)

	// verification state
	SetOTP(email, otp string, expiresAt time.Time) error
	MarkVerified(email string) error

	// credential and profile updates
	UpdatePasswordByEmail(email, passwordHash string) error
	UpdatePasswordByID(id int, passwordHash string) error
	UpdateProfile(id int, name, email, role string) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, name, email, password_hash, role,
	otp, otp_expires_at, otp_verify_status,
	remember_token, created_at, updated_at, deleted_at
`

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (name, email, password_hash, role, otp, otp_expires_at, otp_verify_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(q,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.OTP,
		user.OTPExpiresAt,
		user.OTPVerifyStatus,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	return r.scanOne(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.scanOne(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetVerifiedByEmail(email string) (*models.User, error) {
	return r.scanOne(
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND otp_verify_status = $2`,
		email, models.OTPStatusVerified,
	)
}

func (r *userRepository) scanOne(q string, args ...any) (*models.User, error) {
	u := &models.User{}
	var (
		otp       sql.NullString
		otpExp    sql.NullTime
		remember  sql.NullString
		deletedAt sql.NullTime
	)
	err := r.DB.QueryRow(q, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&otp, &otpExp, &u.OTPVerifyStatus,
		&remember, &u.CreatedAt, &u.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if otp.Valid {
		u.OTP = otp.String
	}
	if otpExp.Valid {
		t := otpExp.Time
		u.OTPExpiresAt = &t
	}
	if remember.Valid {
		s := remember.String
		u.RememberToken = &s
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return u, nil
}

// ===== verification helpers =====

func (r *userRepository) SetOTP(email, otp string, expiresAt time.Time) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET otp=$1, otp_expires_at=$2, otp_verify_status=$3, updated_at=NOW()
		WHERE email=$4
	`, otp, expiresAt, models.OTPStatusPending, email)
	return err
}

func (r *userRepository) MarkVerified(email string) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET otp='', otp_expires_at=NULL, otp_verify_status=$1, updated_at=NOW()
		WHERE email=$2
	`, models.OTPStatusVerified, email)
	return err
}

// ===== credential / profile helpers =====

func (r *userRepository) UpdatePasswordByEmail(email, passwordHash string) error {
	_, err := r.DB.Exec(`
		UPDATE users SET password_hash=$1, updated_at=NOW() WHERE email=$2
	`, passwordHash, email)
	return err
}

func (r *userRepository) UpdatePasswordByID(id int, passwordHash string) error {
	_, err := r.DB.Exec(`
		UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2
	`, passwordHash, id)
	return err
}

func (r *userRepository) UpdateProfile(id int, name, email, role string) error {
	_, err := r.DB.Exec(`
		UPDATE users SET name=$1, email=$2, role=$3, updated_at=NOW() WHERE id=$4
	`, name, email, role, id)
	return err
}
