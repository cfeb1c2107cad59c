package repository

import (
	"context"
	"database/sql"
	"time"

	"elibro/apierr"
	"elibro/crypto"
	"elibro/models"
)

type PostgresUserRepo struct {
	DB     *sql.DB
	Cipher *crypto.FieldCipher
}

func NewPostgresUserRepo(db *sql.DB, cipher *crypto.FieldCipher) *PostgresUserRepo {
	return &PostgresUserRepo{DB: db, Cipher: cipher}
}

const userColumns = `id, fullname, email, password, salt, role, COALESCE(refresh_token, ''), created_at, updated_at`

func (r *PostgresUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	existing, err := r.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apierr.Conflict("the email address is already in use")
	}

	if user.ID == "" {
		user.ID = models.NewID()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := user.SetPassword(user.Password); err != nil {
		return err
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO users (id, fullname, email, password, salt, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, r.Cipher.Encrypt(user.Fullname), r.Cipher.Encrypt(user.Email),
		user.Password, user.Salt, user.Role, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, r.Cipher.Encrypt(email))
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepo) GetUserByRefreshToken(ctx context.Context, encryptedToken string) (*models.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE refresh_token = $1`, encryptedToken)
}

func (r *PostgresUserRepo) queryOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Fullname, &user.Email, &user.Password, &user.Salt,
		&user.Role, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := user.DecryptFields(r.Cipher); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *PostgresUserRepo) GetAllUsers(ctx context.Context, page, limit int) ([]*models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at
		OFFSET $1 LIMIT $2
	`, page*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID, &user.Fullname, &user.Email, &user.Password, &user.Salt,
			&user.Role, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := user.DecryptFields(r.Cipher); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

func (r *PostgresUserRepo) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET fullname = $2, email = $3, password = $4, salt = $5, role = $6,
		    refresh_token = NULLIF($7, ''), updated_at = $8
		WHERE id = $1
	`, user.ID, r.Cipher.Encrypt(user.Fullname), r.Cipher.Encrypt(user.Email),
		user.Password, user.Salt, user.Role, user.RefreshToken, user.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *PostgresUserRepo) SetRefreshToken(ctx context.Context, userID, encryptedToken string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1
	`, userID, encryptedToken, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *PostgresUserRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET refresh_token = NULL, updated_at = $2 WHERE id = $1
	`, userID, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *PostgresUserRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *PostgresUserRepo) MonthlySignups(ctx context.Context) ([]models.MonthlySignup, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*)
		FROM users
		GROUP BY month
		ORDER BY month
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MonthlySignup
	for rows.Next() {
		var row models.MonthlySignup
		if err := rows.Scan(&row.Month, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.NotFound("user not found")
	}
	return nil
}
