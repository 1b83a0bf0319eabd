package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyUpdate     = errors.New("no fields to update")
)

type Repo struct{ DB *pgxpool.Pool }

// GetUser returns nil without error when the id does not resolve.
func (r *Repo) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, email FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetProductsByIDs resolves a batch of ids in one query and returns only the
// subset that exists; missing ids are simply absent from the map.
func (r *Repo) GetProductsByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, about, price::text FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// SearchProducts filters by name/about substring and an upper price bound.
// Zero-value arguments match everything.
func (r *Repo) SearchProducts(ctx context.Context, name, about string, maxPrice decimal.Decimal) ([]Product, error) {
	if maxPrice.IsZero() {
		maxPrice = decimal.NewFromInt(9999999999)
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, about, price::text FROM products
		WHERE name ILIKE $1 AND about ILIKE $2 AND price < $3
		ORDER BY name`,
		"%"+name+"%", "%"+about+"%", maxPrice.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProductDetail fetches one product and joins its reviews (with the
// reviewer embedded) to derive reviewIds and the average score.
func (r *Repo) GetProductDetail(ctx context.Context, id string) (*ProductDetail, error) {
	var d ProductDetail
	var price string
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, about, price::text FROM products WHERE id=$1`, id).
		Scan(&d.ID, &d.Name, &d.About, &price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if d.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("bad price for product %s: %w", d.ID, err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT r.id, r.user_id, r.product_id, r.score, r.content,
		       r.created_at, r.updated_at, u.id, u.name, u.email
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	d.Reviews = []Review{}
	d.ReviewIDs = []string{}
	for rows.Next() {
		var rv Review
		var u User
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Score, &rv.Content,
			&rv.CreatedAt, &rv.UpdatedAt, &u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		rv.User = &u
		d.Reviews = append(d.Reviews, rv)
		d.ReviewIDs = append(d.ReviewIDs, rv.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	d.AverageScore = AverageScore(d.Reviews)
	return &d, nil
}

func (r *Repo) CreateProduct(ctx context.Context, name, about string, price decimal.Decimal) (*Product, error) {
	p := Product{ID: uuid.NewString(), Name: name, About: about, Price: price}
	_, err := r.DB.Exec(ctx,
		`INSERT INTO products (id, name, about, price) VALUES ($1,$2,$3,$4)`,
		p.ID, p.Name, p.About, p.Price.String())
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct returns the removed product so the caller can echo it back
// and attach it to the deletion event.
func (r *Repo) DeleteProduct(ctx context.Context, id string) (*Product, error) {
	row := r.DB.QueryRow(ctx,
		`DELETE FROM products WHERE id=$1 RETURNING id, name, about, price::text`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) CreateUser(ctx context.Context, name, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := User{ID: uuid.NewString(), Name: name, Email: email, PasswordHash: string(hash)}
	_, err = r.DB.Exec(ctx,
		`INSERT INTO users (id, name, email, password) VALUES ($1,$2,$3,$4)`,
		u.ID, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ReplaceUser re-supplies every field; a zero-row update means no such user.
func (r *Repo) ReplaceUser(ctx context.Context, id, name, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	tag, err := r.DB.Exec(ctx,
		`UPDATE users SET name=$2, email=$3, password=$4 WHERE id=$1`,
		id, name, email, string(hash))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}
	return &User{ID: id, Name: name, Email: email}, nil
}

// PatchUser updates only the supplied fields.
func (r *Repo) PatchUser(ctx context.Context, id string, name, email, password *string) (*User, error) {
	set := []string{}
	args := []any{id}
	add := func(col, val string) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if name != nil {
		add("name", *name)
	}
	if email != nil {
		add("email", *email)
	}
	if password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		add("password", string(hash))
	}
	if len(set) == 0 {
		return nil, ErrEmptyUpdate
	}
	tag, err := r.DB.Exec(ctx,
		`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id=$1`, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}
	return r.GetUser(ctx, id)
}

func (r *Repo) CreateReview(ctx context.Context, userID, productID string, score int, content string) (*Review, error) {
	rv := Review{ID: uuid.NewString(), UserID: userID, ProductID: productID, Score: score, Content: content}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO reviews (id, user_id, product_id, score, content, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		RETURNING created_at, updated_at`,
		rv.ID, rv.UserID, rv.ProductID, rv.Score, rv.Content).
		Scan(&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &p.About, &price); err != nil {
		return Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("bad price for product %s: %w", p.ID, err)
	}
	p.Price = d
	return p, nil
}
