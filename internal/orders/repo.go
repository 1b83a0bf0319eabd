package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PGRepo implements OrderStore on PostgreSQL. Product references live in a
// text[] column; total is NUMERIC and scanned through its text form.
type PGRepo struct{ DB *pgxpool.Pool }

const orderCols = `id, user_id, product_ids, total::text, payment, created_at, updated_at`

func (r *PGRepo) Insert(ctx context.Context, o *Order) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders (id, user_id, product_ids, total, payment, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.UserID, o.ProductIDs, o.Total.String(), o.Payment, o.CreatedAt, o.UpdatedAt)
	return err
}

// Replace overwrites every client-suppliable column in one statement and
// reads the timestamps back; pgx.ErrNoRows on the RETURNING clause is the
// zero-row outcome that means the order does not exist.
func (r *PGRepo) Replace(ctx context.Context, o *Order) error {
	err := r.DB.QueryRow(ctx, `
		UPDATE orders
		SET user_id=$2, product_ids=$3, total=$4, payment=$5, updated_at=NOW()
		WHERE id=$1
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.ProductIDs, o.Total.String(), o.Payment).
		Scan(&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	return err
}

func (r *PGRepo) Patch(ctx context.Context, id string, p StorePatch) (*Order, error) {
	set := []string{"updated_at=NOW()"}
	args := []any{id}
	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if p.UserID != nil {
		add("user_id", *p.UserID)
	}
	if p.ProductIDs != nil {
		add("product_ids", p.ProductIDs)
		add("total", p.Total.String())
	}
	if p.Payment != nil {
		add("payment", *p.Payment)
	}
	row := r.DB.QueryRow(ctx, `
		UPDATE orders SET `+strings.Join(set, ", ")+`
		WHERE id=$1
		RETURNING `+orderCols, args...)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (*Order, error) {
	row := r.DB.QueryRow(ctx,
		`DELETE FROM orders WHERE id=$1 RETURNING `+orderCols, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Order, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+orderCols+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var total string
	if err := row.Scan(&o.ID, &o.UserID, &o.ProductIDs, &total, &o.Payment,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return Order{}, fmt.Errorf("bad total for order %s: %w", o.ID, err)
	}
	o.Total = d
	if o.ProductIDs == nil {
		o.ProductIDs = []string{}
	}
	return o, nil
}
