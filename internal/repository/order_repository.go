package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starline-labs/storefront-desk/internal/domain"
)

// OrderFilter captures staff listing parameters.
type OrderFilter struct {
	CustomerID *int64
	Statuses   []domain.OrderStatus
	Limit      int
	Offset     int
}

// OrderRepository encapsulates order persistence. Orders are never deleted,
// only status-transitioned.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, resolvedBy *int64, comment string) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64, limit int) ([]domain.Order, error)
	ListWithFilter(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
	RevenueByCurrency(ctx context.Context, status domain.OrderStatus) (map[string]float64, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates the repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, customer_id, username, product, quantity, total, currency,
               payment_method, payment_link, wallet_address, proof_ref,
               status, staff_comment, resolved_by, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (customer_id, username, product, quantity, total, currency,
                            payment_method, payment_link, wallet_address, proof_ref, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		order.CustomerID,
		order.Username,
		order.Product,
		order.Quantity,
		order.Total,
		order.Currency,
		order.PaymentMethod,
		order.PaymentLink,
		order.WalletAddress,
		order.ProofRef,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

// UpdateStatus overwrites status, resolver and comment. Last write wins by
// design; concurrent staff actions are not serialized here.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, resolvedBy *int64, comment string) error {
	const query = `
        UPDATE orders
        SET status=$1, resolved_by=$2, staff_comment=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, status, resolvedBy, comment, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`

	var order domain.Order
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.Username,
		&order.Product,
		&order.Quantity,
		&order.Total,
		&order.Currency,
		&order.PaymentMethod,
		&order.PaymentLink,
		&order.WalletAddress,
		&order.ProofRef,
		&order.Status,
		&order.StaffComment,
		&order.ResolvedBy,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]domain.Order, error) {
	filter := OrderFilter{CustomerID: &customerID, Limit: limit}
	return r.ListWithFilter(ctx, filter)
}

func (r *orderRepository) ListWithFilter(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	base := `SELECT ` + orderColumns + ` FROM orders`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.OrderStatus]int64)
	for rows.Next() {
		var status domain.OrderStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}

func (r *orderRepository) RevenueByCurrency(ctx context.Context, status domain.OrderStatus) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT currency, COALESCE(SUM(total),0) FROM orders WHERE status=$1 GROUP BY currency`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var currency string
		var total float64
		if err := rows.Scan(&currency, &total); err != nil {
			return nil, err
		}
		result[currency] = total
	}
	return result, rows.Err()
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	var result []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.Username,
			&order.Product,
			&order.Quantity,
			&order.Total,
			&order.Currency,
			&order.PaymentMethod,
			&order.PaymentLink,
			&order.WalletAddress,
			&order.ProofRef,
			&order.Status,
			&order.StaffComment,
			&order.ResolvedBy,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}
