package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, userID string, filter Filter) ([]*Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) error
	GetByID(ctx context.Context, id string) (*Notification, error)

	SaveSubscription(ctx context.Context, sub *PushSubscription) error
	ListSubscriptionsForUser(ctx context.Context, userID string) ([]*PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const notificationColumns = "id, user_id, booking_id, kind, title, body, read_at, created_at"

func (r *pgxRepository) Create(ctx context.Context, n *Notification) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.notifications").
		Columns("user_id", "booking_id", "kind", "title", "body").
		Values(n.UserID, n.BookingID, n.Kind, n.Title, n.Body).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create notification query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&n.ID, &n.CreatedAt)
}

func (r *pgxRepository) ListForUser(ctx context.Context, userID string, filter Filter) ([]*Notification, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(notificationColumns, "count(*) OVER() AS total_count").
		From("public.notifications").
		Where(squirrel.Eq{"user_id": userID})

	if filter.UnreadOnly {
		query = query.Where(squirrel.Eq{"read_at": nil})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list notifications query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications failed: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	var total int

	for rows.Next() {
		var (
			n       Notification
			kindStr string
		)
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.BookingID, &kindStr, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan notification failed: %w", err)
		}
		kind, err := ParseKind(kindStr)
		if err != nil {
			return nil, 0, fmt.Errorf("notification %s has invalid stored kind %q: %w", n.ID, kindStr, err)
		}
		n.Kind = kind
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notifications failed: %w", err)
	}

	return notifications, total, nil
}

func (r *pgxRepository) MarkRead(ctx context.Context, id, userID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.notifications").
		Set("read_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark read query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark notification read failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Notification, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(notificationColumns).
		From("public.notifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get notification query failed: %w", err)
	}

	var (
		n       Notification
		kindStr string
	)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&n.ID, &n.UserID, &n.BookingID, &kindStr, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification failed: %w", err)
	}

	kind, err := ParseKind(kindStr)
	if err != nil {
		return nil, fmt.Errorf("notification %s has invalid stored kind %q: %w", n.ID, kindStr, err)
	}
	n.Kind = kind

	return &n, nil
}

func (r *pgxRepository) SaveSubscription(ctx context.Context, sub *PushSubscription) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.push_subscriptions").
		Columns("user_id", "endpoint", "p256dh", "auth").
		Values(sub.UserID, sub.Endpoint, sub.P256DH, sub.Auth).
		Suffix("ON CONFLICT (endpoint) DO UPDATE SET user_id = EXCLUDED.user_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth").
		ToSql()
	if err != nil {
		return fmt.Errorf("build save subscription query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save subscription failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListSubscriptionsForUser(ctx context.Context, userID string) ([]*PushSubscription, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("user_id", "endpoint", "p256dh", "auth", "created_at").
		From("public.push_subscriptions").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list subscriptions query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions failed: %w", err)
	}
	defer rows.Close()

	var subs []*PushSubscription
	for rows.Next() {
		var sub PushSubscription
		if err := rows.Scan(&sub.UserID, &sub.Endpoint, &sub.P256DH, &sub.Auth, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription failed: %w", err)
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions failed: %w", err)
	}

	return subs, nil
}

func (r *pgxRepository) DeleteSubscription(ctx context.Context, endpoint string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.push_subscriptions").
		Where(squirrel.Eq{"endpoint": endpoint}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete subscription query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete subscription failed: %w", err)
	}
	return nil
}
