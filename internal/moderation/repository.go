package moderation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bancharampur/infogate/internal/platform/db"
)

// highlightLockID is the advisory lock serializing spotlight rewrites.
const highlightLockID int64 = 0x1f5a_0001

// DBTX is the subset of *pgxpool.Pool used by Repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool DBTX
}

// NewRepository constructs a repository.
func NewRepository(pool DBTX) *Repository {
	return &Repository{pool: pool}
}

// DeletePost removes a post.
func (r *Repository) DeletePost(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete post", `DELETE FROM posts WHERE id = $1`, id)
}

// DeleteShop removes a shop listing.
func (r *Repository) DeleteShop(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete shop", `DELETE FROM shops WHERE id = $1`, id)
}

// SetShopStatus moves one shop to status.
func (r *Repository) SetShopStatus(ctx context.Context, id string, status ShopStatus) error {
	return r.execOne(ctx, "set shop status", `UPDATE shops SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
}

// ApprovePendingShops approves every pending shop and returns how many changed.
func (r *Repository) ApprovePendingShops(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE shops SET status = $1, updated_at = NOW() WHERE status = $2`, string(ShopApproved), string(ShopPending))
	if err != nil {
		return 0, fmt.Errorf("moderation: approve pending shops: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ResolveReport marks a report as handled by actorID.
func (r *Repository) ResolveReport(ctx context.Context, id, actorID string) error {
	return r.execOne(ctx, "resolve report", `UPDATE reports SET resolved = TRUE, resolved_at = NOW(), resolved_by = NULLIF($2, '') WHERE id = $1`, id, actorID)
}

// HighlightShops replaces the global spotlight: every highlighted shop is
// cleared, then up to limit approved shops whose location contains location
// (case-insensitive) are flagged, newest first. Both steps share one
// transaction holding an advisory lock, so concurrent calls never merge.
func (r *Repository) HighlightShops(ctx context.Context, location string, limit int) ([]Shop, error) {
	if limit <= 0 {
		return nil, nil
	}
	var shops []Shop
	// ReadCommitted: statements after the advisory lock must see the previous
	// holder's committed spotlight.
	err := db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, highlightLockID); err != nil {
			return fmt.Errorf("moderation: highlight lock: %w", err)
		}
		// Global clear, including shops outside the requested location.
		if _, err := tx.Exec(ctx, `UPDATE shops SET highlighted = FALSE WHERE highlighted`); err != nil {
			return fmt.Errorf("moderation: clear highlights: %w", err)
		}
		rows, err := tx.Query(ctx, `
WITH picked AS (
	SELECT id FROM shops
	WHERE status = $1 AND COALESCE(location, '') ILIKE $2 ESCAPE '\'
	ORDER BY created_at DESC
	LIMIT $3
)
UPDATE shops s SET highlighted = TRUE
FROM picked
WHERE s.id = picked.id
RETURNING s.id, s.status, COALESCE(s.location, ''), s.created_at`,
			string(ShopApproved), containsPattern(location), limit)
		if err != nil {
			return fmt.Errorf("moderation: set highlights: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				shop   Shop
				status string
			)
			if err := rows.Scan(&shop.ID, &status, &shop.Location, &shop.CreatedAt); err != nil {
				return fmt.Errorf("moderation: scan highlight: %w", err)
			}
			shop.Status = ShopStatus(status)
			shop.Highlighted = true
			shops = append(shops, shop)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(shops, func(i, j int) bool {
		return shops[i].CreatedAt.After(shops[j].CreatedAt)
	})
	return shops, nil
}

func (r *Repository) execOne(ctx context.Context, op, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("moderation: %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// containsPattern builds an ILIKE pattern matching any value that contains
// needle literally.
func containsPattern(needle string) string {
	needle = strings.TrimSpace(needle)
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(needle) + "%"
}
