package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/demo-content/pkg/democontent"
)

//go:embed schema.sql
var schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Repository implements democontent.Repository and democontent.Settings
// using PostgreSQL
type Repository struct {
	db DBTX
}

var (
	_ democontent.Repository = (*Repository)(nil)
	_ democontent.Settings   = (*Repository)(nil)
)

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the tables the repository needs. It is safe to run on
// every start.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "terms") {
				return fmt.Errorf("term already exists")
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const itemColumns = `id, type, title, slug, status, content, mime_type, url,
               featured_media_id, term_ids, attributes, created_at, updated_at`

func scanItem(row pgx.Row) (*democontent.Item, error) {
	var item democontent.Item
	var itemType, status string
	err := row.Scan(
		&item.ID, &itemType, &item.Title, &item.Slug, &status, &item.Content,
		&item.MimeType, &item.URL, &item.FeaturedMediaID, &item.TermIDs,
		&item.Attributes, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Type = democontent.ContentType(itemType)
	item.Status = democontent.ItemStatus(status)
	if len(item.TermIDs) == 0 {
		item.TermIDs = nil
	}
	return &item, nil
}

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *democontent.Item) error {
	query := `
		INSERT INTO demo_items (
			type, title, slug, status, content, mime_type, url,
			featured_media_id, term_ids, attributes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	attributes := item.Attributes
	if attributes == nil {
		attributes = map[string]string{}
	}
	termIDs := item.TermIDs
	if termIDs == nil {
		termIDs = []int64{}
	}

	err := r.db.QueryRow(ctx, query,
		string(item.Type), item.Title, item.Slug, string(item.Status), item.Content,
		item.MimeType, item.URL, item.FeaturedMediaID, termIDs, attributes,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create item", err)
	}
	return nil
}

func (r *Repository) GetItem(ctx context.Context, id int64) (*democontent.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM demo_items WHERE id = $1`

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, democontent.ErrItemNotFound
		}
		return nil, r.handlePostgresError("get item", err)
	}
	return item, nil
}

// DeleteItem removes the item permanently. Menu entries linking to it go
// with it through the foreign key.
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM demo_items WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return democontent.ErrItemNotFound
	}
	return nil
}

func (r *Repository) FindItems(ctx context.Context, query democontent.ItemQuery) ([]*democontent.Item, error) {
	var conditions []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(query.Types) > 0 {
		types := make([]string, len(query.Types))
		for i, t := range query.Types {
			types[i] = string(t)
		}
		conditions = append(conditions, "type = ANY("+arg(types)+")")
	}
	if len(query.Statuses) > 0 {
		statuses := make([]string, len(query.Statuses))
		for i, s := range query.Statuses {
			statuses[i] = string(s)
		}
		conditions = append(conditions, "status = ANY("+arg(statuses)+")")
	}
	if query.Slug != "" {
		conditions = append(conditions, "slug = "+arg(query.Slug))
	}
	if query.Title != "" {
		conditions = append(conditions, "title = "+arg(query.Title))
	}
	if len(query.Attributes) > 0 {
		conditions = append(conditions, "attributes @> "+arg(query.Attributes))
	}

	sql := `SELECT ` + itemColumns + ` FROM demo_items`
	if len(conditions) > 0 {
		sql += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	sql += ` ORDER BY id ASC`
	if query.Limit > 0 {
		sql += ` LIMIT ` + arg(query.Limit)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, r.handlePostgresError("find items", err)
	}
	defer rows.Close()

	var result []*democontent.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan item", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("find items", err)
	}
	return result, nil
}

// Taxonomy operations

func (r *Repository) GetTermBySlug(ctx context.Context, taxonomy, slug string) (*democontent.Term, error) {
	query := `SELECT id, taxonomy, name, slug FROM terms WHERE taxonomy = $1 AND slug = $2`

	var term democontent.Term
	err := r.db.QueryRow(ctx, query, taxonomy, slug).Scan(&term.ID, &term.Taxonomy, &term.Name, &term.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, democontent.ErrTermNotFound
		}
		return nil, r.handlePostgresError("get term", err)
	}
	return &term, nil
}

func (r *Repository) CreateTerm(ctx context.Context, term *democontent.Term) error {
	query := `INSERT INTO terms (taxonomy, name, slug) VALUES ($1, $2, $3) RETURNING id`

	if err := r.db.QueryRow(ctx, query, term.Taxonomy, term.Name, term.Slug).Scan(&term.ID); err != nil {
		return r.handlePostgresError("create term", err)
	}
	return nil
}

// Menu operations

func (r *Repository) GetMenu(ctx context.Context, id int64) (*democontent.Menu, error) {
	var menu democontent.Menu
	err := r.db.QueryRow(ctx, `SELECT id, name, created_at FROM menus WHERE id = $1`, id).
		Scan(&menu.ID, &menu.Name, &menu.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, democontent.ErrMenuNotFound
		}
		return nil, r.handlePostgresError("get menu", err)
	}
	return &menu, nil
}

func (r *Repository) GetMenuByName(ctx context.Context, name string) (*democontent.Menu, error) {
	query := `SELECT id, name, created_at FROM menus WHERE name = $1 ORDER BY id ASC LIMIT 1`

	var menu democontent.Menu
	err := r.db.QueryRow(ctx, query, name).Scan(&menu.ID, &menu.Name, &menu.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, democontent.ErrMenuNotFound
		}
		return nil, r.handlePostgresError("get menu by name", err)
	}
	return &menu, nil
}

func (r *Repository) CreateMenu(ctx context.Context, menu *democontent.Menu) error {
	query := `INSERT INTO menus (name) VALUES ($1) RETURNING id, created_at`

	if err := r.db.QueryRow(ctx, query, menu.Name).Scan(&menu.ID, &menu.CreatedAt); err != nil {
		return r.handlePostgresError("create menu", err)
	}
	return nil
}

// DeleteMenu removes the menu; its entries cascade.
func (r *Repository) DeleteMenu(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete menu", err)
	}
	if tag.RowsAffected() == 0 {
		return democontent.ErrMenuNotFound
	}
	return nil
}

func (r *Repository) ListMenuItems(ctx context.Context, menuID int64) ([]*democontent.MenuItem, error) {
	if _, err := r.GetMenu(ctx, menuID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, menu_id, object_id, object, type, status, position
		FROM menu_items WHERE menu_id = $1 ORDER BY position ASC, id ASC`

	rows, err := r.db.Query(ctx, query, menuID)
	if err != nil {
		return nil, r.handlePostgresError("list menu items", err)
	}
	defer rows.Close()

	var result []*democontent.MenuItem
	for rows.Next() {
		var item democontent.MenuItem
		var status string
		if err := rows.Scan(&item.ID, &item.MenuID, &item.ObjectID, &item.Object, &item.Type, &status, &item.Position); err != nil {
			return nil, r.handlePostgresError("scan menu item", err)
		}
		item.Status = democontent.ItemStatus(status)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list menu items", err)
	}
	return result, nil
}

func (r *Repository) AddMenuItem(ctx context.Context, item *democontent.MenuItem) error {
	query := `
		INSERT INTO menu_items (menu_id, object_id, object, type, status, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		item.MenuID, item.ObjectID, item.Object, item.Type, string(item.Status), item.Position,
	).Scan(&item.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" && strings.Contains(pgErr.ConstraintName, "menu_id") {
			return democontent.ErrMenuNotFound
		}
		return r.handlePostgresError("add menu item", err)
	}
	return nil
}

// Settings operations

func (r *Repository) GetOption(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM options WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", democontent.ErrOptionNotFound
		}
		return "", r.handlePostgresError("get option", err)
	}
	return value, nil
}

func (r *Repository) SetOption(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO options (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	if _, err := r.db.Exec(ctx, query, key, value); err != nil {
		return r.handlePostgresError("set option", err)
	}
	return nil
}

func (r *Repository) DeleteOption(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM options WHERE key = $1`, key); err != nil {
		return r.handlePostgresError("delete option", err)
	}
	return nil
}

func (r *Repository) GetMenuLocations(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT slot, menu_id FROM menu_locations`)
	if err != nil {
		return nil, r.handlePostgresError("get menu locations", err)
	}
	defer rows.Close()

	locations := make(map[string]int64)
	for rows.Next() {
		var slot string
		var menuID int64
		if err := rows.Scan(&slot, &menuID); err != nil {
			return nil, r.handlePostgresError("scan menu location", err)
		}
		locations[slot] = menuID
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("get menu locations", err)
	}
	return locations, nil
}

// SetMenuLocations replaces the whole slot mapping in one transaction.
func (r *Repository) SetMenuLocations(ctx context.Context, locations map[string]int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("begin", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM menu_locations`); err != nil {
		return r.handlePostgresError("clear menu locations", err)
	}
	for slot, menuID := range locations {
		if _, err := tx.Exec(ctx, `INSERT INTO menu_locations (slot, menu_id) VALUES ($1, $2)`, slot, menuID); err != nil {
			return r.handlePostgresError("set menu location", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("commit", err)
	}
	return nil
}
