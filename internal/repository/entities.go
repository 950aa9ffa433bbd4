package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/common"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

const tableEntities = "entities"

var entityColumns = []string{"id", "code", "name", "sector", "description", "website", "contact_info", "created_at"}

type EntityRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Entity, error)
	Create(ctx context.Context, e *entity.Entity) error
	// Resolve returns the entity for code, creating it from the known-entity
	// directory when absent. The bool reports whether it was created.
	Resolve(ctx context.Context, code, name string, cache *EntityCache) (*entity.Entity, bool, error)
	List(ctx context.Context) ([]entity.Entity, error)
}

type entityRepo struct {
	q       dialect.ExecQuerier
	dialect string
	logger  *slog.Logger
}

func NewEntityRepository(db *DB, logger *slog.Logger) EntityRepository {
	return newEntityRepo(db.drv, db.Dialect(), logger)
}

func newEntityRepo(q dialect.ExecQuerier, d string, logger *slog.Logger) *entityRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &entityRepo{q: q, dialect: d, logger: logger}
}

func (r *entityRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *entityRepo) GetByCode(ctx context.Context, code string) (*entity.Entity, error) {
	query, args := r.builder().Select(entityColumns...).
		From(r.builder().Table(tableEntities)).
		Where(entsql.EQ("code", strings.ToUpper(code))).
		Limit(1).
		Query()
	list, err := r.query(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to get entity by code", "code", code, "error", err)
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("entity %s: %w", code, common.ErrNotFound)
	}
	return &list[0], nil
}

func (r *entityRepo) Create(ctx context.Context, e *entity.Entity) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	contact, err := json.Marshal(e.ContactInfo)
	if err != nil {
		return err
	}
	query, args := r.builder().Insert(tableEntities).
		Columns(entityColumns...).
		Values(e.ID, e.Code, e.Name, e.Sector, e.Description, e.Website, string(contact), e.CreatedAt).
		Query()
	var res sql.Result
	if err := r.q.Exec(ctx, query, args, &res); err != nil {
		r.logger.Error("failed to create entity", "code", e.Code, "error", err)
		return common.NewAppError(common.CodeDB, "create entity "+e.Code, err)
	}
	return nil
}

func (r *entityRepo) Resolve(ctx context.Context, code, name string, cache *EntityCache) (*entity.Entity, bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if e, ok := cache.Get(code); ok {
		return e, false, nil
	}
	existing, err := r.GetByCode(ctx, code)
	if err == nil {
		cache.Put(existing, false)
		return existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	known, _ := constants.LookupEntity(code)
	if strings.TrimSpace(name) == "" {
		name = known.Name
	}
	e := &entity.Entity{
		Name:        name,
		Code:        code,
		Sector:      constants.SectorNacional,
		Description: known.Description,
		Website:     known.Website,
		ContactInfo: entity.ContactInfo{Phone: known.Phone, Email: known.Email, Address: known.Address},
	}
	if err := r.Create(ctx, e); err != nil {
		return nil, false, err
	}
	cache.Put(e, true)
	r.logger.Info("repository.entity.created", "code", code)
	return e, true, nil
}

func (r *entityRepo) List(ctx context.Context) ([]entity.Entity, error) {
	query, args := r.builder().Select(entityColumns...).
		From(r.builder().Table(tableEntities)).
		OrderBy("code").
		Query()
	return r.query(ctx, query, args)
}

func (r *entityRepo) query(ctx context.Context, query string, args []any) ([]entity.Entity, error) {
	var rows entsql.Rows
	if err := r.q.Query(ctx, query, args, &rows); err != nil {
		return nil, common.NewAppError(common.CodeDB, "query entities", err)
	}
	defer rows.Close()

	var out []entity.Entity
	for rows.Next() {
		var (
			e       entity.Entity
			contact string
		)
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.Sector, &e.Description, &e.Website, &contact, &e.CreatedAt); err != nil {
			return nil, common.NewAppError(common.CodeDB, "scan entity", err)
		}
		if contact != "" {
			_ = json.Unmarshal([]byte(contact), &e.ContactInfo)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeDB, "iterate entities", err)
	}
	return out, nil
}

// EntityCache maps entity codes to rows for the duration of one batch.
// Entries created inside a record's savepoint stay pending until the record
// is released, so a rolled-back record cannot leave a dangling entry behind.
type EntityCache struct {
	byCode  map[string]*entity.Entity
	pending map[string]struct{}
}

func NewEntityCache() *EntityCache {
	return &EntityCache{byCode: map[string]*entity.Entity{}, pending: map[string]struct{}{}}
}

func (c *EntityCache) Get(code string) (*entity.Entity, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.byCode[code]
	return e, ok
}

func (c *EntityCache) Put(e *entity.Entity, created bool) {
	if c == nil {
		return
	}
	c.byCode[e.Code] = e
	if created {
		c.pending[e.Code] = struct{}{}
	}
}

// Keep confirms pending entries.
func (c *EntityCache) Keep() {
	if c == nil {
		return
	}
	clear(c.pending)
}

// Discard drops pending entries.
func (c *EntityCache) Discard() {
	if c == nil {
		return
	}
	for code := range c.pending {
		delete(c.byCode, code)
	}
	clear(c.pending)
}

func (c *EntityCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byCode)
}
