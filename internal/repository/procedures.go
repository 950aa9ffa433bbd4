package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
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

const tableProcedures = "procedures"

// Outcome is what an upsert did with one record.
type Outcome int

const (
	Created  Outcome = iota
	Existing         // natural key present, row left untouched
	Updated          // natural key present, mutable columns overwritten
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Existing:
		return "existing"
	case Updated:
		return "updated"
	}
	return "unknown"
}

// SearchQuery filters the catalog. Text matches name or description,
// case-insensitively.
type SearchQuery struct {
	Text       string
	Category   string
	EntityCode string
	Limit      int
}

type ProcedureRepository interface {
	// Upsert resolves the entity and inserts p unless (entity, tupa_code)
	// already exists.
	Upsert(ctx context.Context, p *entity.Procedure, cache *EntityCache) (Outcome, error)
	// SaveBatch upserts procs in one transaction with a savepoint per record.
	SaveBatch(ctx context.Context, procs []entity.Procedure) (entity.SaveStats, error)
	Search(ctx context.Context, q SearchQuery) ([]entity.StoredProcedure, error)
	List(ctx context.Context, limit int) ([]entity.StoredProcedure, error)
	Stats(ctx context.Context) (entity.CatalogStats, error)
}

type procedureRepo struct {
	db         *DB
	q          dialect.ExecQuerier
	dialect    string
	entities   *entityRepo
	onConflict string
	now        func() time.Time
	logger     *slog.Logger
}

func NewProcedureRepository(db *DB, onConflict string, logger *slog.Logger) ProcedureRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if onConflict != common.OnConflictUpdate {
		onConflict = common.OnConflictSkip
	}
	return &procedureRepo{
		db:         db,
		q:          db.drv,
		dialect:    db.Dialect(),
		entities:   newEntityRepo(db.drv, db.Dialect(), logger),
		onConflict: onConflict,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// withQuerier returns a copy bound to q, typically a transaction.
func (r *procedureRepo) withQuerier(q dialect.ExecQuerier) *procedureRepo {
	cp := *r
	cp.q = q
	cp.entities = newEntityRepo(q, r.dialect, r.logger)
	return &cp
}

func (r *procedureRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}

func (r *procedureRepo) exec(ctx context.Context, query string, args []any) error {
	var res sql.Result
	return r.q.Exec(ctx, query, args, &res)
}

func (r *procedureRepo) Upsert(ctx context.Context, p *entity.Procedure, cache *EntityCache) (Outcome, error) {
	if err := p.Validate(); err != nil {
		return Existing, err
	}
	ent, _, err := r.entities.Resolve(ctx, p.EntityCode, p.EntityName, cache)
	if err != nil {
		return Existing, err
	}

	id, err := r.findID(ctx, ent.ID, p.TupaCode)
	switch {
	case err == nil:
		if r.onConflict == common.OnConflictUpdate {
			if err := r.update(ctx, id, p); err != nil {
				return Existing, err
			}
			return Updated, nil
		}
		return Existing, nil
	case !isNotFound(err):
		return Existing, err
	}

	if err := r.insert(ctx, ent.ID, p); err != nil {
		return Existing, err
	}
	return Created, nil
}

func (r *procedureRepo) findID(ctx context.Context, entityID uuid.UUID, tupaCode string) (uuid.UUID, error) {
	query, args := r.builder().Select("id").
		From(r.builder().Table(tableProcedures)).
		Where(entsql.And(entsql.EQ("entity_id", entityID), entsql.EQ("tupa_code", tupaCode))).
		Limit(1).
		Query()
	var rows entsql.Rows
	if err := r.q.Query(ctx, query, args, &rows); err != nil {
		return uuid.Nil, common.NewAppError(common.CodeDB, "find procedure", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return uuid.Nil, common.NewAppError(common.CodeDB, "find procedure", err)
		}
		return uuid.Nil, common.ErrNotFound
	}
	var id uuid.UUID
	if err := rows.Scan(&id); err != nil {
		return uuid.Nil, common.NewAppError(common.CodeDB, "scan procedure id", err)
	}
	return id, nil
}

func (r *procedureRepo) metadata(p *entity.Procedure) string {
	b, _ := json.Marshal(entity.ProcedureMetadata{
		SourceURL:      p.SourceURL,
		ScrapedAt:      r.now(),
		ScraperVersion: constants.ScraperVersion,
	})
	return string(b)
}

func (r *procedureRepo) insert(ctx context.Context, entityID uuid.UUID, p *entity.Procedure) error {
	now := r.now()
	query, args := r.builder().Insert(tableProcedures).
		Columns("id", "entity_id", "tupa_code", "name", "description", "requirements", "cost", "currency",
			"processing_time", "legal_basis", "channels", "category", "subcategory", "is_free", "is_online",
			"difficulty_level", "source_url", "keywords", "metadata", "created_at", "updated_at").
		Values(uuid.New(), entityID, p.TupaCode, p.Name, p.Description, encodeList(p.Requirements), p.Cost, p.Currency,
			p.ProcessingTime, encodeList(p.LegalBasis), encodeList(p.Channels), p.Category, p.Subcategory, p.IsFree, p.IsOnline,
			p.DifficultyLevel, p.SourceURL, encodeList(p.Keywords), r.metadata(p), now, now).
		Query()
	if err := r.exec(ctx, query, args); err != nil {
		r.logger.Error("failed to insert procedure", "entity_code", p.EntityCode, "tupa_code", p.TupaCode, "error", err)
		return common.NewAppError(common.CodeDB, "insert procedure "+p.NaturalKey(), err)
	}
	return nil
}

func (r *procedureRepo) update(ctx context.Context, id uuid.UUID, p *entity.Procedure) error {
	query, args := r.builder().Update(tableProcedures).
		Set("name", p.Name).
		Set("description", p.Description).
		Set("requirements", encodeList(p.Requirements)).
		Set("cost", p.Cost).
		Set("currency", p.Currency).
		Set("processing_time", p.ProcessingTime).
		Set("legal_basis", encodeList(p.LegalBasis)).
		Set("channels", encodeList(p.Channels)).
		Set("category", p.Category).
		Set("subcategory", p.Subcategory).
		Set("is_free", p.IsFree).
		Set("is_online", p.IsOnline).
		Set("difficulty_level", p.DifficultyLevel).
		Set("source_url", p.SourceURL).
		Set("keywords", encodeList(p.Keywords)).
		Set("metadata", r.metadata(p)).
		Set("updated_at", r.now()).
		Where(entsql.EQ("id", id)).
		Query()
	if err := r.exec(ctx, query, args); err != nil {
		r.logger.Error("failed to update procedure", "entity_code", p.EntityCode, "tupa_code", p.TupaCode, "error", err)
		return common.NewAppError(common.CodeDB, "update procedure "+p.NaturalKey(), err)
	}
	return nil
}

const savepoint = "tupa_record"

// SaveBatch runs the whole batch in one transaction. A failing record is
// rolled back to its savepoint and counted in Errors; only a failure of the
// transaction itself rolls everything back.
func (r *procedureRepo) SaveBatch(ctx context.Context, procs []entity.Procedure) (entity.SaveStats, error) {
	stats := entity.SaveStats{Total: len(procs)}
	start := time.Now()

	tx, err := r.db.drv.Tx(ctx)
	if err != nil {
		r.logger.Error("failed to begin transaction", "error", err)
		return stats, common.NewAppError(common.CodeDB, "begin batch", err)
	}
	txr := r.withQuerier(tx)
	cache := NewEntityCache()

	abort := func(msg string, cause error) (entity.SaveStats, error) {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("failed to roll back batch", "error", rbErr)
		}
		r.logger.Error("repository.batch.rollback", "reason", msg, "error", cause)
		return entity.SaveStats{Total: len(procs)}, common.NewAppError(common.CodeDB, msg, cause)
	}

	for i := range procs {
		if err := ctx.Err(); err != nil {
			return abort("batch cancelled", err)
		}
		p := &procs[i]
		if err := txr.exec(ctx, "SAVEPOINT "+savepoint, []any{}); err != nil {
			return abort("savepoint", err)
		}
		outcome, err := txr.Upsert(ctx, p, cache)
		if err != nil {
			stats.Errors++
			r.logger.Warn("repository.record.failed", "entity_code", p.EntityCode, "tupa_code", p.TupaCode, "error", err)
			if rbErr := txr.exec(ctx, "ROLLBACK TO SAVEPOINT "+savepoint, []any{}); rbErr != nil {
				return abort("rollback to savepoint", rbErr)
			}
			cache.Discard()
		} else {
			cache.Keep()
			switch outcome {
			case Created:
				stats.Saved++
			default:
				stats.Skipped++
			}
		}
		if err := txr.exec(ctx, "RELEASE SAVEPOINT "+savepoint, []any{}); err != nil {
			return abort("release savepoint", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return abort("commit batch", err)
	}
	r.logger.Info("repository.batch.commit",
		"total", stats.Total,
		"saved", stats.Saved,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"entities", cache.Len(),
		"on_conflict", r.onConflict,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return stats, nil
}

// joined returns aliased procedure and entity tables. Columns must be taken
// from the aliased tables; Join would otherwise rename an unaliased table.
func (r *procedureRepo) joined(b *entsql.DialectBuilder) (p, e *entsql.SelectTable) {
	return b.Table(tableProcedures).As("p"), b.Table(tableEntities).As("e")
}

// storedSelector joins procedures with their entity.
func (r *procedureRepo) storedSelector() (*entsql.Selector, *entsql.SelectTable, *entsql.SelectTable) {
	b := r.builder()
	p, e := r.joined(b)
	sel := b.Select(
		p.C("id"), p.C("entity_id"), e.C("code"), e.C("name"), p.C("tupa_code"), p.C("name"), p.C("description"),
		p.C("requirements"), p.C("cost"), p.C("currency"), p.C("processing_time"), p.C("legal_basis"),
		p.C("channels"), p.C("category"), p.C("subcategory"), p.C("is_free"), p.C("is_online"),
		p.C("difficulty_level"), p.C("source_url"), p.C("keywords"), p.C("created_at"), p.C("updated_at"),
	).From(p).Join(e).On(p.C("entity_id"), e.C("id"))
	return sel, p, e
}

func (r *procedureRepo) Search(ctx context.Context, q SearchQuery) ([]entity.StoredProcedure, error) {
	sel, p, e := r.storedSelector()
	var preds []*entsql.Predicate
	if text := strings.TrimSpace(q.Text); text != "" {
		preds = append(preds, entsql.Or(entsql.ContainsFold(p.C("name"), text), entsql.ContainsFold(p.C("description"), text)))
	}
	if q.Category != "" {
		preds = append(preds, entsql.EQ(p.C("category"), strings.ToLower(q.Category)))
	}
	if q.EntityCode != "" {
		preds = append(preds, entsql.EQ(e.C("code"), strings.ToUpper(q.EntityCode)))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(p.C("name"))
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}
	query, args := sel.Query()
	return r.queryStored(ctx, query, args)
}

func (r *procedureRepo) List(ctx context.Context, limit int) ([]entity.StoredProcedure, error) {
	sel, p, e := r.storedSelector()
	sel.OrderBy(e.C("code"), p.C("tupa_code"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	return r.queryStored(ctx, query, args)
}

func (r *procedureRepo) queryStored(ctx context.Context, query string, args []any) ([]entity.StoredProcedure, error) {
	var rows entsql.Rows
	if err := r.q.Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("failed to query procedures", "error", err)
		return nil, common.NewAppError(common.CodeDB, "query procedures", err)
	}
	defer rows.Close()

	out := []entity.StoredProcedure{}
	for rows.Next() {
		var (
			sp                              entity.StoredProcedure
			reqs, legal, channels, keywords string
		)
		p := &sp.Procedure
		if err := rows.Scan(&sp.ID, &sp.EntityID, &p.EntityCode, &p.EntityName, &p.TupaCode, &p.Name, &p.Description,
			&reqs, &p.Cost, &p.Currency, &p.ProcessingTime, &legal,
			&channels, &p.Category, &p.Subcategory, &p.IsFree, &p.IsOnline,
			&p.DifficultyLevel, &p.SourceURL, &keywords, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, common.NewAppError(common.CodeDB, "scan procedure", err)
		}
		p.Requirements = decodeList(reqs)
		p.LegalBasis = decodeList(legal)
		p.Channels = decodeList(channels)
		p.Keywords = decodeList(keywords)
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeDB, "iterate procedures", err)
	}
	return out, nil
}

func (r *procedureRepo) Stats(ctx context.Context) (entity.CatalogStats, error) {
	stats := entity.CatalogStats{ByEntity: map[string]int{}, ByCategory: map[string]int{}}
	b := r.builder()

	total, err := r.count(ctx, tableProcedures)
	if err != nil {
		return stats, err
	}
	stats.TotalProcedures = total
	if stats.EntitiesCount, err = r.count(ctx, tableEntities); err != nil {
		return stats, err
	}

	p, e := r.joined(b)
	byEntity, args := b.Select(e.C("code"), entsql.Count("*")).
		From(p).Join(e).On(p.C("entity_id"), e.C("id")).
		GroupBy(e.C("code")).
		Query()
	if err := r.groupCounts(ctx, byEntity, args, stats.ByEntity); err != nil {
		return stats, err
	}

	p = b.Table(tableProcedures)
	byCategory, args := b.Select(p.C("category"), entsql.Count("*")).
		From(p).
		GroupBy(p.C("category")).
		Query()
	if err := r.groupCounts(ctx, byCategory, args, stats.ByCategory); err != nil {
		return stats, err
	}
	return stats, nil
}

func (r *procedureRepo) count(ctx context.Context, table string) (int, error) {
	query, args := r.builder().Select(entsql.Count("*")).From(r.builder().Table(table)).Query()
	var rows entsql.Rows
	if err := r.q.Query(ctx, query, args, &rows); err != nil {
		return 0, common.NewAppError(common.CodeDB, "count "+table, err)
	}
	defer rows.Close()
	n := 0
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, common.NewAppError(common.CodeDB, "scan count", err)
		}
	}
	return n, rows.Err()
}

func (r *procedureRepo) groupCounts(ctx context.Context, query string, args []any, into map[string]int) error {
	var rows entsql.Rows
	if err := r.q.Query(ctx, query, args, &rows); err != nil {
		return common.NewAppError(common.CodeDB, "group counts", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return common.NewAppError(common.CodeDB, "scan group count", err)
		}
		into[key] = n
	}
	return rows.Err()
}

func encodeList(xs []string) string {
	if len(xs) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(xs)
	return string(b)
}

func decodeList(s string) []string {
	out := []string{}
	if s != "" {
		_ = json.Unmarshal([]byte(s), &out)
	}
	return out
}
