package commands

import (
	"context"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/joseph-ayodele/tupa-scraper/internal/pipeline"
	repo "github.com/joseph-ayodele/tupa-scraper/internal/repository"
)

const dbPingTimeout = 5 * time.Second

// openDB connects, pings and bootstraps the schema of the configured database.
func (a *app) openDB(ctx context.Context) (*repo.DB, error) {
	if err := a.cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	db, err := repo.Open(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return nil, err
	}
	if err := db.HealthCheck(ctx, dbPingTimeout); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (a *app) procedures(db *repo.DB) repo.ProcedureRepository {
	return repo.NewProcedureRepository(db, a.cfg.Database.OnConflict, a.logger)
}

// storeOpener defers the database connection to the persist phase.
func (a *app) storeOpener() pipeline.StoreOpener {
	return func(ctx context.Context) (pipeline.Store, func(), error) {
		db, err := a.openDB(ctx)
		if err != nil {
			return nil, nil, err
		}
		return a.procedures(db), db.Close, nil
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}
