// Package migrate applies embedded goose migrations to a pgx pool.
package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Source describes one service's migrations. Table keeps version bookkeeping
// apart when several services share a database.
type Source struct {
	FS    fs.FS
	Dir   string
	Table string
}

func Up(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool, src Source) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(src.FS)
	goose.SetTableName(src.Table)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := goose.UpContext(ctx, db, src.Dir); err != nil {
		return fmt.Errorf("migrate: %s: %w", src.Table, err)
	}
	return nil
}

type gooseLogger struct{ log *slog.Logger }

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}
