// Package postgres writes triples into a PostgreSQL table.
package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	pq "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/database"
	"github.com/smartdatalake/osmwrangle/log"
	"github.com/smartdatalake/osmwrangle/rdf"
)

const DefaultTable = "triples"

var columns = []string{"subject", "predicate", "object", "object_kind", "datatype", "lang"}

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

func (e *SQLError) Cause() error { return e.originalError }

// Sink copies triples into one table. Each Write is a single transaction.
type Sink struct {
	Db     *sql.DB
	Params string
	Schema string
	Table  string

	mu    sync.Mutex
	count int64
}

func New(conf database.Config) (database.Sink, error) {
	params := conf.ConnectionParams
	if strings.HasPrefix(params, "postgis://") {
		params = strings.Replace(params, "postgis", "postgres", 1)
	}
	params, err := pq.ParseURL(params)
	if err != nil {
		return nil, errors.Wrap(err, "parsing postgres url")
	}
	params = disableDefaultSslOnLocalhost(params)

	schema, table := splitTableName(conf.Table)
	pg := &Sink{Params: params, Schema: schema, Table: table}
	if err := pg.Open(); err != nil {
		return nil, err
	}
	return pg, nil
}

func (pg *Sink) Open() error {
	var err error
	pg.Db, err = sql.Open("postgres", pg.Params)
	if err != nil {
		return err
	}
	// check that the connection actually works
	if err := pg.Db.Ping(); err != nil {
		pg.Db.Close()
		return errors.Wrap(err, "connecting to postgres")
	}
	return nil
}

func (pg *Sink) fullName() string {
	return pq.QuoteIdentifier(pg.Schema) + "." + pq.QuoteIdentifier(pg.Table)
}

func (pg *Sink) createSchema() error {
	if pg.Schema == "public" {
		return nil
	}
	sql := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(pg.Schema))
	if _, err := pg.Db.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}
	return nil
}

// Init creates the schema and the table, unless they exist. Existing
// triples are kept.
func (pg *Sink) Init() error {
	if err := pg.createSchema(); err != nil {
		return err
	}
	sql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    subject TEXT NOT NULL,
    predicate TEXT NOT NULL,
    object TEXT NOT NULL,
    object_kind VARCHAR(8) NOT NULL,
    datatype TEXT,
    lang VARCHAR(35)
)`, pg.fullName())
	if _, err := pg.Db.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func row(t rdf.Triple) []interface{} {
	return []interface{}{
		t.Subject,
		t.Predicate,
		t.Object.Value,
		t.Object.Kind.String(),
		nullString(t.Object.Datatype),
		nullString(t.Object.Lang),
	}
}

func (pg *Sink) Write(triples []rdf.Triple) error {
	if len(triples) == 0 {
		return nil
	}
	pg.mu.Lock()
	defer pg.mu.Unlock()

	tx, err := pg.Db.Begin()
	if err != nil {
		return err
	}
	defer rollbackIfTx(&tx)

	copySQL := pq.CopyInSchema(pg.Schema, pg.Table, columns...)
	stmt, err := tx.Prepare(copySQL)
	if err != nil {
		return &SQLError{copySQL, err}
	}
	for _, t := range triples {
		if _, err := stmt.Exec(row(t)...); err != nil {
			stmt.Close()
			return &SQLError{copySQL, err}
		}
	}
	// flushes the COPY buffer
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return &SQLError{copySQL, err}
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	tx = nil
	pg.count += int64(len(triples))
	return nil
}

// Count returns the number of committed triples.
func (pg *Sink) Count() int64 {
	pg.mu.Lock()
	defer pg.mu.Unlock()
	return pg.count
}

func (pg *Sink) Close() error {
	return pg.Db.Close()
}

func rollbackIfTx(tx **sql.Tx) {
	if *tx != nil {
		if err := (*tx).Rollback(); err != nil {
			log.Println("[error] rollback failed:", err)
		}
	}
}

func init() {
	database.Register("postgres", New)
	database.Register("postgis", New)
	database.Register("postgresql", New)
}
