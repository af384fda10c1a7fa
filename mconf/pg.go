package mconf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/log/zerologadapter"
	"github.com/jackc/pgx/v4/pgxpool"
)

var bg = context.Background()

// SQLSTATE for a relation that does not exist.
const pgUndefinedTable = "42P01"

// type pgSource struct {{{

type pgSource struct {
	uri   string
	table string

	// Stores the *pgxpool.Pool once connected.
	//
	// An atomic so a close() racing a load does not need a lock.
	db atomic.Value

	// Do not access directly, use atomics.
	closed uint32
} // }}}

// func PG {{{

// PG makes a Source out of a Postgres key/value table.
//
// The table needs key and value text columns. Keys may be dotted or
// underscored paths, both land as underscore-joined flat keys,
// lowercased. Values run through the same conversion as ini and
// environment values.
//
// The connection pool opens on the first load and stays for reloads
// until the Resolver's Close. A table that does not exist loads as
// ErrMissing, same as a file that is not there.
func PG(uri, table string) Source {
	return &pgSource{
		uri:   uri,
		table: table,
	}
} // }}}

// func pgSource.describe {{{

func (s *pgSource) describe() string {
	return "PG:" + s.uri + "#" + s.table
} // }}}

// func pgSource.load {{{

func (s *pgSource) load(r *Resolver) (map[string]any, error) {
	fl := r.l.With().Str("func", "pg.load").Str("table", s.table).Logger()

	db, err := s.connect(r)
	if err != nil {
		fl.Err(err).Msg("connect")
		return nil, s.missingOr(err)
	}

	// The query was prepared at connect for every pool connection.
	rows, err := db.Query(bg, "kvload")
	if err != nil {
		fl.Err(err).Msg("kvload")
		return nil, s.missingOr(err)
	}

	out := map[string]any{}

	var key, value string

	for rows.Next() {
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			fl.Err(err).Msg("kvload-rows-scan")
			return nil, err
		}

		// Dotted paths mean the same as underscored ones here, the
		// flat namespace only knows underscores.
		key = strings.ToLower(strings.ReplaceAll(key, ".", "_"))

		out[key] = r.convert(value)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		fl.Err(err).Msg("kvload-rows")
		return nil, err
	}

	fl.Debug().Int("keys", len(out)).Send()

	return out, nil
} // }}}

// func pgSource.connect {{{

// Returns the pool, connecting on the first call.
//
// Loads it from an atomic value so that load and close can race
// without causing issues.
func (s *pgSource) connect(r *Resolver) (*pgxpool.Pool, error) {
	if db, ok := s.db.Load().(*pgxpool.Pool); ok {
		return db, nil
	}

	if atomic.LoadUint32(&s.closed) == 1 {
		return nil, errors.New("Source closed")
	}

	// The table name goes into the query by hand, so only a plain
	// identifier gets through.
	if !validTable(s.table) {
		return nil, fmt.Errorf("Invalid table name: %q", s.table)
	}

	poolConf, err := pgxpool.ParseConfig(s.uri)
	if err != nil {
		return nil, err
	}

	// Set the log level properly.
	cc := poolConf.ConnConfig
	cc.LogLevel = pgx.LogLevelInfo
	cc.Logger = zerologadapter.NewLogger(r.l)

	query := "SELECT key, value FROM " + s.table

	// So that each connection creates our prepared statement.
	//
	// This also means a table that is not there fails right here at
	// connect, before anything ever queries.
	poolConf.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Prepare(ctx, "kvload", query); err != nil {
			return err
		}

		return nil
	}

	db, err := pgxpool.ConnectConfig(bg, poolConf)
	if err != nil {
		return nil, err
	}

	s.db.Store(db)

	return db, nil
} // }}}

// func pgSource.close {{{

func (s *pgSource) close() {
	if !atomic.CompareAndSwapUint32(&s.closed, 0, 1) {
		return
	}

	if db, ok := s.db.Load().(*pgxpool.Pool); ok {
		db.Close()
	}
} // }}}

// func pgSource.missingOr {{{

// A relation that does not exist is a missing source, the same thing a
// nonexistent file is, and obeys SkipMissing. Everything else stays
// what it was.
func (s *pgSource) missingOr(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return fmt.Errorf("%w: %s", ErrMissing, s.describe())
	}

	return err
} // }}}

// func validTable {{{

// A plain identifier, optionally schema qualified: letters,
// digits, underscores, at most one dot, nothing starting with a digit.
func validTable(name string) bool {
	if name == "" {
		return false
	}

	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return false
	}

	for _, p := range parts {
		if p == "" {
			return false
		}

		for i := 0; i < len(p); i++ {
			c := p[i]

			switch {
			case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			case i > 0 && c >= '0' && c <= '9':
			default:
				return false
			}
		}
	}

	return true
} // }}}
