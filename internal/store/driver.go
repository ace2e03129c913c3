package store

import (
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/querysql"
)

// DriverName is the database/sql driver registered by this package.
const DriverName = "sqlite3_sieve"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// pure=true lets SQLite cache results within a statement.
			return conn.RegisterFunc(querysql.FoldFunc, queryir.Fold, true)
		},
	})
}
