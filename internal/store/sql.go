package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"StockPredictor/internal/model"
)

// Dialect selects the SQL flavour of the backing database.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// rows per INSERT statement
const insertBatch = 200

const mysqlAccessDenied = 1045
const mysqlBadDB = 1049

// Compile-time interface check.
var _ PriceStore = (*SQLStore)(nil)

// SQLStore persists price tables through database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	name    string
}

// MySQLOptions are the connection settings for a MySQL server.
type MySQLOptions struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// OpenSQLite opens (or creates) the SQLite database at path.
func OpenSQLite(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	// single writer; keeps read-after-write on one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Msg: "set WAL mode", Err: err}
	}

	log.Printf("[INFO] sqlite store opened: %s", path)
	return &SQLStore{db: db, dialect: DialectSQLite, name: path}, nil
}

// OpenMySQL connects to a MySQL server and verifies the credentials and database.
func OpenMySQL(ctx context.Context, opts MySQLOptions) (*SQLStore, error) {
	cfg := mysql.NewConfig()
	cfg.User = opts.User
	cfg.Passwd = opts.Password
	cfg.Net = "tcp"
	port := opts.Port
	if port == "" {
		port = "3306"
	}
	cfg.Addr = net.JoinHostPort(opts.Host, port)
	cfg.DBName = opts.Database

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &StorageError{Op: "connect", Msg: diagnoseMySQL(err), Err: err}
	}

	log.Printf("[INFO] mysql store connected: %s/%s", cfg.Addr, opts.Database)
	return &SQLStore{db: db, dialect: DialectMySQL, name: opts.Database}, nil
}

func diagnoseMySQL(err error) string {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return ""
	}
	switch me.Number {
	case mysqlAccessDenied:
		return "Something is wrong with your user name or password"
	case mysqlBadDB:
		return "Something is wrong with your database or does not exist"
	}
	return ""
}

// Describe names the database and the table a symbol is stored in.
func (s *SQLStore) Describe(symbol string) string {
	return "Database name: " + s.name + ", Table name: " + symbol
}

// createTableSQL uses DOUBLE on MySQL, where FLOAT is single precision.
// SQLite stores FLOAT as an 8-byte REAL already.
func (s *SQLStore) createTableSQL(table string) string {
	num := "FLOAT"
	if s.dialect == DialectMySQL {
		num = "DOUBLE"
	}
	ddl := "CREATE TABLE IF NOT EXISTS `" + table + "` (" +
		"`date` BIGINT NOT NULL," +
		"`open` " + num + " NOT NULL," +
		"`high` " + num + " NOT NULL," +
		"`low` " + num + " NOT NULL," +
		"`close` " + num + " NOT NULL," +
		"`AdjClose` " + num + " NOT NULL," +
		"`volume` BIGINT NOT NULL," +
		"PRIMARY KEY (`date`))"
	if s.dialect == DialectMySQL {
		ddl += " ENGINE=InnoDB"
	}
	return ddl
}

func (s *SQLStore) EnsureTable(ctx context.Context, symbol string) error {
	if err := ValidateTableName(symbol); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.createTableSQL(symbol)); err != nil {
		return &StorageError{Op: "create table", Table: symbol, Err: err}
	}
	return nil
}

func (s *SQLStore) ReplaceSeries(ctx context.Context, symbol string, records []model.PriceRecord) error {
	if err := ValidateTableName(symbol); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin", Table: symbol, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM `"+symbol+"`"); err != nil {
		return &StorageError{Op: "clear", Table: symbol, Err: err}
	}

	for start := 0; start < len(records); start += insertBatch {
		end := start + insertBatch
		if end > len(records) {
			end = len(records)
		}
		query, args := insertStatement(symbol, records[start:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return &StorageError{Op: "insert", Table: symbol, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "commit", Table: symbol, Err: err}
	}
	return nil
}

func insertStatement(table string, batch []model.PriceRecord) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO `" + table + "` (`date`,`open`,`high`,`low`,`close`,`AdjClose`,`volume`) VALUES ")
	args := make([]any, 0, len(batch)*7)
	for i, r := range batch {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("(?,?,?,?,?,?,?)")
		args = append(args, r.Date, r.Open, r.High, r.Low, r.Close, r.AdjClose, r.Volume)
	}
	return b.String(), args
}

func (s *SQLStore) LoadSeries(ctx context.Context, symbol string) (model.SymbolSeries, error) {
	if err := ValidateTableName(symbol); err != nil {
		return model.SymbolSeries{}, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT `date`,`open`,`high`,`low`,`close`,`AdjClose`,`volume` FROM `"+symbol+"` ORDER BY `date`")
	if err != nil {
		return model.SymbolSeries{}, &StorageError{Op: "query", Table: symbol, Err: err}
	}
	defer rows.Close()

	series := model.SymbolSeries{Symbol: symbol}
	for rows.Next() {
		var r model.PriceRecord
		if err := rows.Scan(&r.Date, &r.Open, &r.High, &r.Low, &r.Close, &r.AdjClose, &r.Volume); err != nil {
			return model.SymbolSeries{}, &StorageError{Op: "scan", Table: symbol, Err: err}
		}
		series.Records = append(series.Records, r)
	}
	if err := rows.Err(); err != nil {
		return model.SymbolSeries{}, &StorageError{Op: "query", Table: symbol, Err: err}
	}
	return series, nil
}

func (s *SQLStore) LoadPoints(ctx context.Context, symbol string) ([]model.Point, error) {
	if err := ValidateTableName(symbol); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT `date`,`close` FROM `"+symbol+"` ORDER BY `date`")
	if err != nil {
		return nil, &StorageError{Op: "query", Table: symbol, Err: err}
	}
	defer rows.Close()

	var pts []model.Point
	for rows.Next() {
		var p model.Point
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, &StorageError{Op: "scan", Table: symbol, Err: err}
		}
		pts = append(pts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query", Table: symbol, Err: err}
	}
	return pts, nil
}

func (s *SQLStore) Close() error {
	log.Printf("[INFO] closing %s store", s.dialect)
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
