package repository

// A minimal scriptable database/sql driver for exercising repository
// logic that depends on driver results (rows affected, returned rows)
// without a MySQL server.  Each test builds a stubConn with the
// statement results it expects, in execution order; the conn records
// every statement so tests can assert what was sent.

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
)

// stubResult is one scripted answer to an Exec statement.
type stubResult struct {
	lastInsertID int64
	rowsAffected int64
	err          error
}

func (r stubResult) LastInsertId() (int64, error) { return r.lastInsertID, nil }
func (r stubResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// stubRows is one scripted answer to a Query statement.
type stubRows struct {
	cols []string
	rows [][]driver.Value
	i    int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.i])
	r.i++
	return nil
}

type stubConn struct {
	execs   []stubResult // consumed front to back by ExecContext
	queries []*stubRows  // consumed front to back by QueryContext
	execLog []string     // every Exec statement, in order
	queryLog []string    // every Query statement, in order
}

var errScriptExhausted = errors.New("stub driver: no scripted result left")

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("stub driver: prepare not supported")
}
func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }
func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.execLog = append(c.execLog, query)
	if len(c.execs) == 0 {
		return nil, errScriptExhausted
	}
	res := c.execs[0]
	c.execs = c.execs[1:]
	if res.err != nil {
		return nil, res.err
	}
	return res, nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.queryLog = append(c.queryLog, query)
	if len(c.queries) == 0 {
		return nil, errScriptExhausted
	}
	rows := c.queries[0]
	c.queries = c.queries[1:]
	return rows, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("stub driver: use sql.OpenDB")
}

// openStubDB wires a stubConn into a *sql.DB restricted to a single
// connection, so statements hit the scripted conn in order.
func openStubDB(t *testing.T, conn *stubConn) *sql.DB {
	t.Helper()
	db := sql.OpenDB(stubConnector{conn: conn})
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
