// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resultdb exports measurements and their summaries to a SQL
// database.
package resultdb

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/aclements/go-gg/table"

	"github.com/cachelab/counterstat/counterfmt"
	"github.com/cachelab/counterstat/counterproc"
)

// DB is a result database. It's safe for concurrent use by multiple
// goroutines.
type DB struct {
	sql *sql.DB
	// prepared statements
	insertRun         *sql.Stmt
	insertMeasurement *sql.Stmt
	insertSummary     *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Dir VARCHAR(1024)
);
CREATE TABLE IF NOT EXISTS Measurements (
	RunID BIGINT UNSIGNED,
	RowNum BIGINT UNSIGNED,
	Part VARCHAR(255),
	Scenario VARCHAR(255),
	Kind VARCHAR(255),
	Size BIGINT,
	Metric VARCHAR(255),
	Value DOUBLE,
	PRIMARY KEY (RunID, RowNum, Metric),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Summaries (
	RunID BIGINT UNSIGNED,
	Part VARCHAR(255),
	Scenario VARCHAR(255),
	Kind VARCHAR(255),
	Size BIGINT,
	Metric VARCHAR(255),
	Mean DOUBLE,
	Std DOUBLE,
{{if not .sqlite3}}
	Index (Metric(100), Size),
{{end}}
	PRIMARY KEY (RunID, Part, Scenario, Kind, Size, Metric),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS SummariesMetricSize ON Summaries(Metric, Size);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Dir) VALUES (?)")
	if err != nil {
		return err
	}
	db.insertMeasurement, err = db.sql.Prepare("INSERT INTO Measurements(RunID, RowNum, Part, Scenario, Kind, Size, Metric, Value) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertSummary, err = db.sql.Prepare("INSERT INTO Summaries(RunID, Part, Scenario, Kind, Size, Metric, Mean, Std) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// tags holds the tag columns of a measurement or summary table.
type tags struct {
	part, scenario, kind []string
	size                 []int
}

func tagColumns(t *table.Table) (tags, error) {
	var tg tags
	var ok bool
	for _, c := range []struct {
		col string
		dst *[]string
	}{
		{counterfmt.ColPart, &tg.part},
		{counterfmt.ColScenario, &tg.scenario},
		{counterfmt.ColKind, &tg.kind},
	} {
		if *c.dst, ok = t.Column(c.col).([]string); !ok {
			return tg, &counterproc.ColumnError{Col: c.col, Msg: "missing or not a string column"}
		}
	}
	if tg.size, ok = t.Column(counterfmt.ColSize).([]int); !ok {
		return tg, &counterproc.ColumnError{Col: counterfmt.ColSize, Msg: "missing or not an integer column"}
	}
	return tg, nil
}

// value maps values SQL cannot store to NULL.
func value(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

// InsertRun records one run of the pipeline over dir: every metric
// of every measurement row, and the mean and standard deviation of
// every metric of every summary row. The run is inserted in a single
// transaction. InsertRun returns the new run's ID.
func (db *DB) InsertRun(ctx context.Context, dir string, rows, summary *table.Table, metrics []string) (id int64, err error) {
	rowTags, err := tagColumns(rows)
	if err != nil {
		return 0, err
	}
	sumTags, err := tagColumns(summary)
	if err != nil {
		return 0, err
	}
	values := make([][]float64, len(metrics))
	means := make([][]float64, len(metrics))
	stds := make([][]float64, len(metrics))
	for i, m := range metrics {
		if values[i], err = counterproc.Values(rows, m); err != nil {
			return 0, err
		}
		if means[i], err = counterproc.Values(summary, m); err != nil {
			return 0, err
		}
		if stds[i], err = counterproc.Values(summary, m+counterproc.StdSuffix); err != nil {
			return 0, err
		}
	}

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.StmtContext(ctx, db.insertRun).ExecContext(ctx, dir)
	if err != nil {
		return 0, err
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, err
	}

	insM := tx.StmtContext(ctx, db.insertMeasurement)
	for r := 0; r < rows.Len(); r++ {
		for i, m := range metrics {
			if _, err = insM.ExecContext(ctx, id, r, rowTags.part[r], rowTags.scenario[r], rowTags.kind[r], rowTags.size[r], m, value(values[i][r])); err != nil {
				return 0, err
			}
		}
	}
	insS := tx.StmtContext(ctx, db.insertSummary)
	for r := 0; r < summary.Len(); r++ {
		for i, m := range metrics {
			if _, err = insS.ExecContext(ctx, id, sumTags.part[r], sumTags.scenario[r], sumTags.kind[r], sumTags.size[r], m, value(means[i][r]), value(stds[i][r])); err != nil {
				return 0, err
			}
		}
	}
	return id, nil
}

// CountRuns returns the number of runs stored in the database.
func (db *DB) CountRuns(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertRun, db.insertMeasurement, db.insertSummary} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
