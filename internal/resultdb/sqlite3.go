// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resultdb

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func init() {
	openHooks["sqlite3"] = func(db *sql.DB) error {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
		_, err := db.Exec("PRAGMA foreign_keys = ON")
		return err
	}
}
