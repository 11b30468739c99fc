// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const dfltListLimit = 20

type Database struct {
	db *sql.DB
}

func (database *Database) createEvaluationTable() error {
	_, err := database.db.Exec(
		"CREATE TABLE evaluation (" +
			"id TEXT PRIMARY KEY NOT NULL, " +
			"datetime INTEGER NOT NULL, " +
			"model TEXT NOT NULL, " +
			"input TEXT NOT NULL, " +
			"num_rows INTEGER NOT NULL, " +
			"tn INTEGER NOT NULL, " +
			"fp INTEGER NOT NULL, " +
			"fn INTEGER NOT NULL, " +
			"tp INTEGER NOT NULL" +
			")",
	)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	log.Info().Msg("created table `evaluation`")
	return nil
}

func (database *Database) tableExists(tn string) (bool, error) {
	ans := database.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tn)
	var nm sql.NullString
	err := ans.Scan(&nm)
	if err == sql.ErrNoRows {
		return false, nil

	} else if err != nil {
		return false, fmt.Errorf("failed to determine existence of table %s: %w", tn, err)
	}
	return true, nil
}

// Init creates missing tables. It is safe to call it repeatedly.
func (database *Database) Init() error {
	ex, err := database.tableExists("evaluation")
	if err != nil {
		return fmt.Errorf("failed to init table evaluation: %w", err)
	}
	if ex {
		log.Debug().Str("table", "evaluation").Msg("table already exists")

	} else {
		if err := database.createEvaluationTable(); err != nil {
			return fmt.Errorf("failed to create table evaluation: %w", err)
		}
	}
	return nil
}

// AddEvaluation stores a new evaluation record. Empty ID and zero
// Datetime are generated.
func (database *Database) AddEvaluation(rec EvalRecord) (EvalRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Datetime.IsZero() {
		rec.Datetime = time.Now()
	}
	_, err := database.db.Exec(
		"INSERT INTO evaluation (id, datetime, model, input, num_rows, tn, fp, fn, tp) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID,
		rec.Datetime.Unix(),
		rec.Model,
		rec.Input,
		rec.NumRows,
		rec.Matrix.TN,
		rec.Matrix.FP,
		rec.Matrix.FN,
		rec.Matrix.TP,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to add evaluation: %w", err)
	}
	return rec, nil
}

// GetLatestEvaluations returns stored evaluations, the newest first
func (database *Database) GetLatestEvaluations(filter ListFilter) ([]EvalRecord, error) {
	query := "SELECT id, datetime, model, input, num_rows, tn, fp, fn, tp " +
		"FROM evaluation WHERE %s ORDER BY datetime DESC, rowid DESC LIMIT ?"
	whereChunks := make([]string, 0, 2)
	whereChunks = append(whereChunks, "1 = 1")
	args := make([]any, 0, 2)
	if filter.Model != nil {
		whereChunks = append(whereChunks, "model = ?")
		args = append(args, *filter.Model)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = dfltListLimit
	}
	args = append(args, limit)

	rows, err := database.db.Query(fmt.Sprintf(query, strings.Join(whereChunks, " AND ")), args...)
	if err != nil {
		return []EvalRecord{}, fmt.Errorf("failed to fetch evaluations: %w", err)
	}
	defer rows.Close()
	ans := make([]EvalRecord, 0, limit)
	for rows.Next() {
		var rec EvalRecord
		var dt int64
		err := rows.Scan(
			&rec.ID,
			&dt,
			&rec.Model,
			&rec.Input,
			&rec.NumRows,
			&rec.Matrix.TN,
			&rec.Matrix.FP,
			&rec.Matrix.FN,
			&rec.Matrix.TP,
		)
		if err != nil {
			return []EvalRecord{}, fmt.Errorf("failed to fetch evaluations: %w", err)
		}
		rec.Datetime = time.Unix(dt, 0)
		ans = append(ans, rec)
	}
	if err := rows.Err(); err != nil {
		return []EvalRecord{}, fmt.Errorf("failed to fetch evaluations: %w", err)
	}
	return ans, nil
}

func (database *Database) Close() error {
	return database.db.Close()
}

func NewDatabase(path string) (*Database, error) {
	dbConn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open evaluation database: %w", err)
	}
	return &Database{db: dbConn}, nil
}
