package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// HistoryStoreImpl implements contract.HistoryStore over database/sql.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history store for backend and makes sure its tables exist.
// NoneBackend yields a store whose writes are no-ops.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	name, err := driverName(backend)
	if err != nil {
		return nil, err
	}

	dsn := connStr
	switch backend {
	case schema.SQLiteBackend:
		if dsn == "" {
			dsn = contract.GetHistoryDBFilePath()
		}
	case schema.MySQLBackend:
		if dsn, err = mysqlDSN(dsn, false); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Check that the directory is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createTables applies the initial schema. Every statement is idempotent.
func createTables(db *sql.DB, backend schema.DatabaseBackend) error {
	stmts, err := schemaStatements(backend)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// disabled reports whether writes should be skipped.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(analyzer schema.AnalyzerName, target string, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	p := placeholders(hs.backend, 4)
	table := quoteTableName(runsTable, hs.backend)
	args := []any{string(analyzer), target, hs.formatTime(startTime), string(configJSON)}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (analyzer, target, start_time, config_params) VALUES (%s, %s, %s, %s) RETURNING run_id`,
			append([]any{table}, p...)...)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (analyzer, target, start_time, config_params) VALUES (%s, %s, %s, %s)`,
			append([]any{table}, p...)...)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with its score, tier counts and duration.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	if hs.disabled() {
		return nil
	}

	table := quoteTableName(runsTable, hs.backend)
	p := placeholders(hs.backend, 1)
	row := hs.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, table, p[0]), runID)
	startTime, err := hs.scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	var score any
	if summary.Score != nil {
		score = *summary.Score
	}

	p = placeholders(hs.backend, 9)
	query := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, score = %s, failed = %s,
		high_count = %s, medium_count = %s, low_count = %s, files_scanned = %s WHERE run_id = %s`,
		append([]any{table}, p...)...)
	args := []any{
		hs.formatTime(endTime), durationMs, score, summary.Failed,
		summary.Counts.High, summary.Counts.Medium, summary.Counts.Low, summary.FilesScanned, runID,
	}
	if _, err := hs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordFindings stores the findings of a run in one transaction.
func (hs *HistoryStoreImpl) RecordFindings(runID int64, findings []schema.Finding) error {
	if hs.disabled() || len(findings) == 0 {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := placeholders(hs.backend, 7)
	query := fmt.Sprintf(`INSERT INTO %s (run_id, finding_index, file_path, line, tier, category, description)
		VALUES (%s, %s, %s, %s, %s, %s, %s)`, append([]any{quoteTableName(findingsTable, hs.backend)}, p...)...)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range findings {
		if _, err := stmt.Exec(runID, i, f.File, f.Line, string(f.Tier), f.Category, f.Description); err != nil {
			return fmt.Errorf("failed to insert finding %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit findings: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}
		last, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = last
		oldest, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest
	}

	for _, table := range []string{runsTable, findingsTable} {
		var count int64
		row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalFindings = int(status.TableSizes[findingsTable])

	return status, nil
}

// GetAllRuns retrieves every stored run ordered by ID.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, analyzer, target, start_time, end_time, run_duration_ms, score, failed,
		high_count, medium_count, low_count, files_scanned, config_params FROM %s ORDER BY run_id`,
		quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var start, end sql.NullString
		var startTime, endTime sql.NullTime

		dest := []any{&record.RunID, &record.Analyzer, &record.Target}
		if hs.backend == schema.SQLiteBackend {
			dest = append(dest, &start, &end)
		} else {
			dest = append(dest, &startTime, &endTime)
		}
		dest = append(dest, &record.RunDurationMs, &record.Score, &record.Failed,
			&record.HighCount, &record.MediumCount, &record.LowCount, &record.FilesScanned, &record.ConfigParams)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if hs.backend == schema.SQLiteBackend {
			if startTime, err = parseNullTime(start); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTime, err = parseNullTime(end); err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
		}
		record.StartTime = startTime.Time
		if endTime.Valid {
			t := endTime.Time
			record.EndTime = &t
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllFindings retrieves every stored finding ordered by run and position.
func (hs *HistoryStoreImpl) GetAllFindings() ([]schema.FindingRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, file_path, line, tier, category, description FROM %s ORDER BY run_id, finding_index`,
		quoteTableName(findingsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FindingRecord
	for rows.Next() {
		var record schema.FindingRecord
		if err := rows.Scan(&record.RunID, &record.FilePath, &record.Line, &record.Tier, &record.Category, &record.Description); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating findings: %w", err)
	}
	return results, nil
}

// formatTime converts a time.Time to the storage format of the backend.
func (hs *HistoryStoreImpl) formatTime(t time.Time) any {
	if hs.backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// scanTime reads a single time column, parsing SQLite's text encoding.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if hs.backend == schema.SQLiteBackend {
		var raw string
		if err := row.Scan(&raw); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, raw)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

func parseNullTime(s sql.NullString) (sql.NullTime, error) {
	if !s.Valid {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}
