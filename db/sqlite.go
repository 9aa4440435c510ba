package db

import (
	"database/sql"
	"errors"
	"time"

	"astromon/survival"
	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB initializes the SQLite database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        status VARCHAR(10) NOT NULL,
        confidence REAL NOT NULL,
        risk_level VARCHAR(10) NOT NULL,
        field_count INTEGER NOT NULL,
        provided_fields TEXT,
        created_at DATETIME NOT NULL
    );
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        samples INTEGER NOT NULL,
        features INTEGER NOT NULL,
        alive_count INTEGER NOT NULL,
        dead_count INTEGER NOT NULL,
        accuracy REAL NOT NULL,
        trained_at DATETIME NOT NULL
    );
    `

	_, err = database.Exec(query)
	return err
}

// Close releases the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// PredictionRecord is one row of prediction history.
type PredictionRecord struct {
	ID             int64              `json:"id"`
	Status         string             `json:"status"`
	Confidence     float64            `json:"confidence"`
	RiskLevel      survival.RiskLevel `json:"risk_level"`
	FieldCount     int                `json:"field_count"`
	ProvidedFields string             `json:"provided_fields"`
	CreatedAt      time.Time          `json:"created_at"`
}

// SavePrediction records a served verdict.
func SavePrediction(verdict survival.Verdict, providedFields string) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO predictions (status, confidence, risk_level, field_count, provided_fields, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		verdict.Status, verdict.Confidence, string(verdict.RiskLevel),
		verdict.Metrics.FieldCount, providedFields, time.Now().UTC())
	return err
}

// QueryPredictions returns the most recent prediction history.
func QueryPredictions(limit int) ([]PredictionRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := database.Query(`
        SELECT id, status, confidence, risk_level, field_count, provided_fields, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var record PredictionRecord
		var level string
		if err := rows.Scan(&record.ID, &record.Status, &record.Confidence, &level,
			&record.FieldCount, &record.ProvidedFields, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.RiskLevel = survival.RiskLevel(level)
		records = append(records, record)
	}
	return records, rows.Err()
}

// TrainingRun is one row of the training log.
type TrainingRun struct {
	Samples    int       `json:"samples"`
	Features   int       `json:"features"`
	AliveCount int       `json:"alive_count"`
	DeadCount  int       `json:"dead_count"`
	Accuracy   float64   `json:"accuracy"`
	TrainedAt  time.Time `json:"trained_at"`
}

// SaveTrainingRun records a completed training call.
func SaveTrainingRun(stats survival.TrainingStats, accuracy float64) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_log (samples, features, alive_count, dead_count, accuracy, trained_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		stats.Samples, stats.Features, stats.AliveCount, stats.DeadCount, accuracy, time.Now().UTC())
	return err
}

// LoadTrainingLog returns all recorded training runs, newest first.
func LoadTrainingLog() ([]TrainingRun, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT samples, features, alive_count, dead_count, accuracy, trained_at
        FROM training_log
        ORDER BY trained_at DESC, id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]TrainingRun, 0)
	for rows.Next() {
		var run TrainingRun
		if err := rows.Scan(&run.Samples, &run.Features, &run.AliveCount, &run.DeadCount, &run.Accuracy, &run.TrainedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
