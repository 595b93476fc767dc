package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/legalease-app/backend/internal/core/domain"
)

const contractColumns = `
id, owner_id, title, description, file_name, file_size, file_type, storage_path,
status, error_message, extracted_text, analysis_summary,
extracted_clauses, risk_assessment, analysis_metadata,
uploaded_at, analyzed_at, updated_at`

type ContractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ContractRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS contracts (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	file_name TEXT NOT NULL,
	file_size BIGINT NOT NULL,
	file_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	extracted_text TEXT NOT NULL DEFAULT '',
	analysis_summary TEXT NOT NULL DEFAULT '',
	extracted_clauses JSONB NOT NULL DEFAULT '[]'::jsonb,
	risk_assessment JSONB,
	analysis_metadata JSONB,
	uploaded_at TIMESTAMPTZ NOT NULL,
	analyzed_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contracts_owner ON contracts(owner_id, uploaded_at DESC);
CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ContractRepository) Create(ctx context.Context, c *domain.Contract) error {
	clausesJSON, err := json.Marshal(c.ExtractedClauses)
	if err != nil {
		return fmt.Errorf("marshal clauses: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO contracts (
	id, owner_id, title, description, file_name, file_size, file_type, storage_path,
	status, error_message, extracted_text, analysis_summary, extracted_clauses,
	uploaded_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
`,
		c.ID, c.OwnerID, c.Title, c.Description, c.FileName, c.FileSize, string(c.FileType), c.StoragePath,
		string(c.Status), c.Error, c.ExtractedText, c.AnalysisSummary, clausesJSON,
		c.UploadedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id string) (*domain.Contract, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+contractColumns+`
FROM contracts
WHERE id = $1
`, id)
	return scanContract(row, id)
}

func (r *ContractRepository) GetByOwner(ctx context.Context, ownerID, id string) (*domain.Contract, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+contractColumns+`
FROM contracts
WHERE id = $1 AND owner_id = $2
`, id, ownerID)
	return scanContract(row, id)
}

func (r *ContractRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.ContractSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, description, file_type, file_size, status, uploaded_at, analyzed_at
FROM contracts
WHERE owner_id = $1
ORDER BY uploaded_at DESC
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ContractSummary, 0)
	for rows.Next() {
		var s domain.ContractSummary
		var fileType, status string
		var analyzedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &fileType, &s.FileSize, &status, &s.UploadedAt, &analyzedAt); err != nil {
			return nil, fmt.Errorf("scan contract summary: %w", err)
		}
		s.FileType = domain.FileType(fileType)
		s.Status = domain.ContractStatus(status)
		if analyzedAt.Valid {
			at := analyzedAt.Time
			s.AnalyzedAt = &at
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contract summaries: %w", err)
	}
	return out, nil
}

func (r *ContractRepository) UpdateDetails(ctx context.Context, ownerID, id string, title, description *string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE contracts
SET title = COALESCE($3, title),
    description = COALESCE($4, description),
    updated_at = $5
WHERE id = $1 AND owner_id = $2
`, id, ownerID, title, description, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update contract details: %w", err)
	}
	return requireRow(res, "update contract details", id)
}

func (r *ContractRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM contracts
WHERE id = $1 AND owner_id = $2
`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	return requireRow(res, "delete contract", id)
}

// UpdateStatus moves a contract along its lifecycle. Terminal statuses are
// never rewound: a late or duplicate pipeline write against an analyzed or
// errored contract affects zero rows and reports a conflict.
func (r *ContractRepository) UpdateStatus(ctx context.Context, id string, status domain.ContractStatus, errMessage string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE contracts
SET status = $2,
    error_message = $3,
    analyzed_at = CASE WHEN $2 = 'analyzed' THEN $4 ELSE analyzed_at END,
    updated_at = $4
WHERE id = $1 AND (status = $2 OR status NOT IN ('analyzed', 'error'))
`, id, string(status), errMessage, now)
	if err != nil {
		return fmt.Errorf("update contract status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update contract status rows: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM contracts WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check contract exists: %w", err)
		}
		if !exists {
			return domain.WrapError(domain.ErrContractNotFound, "update contract status", errors.New(id))
		}
		return domain.WrapError(domain.ErrInvalidInput, "update contract status", fmt.Errorf("contract %s already in a terminal status", id))
	}
	return nil
}

func (r *ContractRepository) SaveExtractedText(ctx context.Context, id string, text string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE contracts
SET extracted_text = $2, updated_at = $3
WHERE id = $1
`, id, text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save extracted text: %w", err)
	}
	return requireRow(res, "save extracted text", id)
}

func (r *ContractRepository) SaveClauses(ctx context.Context, id string, groups []domain.ClauseGroup) error {
	if groups == nil {
		groups = []domain.ClauseGroup{}
	}
	clausesJSON, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("marshal clauses: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE contracts
SET extracted_clauses = $2, updated_at = $3
WHERE id = $1
`, id, clausesJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save clauses: %w", err)
	}
	return requireRow(res, "save clauses", id)
}

func (r *ContractRepository) SaveAnalysis(ctx context.Context, id string, result domain.AnalysisResult) error {
	clauses := result.Clauses
	if clauses == nil {
		clauses = []domain.ClauseGroup{}
	}
	clausesJSON, err := json.Marshal(clauses)
	if err != nil {
		return fmt.Errorf("marshal clauses: %w", err)
	}
	var riskJSON []byte
	if result.Risk != nil {
		riskJSON, err = json.Marshal(result.Risk)
		if err != nil {
			return fmt.Errorf("marshal risk assessment: %w", err)
		}
	}
	metaJSON, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("marshal analysis metadata: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE contracts
SET status = 'analyzed',
    error_message = '',
    extracted_clauses = $2,
    risk_assessment = $3,
    analysis_summary = $4,
    analysis_metadata = $5,
    analyzed_at = $6,
    updated_at = $6
WHERE id = $1 AND status NOT IN ('analyzed', 'error')
`, id, clausesJSON, riskJSON, result.Summary, metaJSON, result.AnalyzedAt)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save analysis rows: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "save analysis", fmt.Errorf("contract %s is not processing", id))
	}
	return nil
}

func scanContract(row *sql.Row, id string) (*domain.Contract, error) {
	var c domain.Contract
	var fileType, status string
	var clausesRaw []byte
	var riskRaw, metaRaw []byte
	var analyzedAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.FileName, &c.FileSize, &fileType, &c.StoragePath,
		&status, &c.Error, &c.ExtractedText, &c.AnalysisSummary,
		&clausesRaw, &riskRaw, &metaRaw,
		&c.UploadedAt, &analyzedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrContractNotFound, "get contract", errors.New(id))
		}
		return nil, fmt.Errorf("scan contract: %w", err)
	}

	c.FileType = domain.FileType(fileType)
	c.Status = domain.ContractStatus(status)
	if analyzedAt.Valid {
		at := analyzedAt.Time
		c.AnalyzedAt = &at
	}
	if err := json.Unmarshal(clausesRaw, &c.ExtractedClauses); err != nil {
		return nil, fmt.Errorf("unmarshal clauses: %w", err)
	}
	if len(riskRaw) > 0 && string(riskRaw) != "null" {
		c.RiskAssessment = &domain.RiskAssessment{}
		if err := json.Unmarshal(riskRaw, c.RiskAssessment); err != nil {
			return nil, fmt.Errorf("unmarshal risk assessment: %w", err)
		}
	}
	if len(metaRaw) > 0 && string(metaRaw) != "null" {
		c.Metadata = &domain.AnalysisMetadata{}
		if err := json.Unmarshal(metaRaw, c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal analysis metadata: %w", err)
		}
	}
	return &c, nil
}

func requireRow(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrContractNotFound, operation, errors.New(id))
	}
	return nil
}
