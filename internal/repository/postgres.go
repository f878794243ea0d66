package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/giulianni/lawfirm-ai-back/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the tasks, documents, templates and audit
// repositories on a shared pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func (r *PostgresRepository) UpsertTask(ctx context.Context, record *domain.TaskRecord) error {
	result, err := encodeJSONMap(record.Result)
	if err != nil {
		return fmt.Errorf("encode task result: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO ai_tasks (
			id,
			status,
			details,
			error_message,
			result,
			crew_type,
			user_id,
			created_at,
			last_updated
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			details = EXCLUDED.details,
			error_message = EXCLUDED.error_message,
			result = EXCLUDED.result,
			crew_type = EXCLUDED.crew_type,
			user_id = EXCLUDED.user_id,
			last_updated = EXCLUDED.last_updated
	`,
		record.ID,
		string(record.Status),
		nullableText(record.Details),
		nullableText(record.ErrorMessage),
		result,
		nullableText(string(record.CrewType)),
		nullableText(record.UserID),
		record.CreatedAt,
		record.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetTask(ctx context.Context, taskID string) (*domain.TaskRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, status, details, error_message, result, crew_type, user_id, created_at, last_updated
		FROM ai_tasks
		WHERE id = $1
	`, taskID)

	var record domain.TaskRecord
	var status string
	var details, errorMessage, crewType, userID *string
	var result []byte

	err := row.Scan(
		&record.ID,
		&status,
		&details,
		&errorMessage,
		&result,
		&crewType,
		&userID,
		&record.CreatedAt,
		&record.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select task: %w", err)
	}

	record.Status = domain.TaskStatus(status)
	record.Details = derefText(details)
	record.ErrorMessage = derefText(errorMessage)
	record.CrewType = domain.CrewType(derefText(crewType))
	record.UserID = derefText(userID)
	if len(result) > 0 {
		if err := json.Unmarshal(result, &record.Result); err != nil {
			return nil, fmt.Errorf("decode task result: %w", err)
		}
	}
	return &record, nil
}

func (r *PostgresRepository) InsertDocument(ctx context.Context, document *domain.GeneratedDocument) (string, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO generated_documents (
			id,
			case_id,
			filename,
			storage_path,
			size_bytes,
			mime_type,
			bucket,
			generated_at,
			user_id,
			document_type,
			description,
			task_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id
	`,
		document.ID,
		document.CaseID,
		document.Filename,
		document.StoragePath,
		document.SizeBytes,
		document.MimeType,
		document.Bucket,
		document.GeneratedAt,
		nullableText(document.UserID),
		document.DocumentType,
		document.Description,
		document.TaskID,
	)

	var insertedID string
	if err := row.Scan(&insertedID); err != nil {
		return "", fmt.Errorf("insert generated document: %w", err)
	}
	return insertedID, nil
}

func (r *PostgresRepository) GetDocument(ctx context.Context, documentID string) (*domain.GeneratedDocument, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, case_id, filename, storage_path, size_bytes, mime_type, bucket, generated_at, user_id, document_type, description, task_id
		FROM generated_documents
		WHERE id = $1
	`, documentID)

	document, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select generated document: %w", err)
	}
	return document, nil
}

func (r *PostgresRepository) ListCaseDocuments(ctx context.Context, caseID string) ([]domain.GeneratedDocument, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, filename, storage_path, size_bytes, mime_type, bucket, generated_at, user_id, document_type, description, task_id
		FROM generated_documents
		WHERE case_id = $1
		ORDER BY generated_at DESC
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case documents: %w", err)
	}
	defer rows.Close()

	items := make([]domain.GeneratedDocument, 0)
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case document: %w", err)
		}
		items = append(items, *document)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case documents: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) GetTemplate(ctx context.Context, templateID string) (*domain.DocumentTemplate, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, content, updated_at
		FROM document_templates
		WHERE id = $1
	`, templateID)

	var template domain.DocumentTemplate
	err := row.Scan(&template.ID, &template.Name, &template.Content, &template.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select template: %w", err)
	}
	return &template, nil
}

func (r *PostgresRepository) InsertAuditEvent(ctx context.Context, event *domain.AuditEvent) error {
	details, err := encodeJSONMap(event.Details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, resource_type, resource_id, details, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		event.ID,
		nullableText(event.UserID),
		event.Action,
		event.ResourceType,
		nullableText(event.ResourceID),
		details,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListAuditEvents(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	query := `
		SELECT id, user_id, action, resource_type, resource_id, details, created_at
		FROM audit_logs
		WHERE ($1 = '' OR user_id = $1)
		  AND ($2 = '' OR action = $2)
		  AND ($3 = '' OR resource_type = $3)
		  AND ($4::timestamptz IS NULL OR created_at >= $4)
		  AND ($5::timestamptz IS NULL OR created_at <= $5)
		ORDER BY created_at DESC
		LIMIT $6
	`
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, query,
		filter.UserID,
		filter.Action,
		filter.ResourceType,
		filter.From,
		filter.To,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	items := make([]domain.AuditEvent, 0)
	for rows.Next() {
		var event domain.AuditEvent
		var userID, resourceID *string
		var details []byte
		err := rows.Scan(&event.ID, &userID, &event.Action, &event.ResourceType, &resourceID, &details, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.UserID = derefText(userID)
		event.ResourceID = derefText(resourceID)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return items, nil
}

func scanDocument(row pgx.Row) (*domain.GeneratedDocument, error) {
	var document domain.GeneratedDocument
	var userID *string
	err := row.Scan(
		&document.ID,
		&document.CaseID,
		&document.Filename,
		&document.StoragePath,
		&document.SizeBytes,
		&document.MimeType,
		&document.Bucket,
		&document.GeneratedAt,
		&userID,
		&document.DocumentType,
		&document.Description,
		&document.TaskID,
	)
	if err != nil {
		return nil, err
	}
	document.UserID = derefText(userID)
	return &document, nil
}

func encodeJSONMap(value map[string]any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func nullableText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func derefText(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
