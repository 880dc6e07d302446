package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/oszuidwest/zwfm-lnkgen/internal/models"
)

const routeScriptsTable = "route_scripts"

// ScriptFilter narrows a script listing. Zero values mean no filter.
type ScriptFilter struct {
	Route   int
	BatchID string
	Limit   int
	Offset  int
}

// ScriptRepository stores generated route scripts.
type ScriptRepository interface {
	Create(ctx context.Context, script *models.RouteScript) error
	GetByUUID(ctx context.Context, uuid string) (*models.RouteScript, error)
	List(ctx context.Context, filter ScriptFilter) ([]models.RouteScript, int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type scriptRepository struct {
	*BaseRepository[models.RouteScript]
}

// NewScriptRepository creates a MySQL backed script repository.
func NewScriptRepository(db *sqlx.DB) ScriptRepository {
	return &scriptRepository{BaseRepository: NewBaseRepository[models.RouteScript](db, routeScriptsTable)}
}

const insertScript = `INSERT INTO route_scripts (
	uuid, batch_id, route, rx_rate, rx_word_length, tx_rate, tx_word_length,
	frame_size, frame_rate, frame_rows, frame_cols, frame_control, frame_count,
	file_name, content, created_by, created_at
) VALUES (
	:uuid, :batch_id, :route, :rx_rate, :rx_word_length, :tx_rate, :tx_word_length,
	:frame_size, :frame_rate, :frame_rows, :frame_cols, :frame_control, :frame_count,
	:file_name, :content, :created_by, :created_at
)`

// Create inserts script and sets its ID.
func (r *scriptRepository) Create(ctx context.Context, script *models.RouteScript) error {
	result, err := r.getQueryable(ctx).NamedExecContext(ctx, insertScript, script)
	if err != nil {
		return ParseDBError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return ParseDBError(err)
	}
	script.ID = id
	return nil
}

func (r *scriptRepository) GetByUUID(ctx context.Context, uuid string) (*models.RouteScript, error) {
	return r.GetBy(ctx, "uuid = ?", uuid)
}

func buildScriptConditions(filter ScriptFilter) (string, []any) {
	conditions := []string{"1 = 1"}
	var args []any
	if filter.Route != 0 {
		conditions = append(conditions, "route = ?")
		args = append(args, filter.Route)
	}
	if filter.BatchID != "" {
		conditions = append(conditions, "batch_id = ?")
		args = append(args, filter.BatchID)
	}
	return strings.Join(conditions, " AND "), args
}

// List returns one page of scripts, newest first, and the total match count.
func (r *scriptRepository) List(ctx context.Context, filter ScriptFilter) ([]models.RouteScript, int64, error) {
	where, args := buildScriptConditions(filter)

	total, err := r.CountBy(ctx, where, args...)
	if err != nil {
		return nil, 0, err
	}
	scripts, err := r.SelectBy(ctx, where, "created_at DESC, id DESC", filter.Limit, filter.Offset, args...)
	if err != nil {
		return nil, 0, err
	}
	return scripts, total, nil
}

// DeleteOlderThan removes scripts created before cutoff.
func (r *scriptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.DeleteBy(ctx, "created_at < ?", cutoff)
}
