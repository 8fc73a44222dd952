package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/framecraft/framecraft/internal/scene"
)

type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	DeleteProject(ctx context.Context, id string) error
	CountProjects(ctx context.Context) (int, error)

	LoadState(ctx context.Context, projectID string) (*State, error)
	SaveState(ctx context.Context, st *State) error
	GetScene(ctx context.Context, id string) (*Scene, error)
	UpdateSceneStatus(ctx context.Context, id string, status SceneStatus, errorMsg string) error

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ListPendingJobs(ctx context.Context) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error
	SetJobOutput(ctx context.Context, id, outputPath string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, fps, width, height, selected_scene_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.FPS, p.Width, p.Height, nullString(p.SelectedSceneID), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	var selected sql.NullString
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, fps, width, height, selected_scene_id, created_at, updated_at
		FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.FPS, &p.Width, &p.Height, &selected, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.SelectedSceneID = selected.String
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) CountProjects(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count)
	return count, err
}

const sceneColumns = `id, name, prompt, duration_in_frames, background_color, elements, generated_code, status, error, created_at, updated_at`

// LoadState reads the project and its scenes in position order. It returns
// nil, nil when the project does not exist.
func (r *SQLiteRepository) LoadState(ctx context.Context, projectID string) (*State, error) {
	p, err := r.GetProject(ctx, projectID)
	if err != nil || p == nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sceneColumns+`
		FROM scenes WHERE project_id = ? ORDER BY position ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	st := &State{Project: *p, Scenes: []*Scene{}}
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		st.Scenes = append(st.Scenes, s)
	}
	return st, rows.Err()
}

// SaveState replaces the stored project row and its scene list in one
// transaction. Scene positions follow slice order.
func (r *SQLiteRepository) SaveState(ctx context.Context, st *State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p := st.Project
	res, err := tx.ExecContext(ctx, `
		UPDATE projects SET name = ?, fps = ?, width = ?, height = ?, selected_scene_id = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.FPS, p.Width, p.Height, nullString(p.SelectedSceneID), formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, fps, width, height, selected_scene_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, p.FPS, p.Width, p.Height, nullString(p.SelectedSceneID), formatTime(p.CreatedAt), formatTime(p.UpdatedAt)); err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM scenes WHERE project_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear scenes: %w", err)
	}

	for i, s := range st.Scenes {
		elements, err := marshalElements(s.Elements)
		if err != nil {
			return fmt.Errorf("encode scene %s elements: %w", s.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scenes (id, project_id, position, name, prompt, duration_in_frames, background_color, elements, generated_code, status, error, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, s.ID, p.ID, i, s.Name, s.Prompt, s.DurationInFrames, s.BackgroundColor, elements,
			s.GeneratedCode, string(s.Status), nullString(s.Error), formatTime(s.CreatedAt), formatTime(s.UpdatedAt)); err != nil {
			return fmt.Errorf("insert scene %s: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetScene(ctx context.Context, id string) (*Scene, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE id = ?`, id)
	s, err := scanScene(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *SQLiteRepository) UpdateSceneStatus(ctx context.Context, id string, status SceneStatus, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scenes SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, string(status), nullString(errorMsg), formatTime(time.Now()), id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScene(row rowScanner) (*Scene, error) {
	var s Scene
	var status, elements, createdAt, updatedAt string
	var errMsg sql.NullString

	if err := row.Scan(&s.ID, &s.Name, &s.Prompt, &s.DurationInFrames, &s.BackgroundColor,
		&elements, &s.GeneratedCode, &status, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(elements), &s.Elements); err != nil {
		return nil, fmt.Errorf("decode scene %s elements: %w", s.ID, err)
	}
	if s.Elements == nil {
		s.Elements = []scene.Element{}
	}
	s.Status = SceneStatus(status)
	s.Error = errMsg.String
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}

func marshalElements(els []scene.Element) (string, error) {
	if els == nil {
		return "[]", nil
	}
	data, err := json.Marshal(els)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

const jobColumns = `id, type, status, project_id, progress, output_path, error, created_at, updated_at`

func (r *SQLiteRepository) CreateJob(ctx context.Context, j *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, type, status, project_id, progress, output_path, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.Type, j.Status, nullString(j.ProjectID), j.Progress, nullString(j.OutputPath), nullString(j.Error),
		formatTime(j.CreatedAt), formatTime(j.UpdatedAt))
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

func (r *SQLiteRepository) ListPendingJobs(ctx context.Context) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs WHERE status = 'pending' ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	var projectID, outputPath, errMsg sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&j.ID, &j.Type, &j.Status, &projectID, &j.Progress, &outputPath, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	j.ProjectID = projectID.String
	j.OutputPath = outputPath.String
	j.Error = errMsg.String
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

func scanJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, nullString(errorMsg), formatTime(time.Now()), id)
	return err
}

func (r *SQLiteRepository) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?
	`, progress, formatTime(time.Now()), id)
	return err
}

func (r *SQLiteRepository) SetJobOutput(ctx context.Context, id, outputPath string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET output_path = ?, updated_at = ? WHERE id = ?
	`, nullString(outputPath), formatTime(time.Now()), id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// timeLayout is RFC 3339 with fixed-width nanoseconds, so stored times sort
// correctly as strings even within one second.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
