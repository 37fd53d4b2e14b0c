// Package store is Bakery's embedded relational state: pies, slices, slice
// resources, and the audit log, backed by modernc.org/sqlite (a pure-Go,
// cgo-free SQLite driver registered under database/sql — the nearest
// embeddable-relational-file dependency anywhere in the retrieved pack).
//
// Every exported write is a single statement or transaction; the cascading
// pie delete and the resource batch insert are one transaction each,
// matching the teacher's qtx := h.querier.(*db.Queries).WithTx(tx) pattern
// in iam-service's roles_handler.go. Slice creation spans two operations
// (CreateSlice, then AddSliceResources) and is not one transaction; the
// orchestrator deletes the slice row again when the resource insert fails.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/arc-self/bakery/internal/apperr"
	"github.com/arc-self/bakery/internal/model"
)

// CreateSliceInput is the persisted-row shape for Store.CreateSlice.
type CreateSliceInput struct {
	PieID   string
	Ordinal int
	Host    string
	Status  model.SliceStatus
}

// ResourceInput is one resource row to insert via AddSliceResources.
type ResourceInput struct {
	Key           string
	AllocatedPort int
	Protocol      model.Protocol
	Expose        model.Expose
	RouteHost     *string
	IsPrimaryHTTP bool
}

// ListSlicesFilter controls ListSlices scope.
type ListSlicesFilter struct {
	PieID string // empty means unfiltered; ignored when All is set
	All   bool
}

// AuditInput is one row to append via AppendAuditLog.
type AuditInput struct {
	Kind    string
	PieID   *string
	SliceID *string
	Payload []byte
}

// Store is the interface every other component depends on. It is defined
// here (rather than only as a concrete type) so the Control API's handler
// tests can run against a generated mock, exactly as iam-service's handlers
// depend on db.Querier rather than a concrete *pgxpool.Pool.
type Store interface {
	CreatePie(ctx context.Context, name, slug string) (model.Pie, error)
	ListPies(ctx context.Context) ([]model.Pie, error)
	FindPieByIDOrSlug(ctx context.Context, identifier string) (*model.Pie, error)
	DeletePie(ctx context.Context, pieID string) error

	NextSliceOrdinal(ctx context.Context, pieID string) (int, error)
	CreateSlice(ctx context.Context, in CreateSliceInput) (model.Slice, error)
	UpdateSliceStatus(ctx context.Context, sliceID string, status model.SliceStatus) error
	DeleteSlice(ctx context.Context, sliceID string) error
	GetSliceByID(ctx context.Context, sliceID string) (*model.SliceWithResources, error)
	GetSliceByHost(ctx context.Context, host string) (*model.SliceWithResources, error)
	ListSlices(ctx context.Context, filter ListSlicesFilter) ([]model.SliceWithResources, error)

	AddSliceResources(ctx context.Context, sliceID string, inputs []ResourceInput) ([]model.SliceResource, error)
	AllocatedPorts(ctx context.Context) ([]int, error)
	GetHostRoute(ctx context.Context, host string) (*model.HostRoute, error)

	AppendAuditLog(ctx context.Context, in AuditInput) error

	Close() error
}

// sqliteStore implements Store over database/sql + modernc.org/sqlite.
type sqliteStore struct {
	db     *sql.DB
	logger *zap.Logger
	// mu serializes writes. A single sqlite connection already serializes
	// at the driver level, but the mutex keeps multi-statement write
	// transactions atomic with respect to each other at the Go level too,
	// the same way the allocator's candidate-selection loop is mutexed.
	mu sync.Mutex
}

// Open opens (creating if absent) the database file at path and migrates
// it to the current schema version.
func Open(path string, logger *zap.Logger) (Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single open connection turns sqlite's serialized-writer requirement
	// into a non-issue: database/sql's pool never hands out two concurrent
	// connections to race on the same file.
	db.SetMaxOpenConns(1)

	s := &sqliteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	var current int
	row := s.db.QueryRow(`SELECT version FROM schema_meta LIMIT 1`)
	if err := row.Scan(&current); err != nil {
		if err != sql.ErrNoRows {
			return fmt.Errorf("reading schema version: %w", err)
		}
		current = 0
	}

	target := migrateVersion(current)
	if current == 0 {
		if _, err := s.db.Exec(`INSERT INTO schema_meta(version) VALUES (?)`, target); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
	} else if target != current {
		if _, err := s.db.Exec(`UPDATE schema_meta SET version = ?`, target); err != nil {
			return fmt.Errorf("updating schema version: %w", err)
		}
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// --- Pies ---

func (s *sqliteStore) CreatePie(ctx context.Context, name, slug string) (model.Pie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	createdAt := nowRFC3339()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pies (id, name, slug, created_at) VALUES (?, ?, ?, ?)`,
		id, name, slug, createdAt)
	if isUniqueViolation(err) {
		return model.Pie{}, apperr.Conflict("pie slug %q already exists", slug)
	}
	if err != nil {
		return model.Pie{}, apperr.Internal(err)
	}
	return model.Pie{ID: id, Name: name, Slug: slug, CreatedAt: parseTime(createdAt)}, nil
}

func (s *sqliteStore) ListPies(ctx context.Context) ([]model.Pie, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, created_at FROM pies ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var out []model.Pie
	for rows.Next() {
		var p model.Pie
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &createdAt); err != nil {
			return nil, apperr.Internal(err)
		}
		p.CreatedAt = parseTime(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *sqliteStore) FindPieByIDOrSlug(ctx context.Context, identifier string) (*model.Pie, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM pies WHERE id = ? OR slug = ? LIMIT 1`,
		identifier, identifier)
	var p model.Pie
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

func (s *sqliteStore) DeletePie(ctx context.Context, pieID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM pies WHERE id = ?`, pieID)
	if err != nil {
		return apperr.Internal(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.NotFound("pie %q not found", pieID)
	}
	return tx.Commit()
}

// --- Slices ---

func (s *sqliteStore) NextSliceOrdinal(ctx context.Context, pieID string) (int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(ordinal), 0) + 1 FROM slices WHERE pie_id = ?`, pieID)
	var next int
	if err := row.Scan(&next); err != nil {
		return 0, apperr.Internal(err)
	}
	return next, nil
}

func (s *sqliteStore) CreateSlice(ctx context.Context, in CreateSliceInput) (model.Slice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	createdAt := nowRFC3339()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slices (id, pie_id, ordinal, host, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, in.PieID, in.Ordinal, in.Host, string(in.Status), createdAt)
	if isUniqueViolation(err) {
		return model.Slice{}, apperr.Conflict("slice host %q or ordinal %d already exists", in.Host, in.Ordinal)
	}
	if err != nil {
		return model.Slice{}, apperr.Internal(err)
	}
	return model.Slice{
		ID:        id,
		PieID:     in.PieID,
		Ordinal:   in.Ordinal,
		Host:      in.Host,
		Status:    in.Status,
		CreatedAt: parseTime(createdAt),
	}, nil
}

func (s *sqliteStore) UpdateSliceStatus(ctx context.Context, sliceID string, status model.SliceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stoppedAt any
	if status == model.SliceStopped {
		stoppedAt = nowRFC3339()
	}

	var res sql.Result
	var err error
	if status == model.SliceStopped {
		// Idempotent: don't clobber stoppedAt on repeated calls.
		res, err = s.db.ExecContext(ctx,
			`UPDATE slices SET status = ?, stopped_at = COALESCE(stopped_at, ?) WHERE id = ?`,
			string(status), stoppedAt, sliceID)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE slices SET status = ? WHERE id = ?`, string(status), sliceID)
	}
	if err != nil {
		return apperr.Internal(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.NotFound("slice %q not found", sliceID)
	}
	return nil
}

func (s *sqliteStore) DeleteSlice(ctx context.Context, sliceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM slices WHERE id = ?`, sliceID)
	if err != nil {
		return apperr.Internal(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.NotFound("slice %q not found", sliceID)
	}
	return nil
}

func (s *sqliteStore) scanSlice(rows interface {
	Scan(dest ...any) error
}) (model.Slice, error) {
	var sl model.Slice
	var createdAt string
	var stoppedAt sql.NullString
	var status string
	if err := rows.Scan(&sl.ID, &sl.PieID, &sl.Ordinal, &sl.Host, &status, &createdAt, &stoppedAt); err != nil {
		return model.Slice{}, err
	}
	sl.Status = model.SliceStatus(status)
	sl.CreatedAt = parseTime(createdAt)
	if stoppedAt.Valid {
		t := parseTime(stoppedAt.String)
		sl.StoppedAt = &t
	}
	return sl, nil
}

const selectSliceCols = `id, pie_id, ordinal, host, status, created_at, stopped_at`

func (s *sqliteStore) loadResources(ctx context.Context, sliceID string) ([]model.SliceResource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slice_id, key, allocated_port, protocol, expose, route_host, is_primary_http, created_at
		 FROM slice_resources WHERE slice_id = ? ORDER BY created_at ASC, id ASC`, sliceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SliceResource
	for rows.Next() {
		var r model.SliceResource
		var protocol, expose, createdAt string
		var routeHost sql.NullString
		var isPrimary int
		if err := rows.Scan(&r.ID, &r.SliceID, &r.Key, &r.AllocatedPort, &protocol, &expose, &routeHost, &isPrimary, &createdAt); err != nil {
			return nil, err
		}
		r.Protocol = model.Protocol(protocol)
		r.Expose = model.Expose(expose)
		r.IsPrimaryHTTP = isPrimary != 0
		r.CreatedAt = parseTime(createdAt)
		if routeHost.Valid {
			v := routeHost.String
			r.RouteHost = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetSliceByID(ctx context.Context, sliceID string) (*model.SliceWithResources, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectSliceCols+` FROM slices WHERE id = ?`, sliceID)
	sl, err := s.scanSlice(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	resources, err := s.loadResources(ctx, sl.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &model.SliceWithResources{Slice: sl, Resources: resources}, nil
}

func (s *sqliteStore) GetSliceByHost(ctx context.Context, host string) (*model.SliceWithResources, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectSliceCols+` FROM slices WHERE host = ?`, host)
	sl, err := s.scanSlice(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	resources, err := s.loadResources(ctx, sl.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &model.SliceWithResources{Slice: sl, Resources: resources}, nil
}

func (s *sqliteStore) ListSlices(ctx context.Context, filter ListSlicesFilter) ([]model.SliceWithResources, error) {
	query := `SELECT ` + selectSliceCols + ` FROM slices`
	var args []any
	if !filter.All && filter.PieID != "" {
		query += ` WHERE pie_id = ?`
		args = append(args, filter.PieID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var out []model.SliceWithResources
	for rows.Next() {
		sl, err := s.scanSlice(rows)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, model.SliceWithResources{Slice: sl})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}

	for i := range out {
		resources, err := s.loadResources(ctx, out[i].ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out[i].Resources = resources
	}
	return out, nil
}

// --- Resources ---

func (s *sqliteStore) AddSliceResources(ctx context.Context, sliceID string, inputs []ResourceInput) ([]model.SliceResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer tx.Rollback()

	out := make([]model.SliceResource, 0, len(inputs))
	for _, in := range inputs {
		id := uuid.NewString()
		createdAt := nowRFC3339()
		isPrimary := 0
		if in.IsPrimaryHTTP {
			isPrimary = 1
		}
		var routeHost any
		if in.RouteHost != nil {
			routeHost = *in.RouteHost
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO slice_resources (id, slice_id, key, allocated_port, protocol, expose, route_host, is_primary_http, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, sliceID, in.Key, in.AllocatedPort, string(in.Protocol), string(in.Expose), routeHost, isPrimary, createdAt)
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("resource key %q, port %d, or route host conflicts with an existing resource", in.Key, in.AllocatedPort)
		}
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, model.SliceResource{
			ID:            id,
			SliceID:       sliceID,
			Key:           in.Key,
			AllocatedPort: in.AllocatedPort,
			Protocol:      in.Protocol,
			Expose:        in.Expose,
			RouteHost:     in.RouteHost,
			IsPrimaryHTTP: in.IsPrimaryHTTP,
			CreatedAt:     parseTime(createdAt),
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *sqliteStore) AllocatedPorts(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT allocated_port FROM slice_resources`)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetHostRoute(ctx context.Context, host string) (*model.HostRoute, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT sr.route_host, sr.allocated_port, sl.id, sl.pie_id, sl.status
		FROM slice_resources sr
		JOIN slices sl ON sl.id = sr.slice_id
		WHERE sr.route_host = ?
		LIMIT 1`, host)

	var hr model.HostRoute
	var status string
	if err := row.Scan(&hr.RouteHost, &hr.AllocatedPort, &hr.SliceID, &hr.PieID, &status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	hr.SliceStatus = model.SliceStatus(status)
	return &hr, nil
}

// --- Audit log ---

func (s *sqliteStore) AppendAuditLog(ctx context.Context, in AuditInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	createdAt := nowRFC3339()
	var pieID, sliceID any
	if in.PieID != nil {
		pieID = *in.PieID
	}
	if in.SliceID != nil {
		sliceID = *in.SliceID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, pie_id, slice_id, kind, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, pieID, sliceID, in.Kind, in.Payload, createdAt)
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}
