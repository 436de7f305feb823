package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	selectNews = `SELECT id, title, content, date, created_at, updated_at FROM news`
	insertNews = `INSERT INTO news (title, content, date, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`
	updateNews = `UPDATE news SET title = ?, content = ?, updated_at = ? WHERE id = ?`
	deleteNews = `DELETE FROM news WHERE id = ?`
)

// errStoreFailure stands in when a store reports failure without an error.
var errStoreFailure = errors.New("store reported failure")

// NewsService implements CRUD for news records over a RelationalStore.
// Every mutation re-reads its own write before returning.
type NewsService struct {
	store RelationalStore
	now   func() time.Time
	limit int
}

// NewNewsService requires WithRelationalStore.
func NewNewsService(opts ...Option) (*NewsService, error) {
	s := newSettings(opts)
	if s.relational == nil {
		return nil, fmt.Errorf("relational store is required")
	}
	return &NewsService{
		store: s.relational,
		now:   s.now,
		limit: s.listLimit,
	}, nil
}

// ParseNewsID parses a path id. Anything but a base-10 integer is rejected.
func ParseNewsID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, invalid("id", "Invalid news ID")
	}
	return id, nil
}

// List returns the newest records first, capped at the list limit.
func (s *NewsService) List(ctx context.Context) ([]Record, error) {
	rows, err := s.store.Query(ctx, selectNews+` ORDER BY created_at DESC, id DESC LIMIT ?`, s.limit)
	if err != nil {
		return nil, &BackendError{Backend: "relational", Op: "fetch news", Err: err}
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, &BackendError{Backend: "relational", Op: "fetch news", Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get returns one record by its path id.
func (s *NewsService) Get(ctx context.Context, rawID string) (*Record, error) {
	id, err := ParseNewsID(rawID)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id, "fetch news")
}

// Create stamps date and timestamps, inserts and returns the stored record.
func (s *NewsService) Create(ctx context.Context, in RecordInput) (*Record, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	stamp := now.Format(TimestampLayout)
	res, err := s.store.Execute(ctx, insertNews, in.Title, in.Content, now.Format(DateLayout), stamp, stamp)
	if err != nil {
		return nil, &BackendError{Backend: "relational", Op: "create news", Err: err}
	}
	if !res.Success {
		return nil, &BackendError{Backend: "relational", Op: "create news", Err: errStoreFailure}
	}

	rec, err := s.get(ctx, res.LastInsertID, "create news")
	if errors.Is(err, ErrNotFound) {
		return nil, &BackendError{Backend: "relational", Op: "create news", Err: fmt.Errorf("news %d not readable after insert", res.LastInsertID)}
	}
	return rec, err
}

// Update replaces title and content and refreshes updatedAt.
func (s *NewsService) Update(ctx context.Context, rawID string, in RecordInput) (*Record, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	id, err := ParseNewsID(rawID)
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC().Format(TimestampLayout)
	res, err := s.store.Execute(ctx, updateNews, in.Title, in.Content, stamp, id)
	if err != nil {
		return nil, &BackendError{Backend: "relational", Op: "update news", Err: err}
	}
	// A zero count means no such record, whatever the success flag says.
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Resource: "News", ID: strconv.FormatInt(id, 10)}
	}
	if !res.Success {
		return nil, &BackendError{Backend: "relational", Op: "update news", Err: errStoreFailure}
	}
	return s.get(ctx, id, "update news")
}

// Delete removes a record and returns its id.
func (s *NewsService) Delete(ctx context.Context, rawID string) (int64, error) {
	id, err := ParseNewsID(rawID)
	if err != nil {
		return 0, err
	}

	res, err := s.store.Execute(ctx, deleteNews, id)
	if err != nil {
		return 0, &BackendError{Backend: "relational", Op: "delete news", Err: err}
	}
	if res.RowsAffected == 0 {
		return 0, &NotFoundError{Resource: "News", ID: strconv.FormatInt(id, 10)}
	}
	if !res.Success {
		return 0, &BackendError{Backend: "relational", Op: "delete news", Err: errStoreFailure}
	}
	return id, nil
}

func (s *NewsService) get(ctx context.Context, id int64, op string) (*Record, error) {
	rows, err := s.store.Query(ctx, selectNews+` WHERE id = ?`, id)
	if err != nil {
		return nil, &BackendError{Backend: "relational", Op: op, Err: err}
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Resource: "News", ID: strconv.FormatInt(id, 10)}
	}
	rec, err := recordFromRow(rows[0])
	if err != nil {
		return nil, &BackendError{Backend: "relational", Op: op, Err: err}
	}
	return &rec, nil
}

func checkInput(in RecordInput) error {
	if in.Title == "" {
		return invalid("title", "Title is required")
	}
	if in.Content == "" {
		return invalid("content", "Content is required")
	}
	return nil
}
