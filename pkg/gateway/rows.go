package gateway

import (
	"fmt"
	"strconv"
	"time"
)

func recordFromRow(row Row) (Record, error) {
	var rec Record
	var err error

	if rec.ID, err = int64Column(row, "id"); err != nil {
		return rec, err
	}
	rec.Title = stringColumn(row, "title")
	rec.Content = stringColumn(row, "content")
	rec.Date = stringColumn(row, "date")
	if rec.CreatedAt, err = timeColumn(row, "created_at"); err != nil {
		return rec, err
	}
	if rec.UpdatedAt, err = timeColumn(row, "updated_at"); err != nil {
		return rec, err
	}
	return rec, nil
}

func int64Column(row Row, name string) (int64, error) {
	switch v := row[name].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	default:
		return 0, fmt.Errorf("column %s: unexpected type %T", name, v)
	}
}

func stringColumn(row Row, name string) string {
	switch v := row[name].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(DateLayout)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func timeColumn(row Row, name string) (time.Time, error) {
	switch v := row[name].(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		return parseTimestamp(name, v)
	case []byte:
		return parseTimestamp(name, string(v))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("column %s: unexpected type %T", name, v)
	}
}

func parseTimestamp(name, s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", name, err)
	}
	return t.UTC(), nil
}
