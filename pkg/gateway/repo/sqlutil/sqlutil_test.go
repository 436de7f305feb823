package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasReturning(t *testing.T) {
	assert.True(t, HasReturning("INSERT INTO news (title) VALUES (?) RETURNING id"))
	assert.True(t, HasReturning("insert into news (title) values (?)\n returning id;"))
	assert.False(t, HasReturning("UPDATE news SET title = ? WHERE id = ?"))
	assert.False(t, HasReturning("SELECT returning_flag FROM t"))
}

func TestNormalize(t *testing.T) {
	row := Normalize(map[string]any{"title": []byte("A"), "id": int64(1)})
	assert.Equal(t, "A", row["title"])
	assert.Equal(t, int64(1), row["id"])
}
