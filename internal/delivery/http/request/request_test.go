package request

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 20, 0},
		{"?limit=50&offset=10", 50, 10},
		{"?limit=500", 20, 0},
		{"?limit=-1&offset=-5", 20, 0},
		{"?limit=abc", 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/x"+tt.query, nil)
			limit, offset := GetPaginationParams(r)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestGetTimeQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?from=2026-03-01&to=2026-03-02T10:00:00Z&bad=yesterday", nil)

	from, err := GetTimeQuery(r, "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), from)

	to, err := GetTimeQuery(r, "to")
	require.NoError(t, err)
	assert.Equal(t, 10, to.Hour())

	missing, err := GetTimeQuery(r, "missing")
	require.NoError(t, err)
	assert.True(t, missing.IsZero())

	_, err = GetTimeQuery(r, "bad")
	assert.Error(t, err)
}

func TestGetOptionalUUIDQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?variant_id=not-a-uuid", nil)
	_, err := GetOptionalUUIDQuery(r, "variant_id")
	assert.Error(t, err)

	r = httptest.NewRequest("GET", "/x", nil)
	id, err := GetOptionalUUIDQuery(r, "variant_id")
	require.NoError(t, err)
	assert.Nil(t, id)
}
