package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func parseIndexes(t *testing.T, model interface{}) map[string]*schema.Index {
	t.Helper()
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	indexes := map[string]*schema.Index{}
	for _, idx := range s.ParseIndexes() {
		indexes[idx.Name] = idx
	}
	return indexes
}

func indexColumns(idx *schema.Index) []string {
	cols := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		cols = append(cols, f.DBName)
	}
	return cols
}

// UpsertApproval's ON CONFLICT (app_id, review_id) clause only matches a
// composite unique constraint; a unique index over review_id alone would
// break the approve upsert and make the join key globally unique across
// apps instead of per-app.
func TestReply_CompositeUniqueIndex(t *testing.T) {
	indexes := parseIndexes(t, &Reply{})

	idx, ok := indexes["ux_replies_app_review"]
	require.True(t, ok, "replies must carry the composite unique index")
	assert.Equal(t, "UNIQUE", idx.Class)
	assert.Equal(t, []string{"app_id", "review_id"}, indexColumns(idx))
}

func TestReview_CompositeUniqueIndex(t *testing.T) {
	indexes := parseIndexes(t, &Review{})

	idx, ok := indexes["ux_reviews_app_review"]
	require.True(t, ok, "reviews must carry the composite unique index")
	assert.Equal(t, "UNIQUE", idx.Class)
	assert.Equal(t, []string{"app_id", "review_id"}, indexColumns(idx))
}
