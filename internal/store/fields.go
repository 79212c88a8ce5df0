package store

import (
	"github.com/campuslink/engage-core/internal/domain"
)

// entityTables maps entity kinds to their table names
var entityTables = map[domain.EntityKind]string{
	domain.EntityUser:    "users",
	domain.EntityPost:    "posts",
	domain.EntityComment: "comments",
	domain.EntityOrder:   "orders",
}

// entityFields whitelists which counter fields exist on which entity. Counter
// writes never interpolate caller strings into SQL; anything outside this map
// is rejected as invalid input.
var entityFields = map[domain.EntityKind]map[domain.CounterField]bool{
	domain.EntityUser: {
		domain.FieldPostCount:      true,
		domain.FieldLikeCount:      true,
		domain.FieldFollowerCount:  true,
		domain.FieldFollowingCount: true,
		domain.FieldCoinBalance:    true,
		domain.FieldExperience:     true,
	},
	domain.EntityPost: {
		domain.FieldLikeCount:    true,
		domain.FieldCommentCount: true,
		domain.FieldCollectCount: true,
		domain.FieldViewCount:    true,
	},
	domain.EntityComment: {
		domain.FieldLikeCount: true,
	},
}

// clampedFields are counters that may never go negative. Balances are excluded:
// a negative stored balance is drift to surface, not a value to clamp away.
var clampedFields = map[domain.CounterField]bool{
	domain.FieldLikeCount:      true,
	domain.FieldCommentCount:   true,
	domain.FieldCollectCount:   true,
	domain.FieldViewCount:      true,
	domain.FieldPostCount:      true,
	domain.FieldFollowerCount:  true,
	domain.FieldFollowingCount: true,
}

// counterColumn validates an (entity, field) pair and returns the column name
func counterColumn(entity domain.EntityKind, field domain.CounterField) (table string, column string, ok bool) {
	table, ok = entityTables[entity]
	if !ok {
		return "", "", false
	}
	if !entityFields[entity][field] {
		return "", "", false
	}
	return table, string(field), true
}
