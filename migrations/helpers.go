package migrations

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// createIndexes tolerates indexes that the services already created at startup
func createIndexes(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	_, err := coll.Indexes().CreateMany(ctx, models)
	if isIndexExistsError(err) {
		return nil
	}
	return err
}

// dropIndexes removes the indexes built from models, ignoring missing ones
func dropIndexes(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	for _, m := range models {
		name := indexName(m.Keys.(bson.D))
		if _, err := coll.Indexes().DropOne(ctx, name); err != nil && !isIndexNotFoundError(err) {
			return err
		}
	}
	return nil
}

// indexName mirrors the server's default naming, e.g. "ally_code_1"
func indexName(keys bson.D) string {
	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, k.Key, indexDirection(k.Value))
	}
	return strings.Join(parts, "_")
}

func indexDirection(v interface{}) string {
	switch d := v.(type) {
	case int:
		if d < 0 {
			return "-1"
		}
		return "1"
	case string:
		return d
	default:
		return "1"
	}
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return mongo.IsDuplicateKeyError(err) ||
		strings.Contains(errStr, "already exists") ||
		strings.Contains(errStr, "IndexKeySpecsConflict") ||
		strings.Contains(errStr, "IndexOptionsConflict")
}

func isIndexNotFoundError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "index not found") || strings.Contains(err.Error(), "IndexNotFound") || strings.Contains(err.Error(), "ns not found"))
}
