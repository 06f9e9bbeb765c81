// Package database - Index cho collection leads (unique email, sort theo score).
package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Friend-Renter/fr-marketing-api/internal/global"
)

// CreateLeadIndexes tạo index cho collection leads.
// Email là natural key duy nhất — unique index bảo đảm tối đa một document mỗi email
// ngay cả khi có race giữa 2 upsert đồng thời.
func CreateLeadIndexes(ctx context.Context, db *mongo.Database) error {
	leads := db.Collection(global.MongoDB_ColNames.Leads)

	if _, err := leads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("lead_email_unique").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// (roles, createdAt desc) — truy vấn export theo role
	if _, err := leads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "roles", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("lead_roles_created"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// Sort theo score — phục vụ export/dashboard đọc trực tiếp collection
	if _, err := leads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "scoreHost", Value: -1}},
		Options: options.Index().SetName("lead_score_host"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}
	if _, err := leads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "scoreRenter", Value: -1}},
		Options: options.Index().SetName("lead_score_renter"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

// isIndexExistsError kiểm tra lỗi index đã tồn tại (IndexOptionsConflict / IndexKeySpecsConflict)
func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "IndexOptionsConflict") ||
		strings.Contains(msg, "IndexKeySpecsConflict") ||
		strings.Contains(msg, "already exists")
}
