package migrations

import (
	"context"

	"go-guildsync/internal/roster/models"
	"go-guildsync/internal/roster/services"

	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	Register(Migration{
		Version:     "002_create_guilds_indexes",
		Description: "Create unique name and latest pull indexes on guilds",
		Up:          up002,
		Down:        down002,
	})
}

func up002(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection(models.GuildsCollection), services.GuildIndexes())
}

func down002(ctx context.Context, db *mongo.Database) error {
	return dropIndexes(ctx, db.Collection(models.GuildsCollection), services.GuildIndexes())
}
