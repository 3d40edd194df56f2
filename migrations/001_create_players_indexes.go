package migrations

import (
	"context"

	"go-guildsync/internal/roster/models"
	"go-guildsync/internal/roster/services"

	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	Register(Migration{
		Version:     "001_create_players_indexes",
		Description: "Create unique ally code and guild name indexes on players",
		Up:          up001,
		Down:        down001,
	})
}

func up001(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection(models.PlayersCollection), services.PlayerIndexes())
}

func down001(ctx context.Context, db *mongo.Database) error {
	return dropIndexes(ctx, db.Collection(models.PlayersCollection), services.PlayerIndexes())
}
