package services

import (
	"context"
	"errors"
	"time"

	"go-guildsync/internal/roster/models"
	"go-guildsync/pkg/database"
	"go-guildsync/pkg/swgoh"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoSavedPull is returned when nothing has been persisted yet
var ErrNoSavedPull = errors.New("no saved guild pull")

// PullStore persists completed pulls so a restart can resume without refetching
type PullStore interface {
	SavePull(ctx context.Context, guild *swgoh.GuildInfo, players []swgoh.PlayerInfo, pulledAt time.Time) error
	LoadLatest(ctx context.Context) (*swgoh.GuildInfo, []swgoh.PlayerInfo, time.Time, error)
}

// Repository handles database operations for pulled guilds and players
type Repository struct {
	mongodb *database.MongoDB
	players *mongo.Collection
	guilds  *mongo.Collection
}

// NewRepository creates a new roster repository
func NewRepository(mongodb *database.MongoDB) *Repository {
	return &Repository{
		mongodb: mongodb,
		players: mongodb.Collection(models.PlayersCollection),
		guilds:  mongodb.Collection(models.GuildsCollection),
	}
}

// SavePull upserts the guild by name and every player by ally code
func (r *Repository) SavePull(ctx context.Context, guild *swgoh.GuildInfo, players []swgoh.PlayerInfo, pulledAt time.Time) error {
	now := time.Now().UTC()

	if guild != nil {
		filter := bson.M{"name": guild.Name}
		update := bson.M{
			"$set": bson.M{
				"name":       guild.Name,
				"members":    guild.Members,
				"info":       guild,
				"pulled_at":  pulledAt,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		}
		if _, err := r.guilds.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return err
		}
	}

	if len(players) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(players))
	for i := range players {
		p := &players[i]
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"ally_code": p.AllyCode}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"ally_code":  p.AllyCode,
					"name":       p.Name,
					"guild_name": p.GuildName,
					"info":       p,
					"pulled_at":  pulledAt,
					"updated_at": now,
				},
				"$setOnInsert": bson.M{"created_at": now},
			}).
			SetUpsert(true))
	}

	_, err := r.players.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// LoadLatest returns the most recently pulled guild and its current members
func (r *Repository) LoadLatest(ctx context.Context) (*swgoh.GuildInfo, []swgoh.PlayerInfo, time.Time, error) {
	var record models.GuildRecord
	opts := options.FindOne().SetSort(bson.D{{Key: "pulled_at", Value: -1}})
	if err := r.guilds.FindOne(ctx, bson.M{}, opts).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, time.Time{}, ErrNoSavedPull
		}
		return nil, nil, time.Time{}, err
	}

	guild := record.Info
	cursor, err := r.players.Find(ctx, bson.M{"ally_code": bson.M{"$in": guild.AllyCodes()}})
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	defer cursor.Close(ctx)

	var records []models.PlayerRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, nil, time.Time{}, err
	}

	players := make([]swgoh.PlayerInfo, 0, len(records))
	for _, rec := range records {
		players = append(players, rec.Info)
	}
	orderByRequest(players, guild.AllyCodes())

	return &guild, players, record.PulledAt, nil
}

// PlayerIndexes are the indexes of the players collection
func PlayerIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ally_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "guild_name", Value: 1}},
		},
	}
}

// GuildIndexes are the indexes of the guilds collection
func GuildIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "pulled_at", Value: -1}},
		},
	}
}

// CreateIndexes creates necessary database indexes for the roster collections
func (r *Repository) CreateIndexes(ctx context.Context) error {
	if _, err := r.players.Indexes().CreateMany(ctx, PlayerIndexes()); err != nil {
		return err
	}
	_, err := r.guilds.Indexes().CreateMany(ctx, GuildIndexes())
	return err
}

var _ PullStore = (*Repository)(nil)
