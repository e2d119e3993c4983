package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bandstand/onboarding-api/internal/core/domain"
)

type MongoArtistRepository struct {
	coll *mongo.Collection
}

func NewArtistRepository(db *mongo.Database) *MongoArtistRepository {
	return &MongoArtistRepository{coll: db.Collection(ArtistsCollection)}
}

type mongoArtist struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id"`
	StageName      string             `bson:"stage_name"`
	Genres         []string           `bson:"genres"`
	Bio            string             `bson:"bio"`
	PortfolioLinks []string           `bson:"portfolio_links"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (r *MongoArtistRepository) Create(ctx context.Context, artist *domain.Artist) (string, error) {
	oid, err := presetID(artist.ID)
	if err != nil {
		return "", domain.ErrInvalidID
	}
	userID, err := primitive.ObjectIDFromHex(artist.UserID)
	if err != nil {
		return "", domain.ErrInvalidID
	}

	res, err := r.coll.InsertOne(ctx, mongoArtist{
		ID:             oid,
		UserID:         userID,
		StageName:      artist.StageName,
		Genres:         artist.Genres,
		Bio:            artist.Bio,
		PortfolioLinks: artist.PortfolioLinks,
		CreatedAt:      artist.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("insert artist: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert artist: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoArtistRepository) FindByUser(ctx context.Context, userID string) (*domain.Artist, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	var doc mongoArtist
	if err := r.coll.FindOne(ctx, bson.M{"user_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find artist: %w", err)
	}

	return &domain.Artist{
		ID:             doc.ID.Hex(),
		UserID:         doc.UserID.Hex(),
		StageName:      doc.StageName,
		Genres:         doc.Genres,
		Bio:            doc.Bio,
		PortfolioLinks: doc.PortfolioLinks,
		CreatedAt:      doc.CreatedAt.UTC(),
	}, nil
}
