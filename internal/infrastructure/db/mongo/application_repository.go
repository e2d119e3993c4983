package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bandstand/onboarding-api/internal/core/domain"
)

type MongoApplicationRepository struct {
	coll *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *MongoApplicationRepository {
	return &MongoApplicationRepository{coll: db.Collection(ApplicationsCollection)}
}

type mongoApplication struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty"`
	UserID         primitive.ObjectID  `bson:"user_id"`
	StageName      string              `bson:"stage_name"`
	Genres         []string            `bson:"genres"`
	Bio            string              `bson:"bio"`
	PortfolioLinks []string            `bson:"portfolio_links"`
	Status         string              `bson:"status"`
	ReviewedBy     *primitive.ObjectID `bson:"reviewed_by"`
	CreatedAt      time.Time           `bson:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at"`
	// Email is only populated by the admin listing aggregation.
	Email string `bson:"email,omitempty"`
}

func (m *mongoApplication) toDomain() *domain.ArtistApplication {
	app := &domain.ArtistApplication{
		ID:             m.ID.Hex(),
		UserID:         m.UserID.Hex(),
		Email:          m.Email,
		StageName:      m.StageName,
		Genres:         m.Genres,
		Bio:            m.Bio,
		PortfolioLinks: m.PortfolioLinks,
		Status:         domain.ApplicationStatus(m.Status),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
	if m.ReviewedBy != nil {
		app.ReviewedBy = m.ReviewedBy.Hex()
	}
	return app
}

func (r *MongoApplicationRepository) Create(ctx context.Context, app *domain.ArtistApplication) (string, error) {
	oid, err := presetID(app.ID)
	if err != nil {
		return "", domain.ErrInvalidID
	}
	userID, err := primitive.ObjectIDFromHex(app.UserID)
	if err != nil {
		return "", domain.ErrInvalidID
	}

	doc := mongoApplication{
		ID:             oid,
		UserID:         userID,
		StageName:      app.StageName,
		Genres:         app.Genres,
		Bio:            app.Bio,
		PortfolioLinks: app.PortfolioLinks,
		Status:         string(app.Status),
		CreatedAt:      app.CreatedAt,
		UpdatedAt:      app.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert application: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert application: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoApplicationRepository) FindByID(ctx context.Context, id string) (*domain.ArtistApplication, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoApplicationRepository) FindActiveByUser(ctx context.Context, userID string) (*domain.ArtistApplication, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return r.findOne(ctx, bson.M{
		"user_id": oid,
		"status": bson.M{"$in": []string{
			string(domain.ApplicationPending),
			string(domain.ApplicationApproved),
		}},
	})
}

func (r *MongoApplicationRepository) findOne(ctx context.Context, filter bson.M) (*domain.ArtistApplication, error) {
	var doc mongoApplication
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoApplicationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ArtistApplication, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return decodeApplications(ctx, cur)
}

// ListWithEmail joins each application with its applicant's email.
// Applications whose user no longer exists are dropped by the $unwind.
func (r *MongoApplicationRepository) ListWithEmail(ctx context.Context) ([]*domain.ArtistApplication, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$addFields", Value: bson.D{{Key: "email", Value: "$user.email"}}}},
		{{Key: "$project", Value: bson.D{{Key: "user", Value: 0}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate applications: %w", err)
	}
	return decodeApplications(ctx, cur)
}

func decodeApplications(ctx context.Context, cur *mongo.Cursor) ([]*domain.ArtistApplication, error) {
	var docs []mongoApplication
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}
	out := make([]*domain.ArtistApplication, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// UpdateStatus only matches documents that are still pending, so two
// concurrent reviews cannot both succeed.
func (r *MongoApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus, reviewerID string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	reviewer, err := primitive.ObjectIDFromHex(reviewerID)
	if err != nil {
		return domain.ErrInvalidID
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(domain.ApplicationPending)},
		bson.M{"$set": bson.M{
			"status":      string(status),
			"reviewed_by": reviewer,
			"updated_at":  at,
		}},
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrApplicationNotPending
	}
	return nil
}

func (r *MongoApplicationRepository) CountByStatus(ctx context.Context, status domain.ApplicationStatus) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"status": string(status)})
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}
