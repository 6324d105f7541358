package mongostore

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

// userDocument matches the auth provider's users collection, where _id is
// usually an ObjectID but may be a plain string.
type userDocument struct {
	ID      any    `bson:"_id"`
	Email   string `bson:"email"`
	Name    string `bson:"name"`
	IsAdmin bool   `bson:"isAdmin"`
}

func (d *userDocument) toDomain() *domain.User {
	var id string
	switch v := d.ID.(type) {
	case primitive.ObjectID:
		id = v.Hex()
	case string:
		id = v
	}
	return &domain.User{
		ID:      id,
		Email:   d.Email,
		Name:    d.Name,
		IsAdmin: d.IsAdmin,
	}
}

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(UsersCollection)}
}

var _ domain.UserDirectory = (*UserRepository)(nil)

func userIDFilter(userID string) bson.M {
	if objID, err := primitive.ObjectIDFromHex(userID); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{objID, userID}}}
	}
	return bson.M{"_id": userID}
}

func (r *UserRepository) ResolveEmail(ctx context.Context, userID string) (string, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, userIDFilter(userID),
		options.FindOne().SetProjection(bson.M{"email": 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(doc.Email), nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, userIDFilter(userID)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) SetAdminByEmail(ctx context.Context, email string, isAdmin bool) (*domain.User, error) {
	var doc userDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"email": strings.ToLower(strings.TrimSpace(email))},
		bson.M{"$set": bson.M{"isAdmin": isAdmin}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}
