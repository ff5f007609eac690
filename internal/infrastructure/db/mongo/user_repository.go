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

	"github.com/juniorseniors/users-api/internal/core/domain"
)

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Email             string             `bson:"email"`
	Password          string             `bson:"password"`
	Phone             string             `bson:"phone,omitempty"`
	Subscription      string             `bson:"subscription"`
	AvatarURL         string             `bson:"avatarURL"`
	VerificationToken string             `bson:"verificationToken"`
	Verify            bool               `bson:"verify"`
	Token             string             `bson:"token"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                mu.ID.Hex(),
		Email:             mu.Email,
		Password:          mu.Password,
		Phone:             mu.Phone,
		Subscription:      domain.Subscription(mu.Subscription),
		AvatarURL:         mu.AvatarURL,
		VerificationToken: mu.VerificationToken,
		Verify:            mu.Verify,
		Token:             mu.Token,
		CreatedAt:         mu.CreatedAt.UTC(),
		UpdatedAt:         mu.UpdatedAt.UTC(),
	}
}

// Create inserts a new user document. The unique email index turns a lost
// signup race into domain.ErrEmailInUse.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		ID:                primitive.NewObjectID(),
		Email:             user.Email,
		Password:          user.Password,
		Phone:             user.Phone,
		Subscription:      string(user.Subscription),
		AvatarURL:         user.AvatarURL,
		VerificationToken: user.VerificationToken,
		Verify:            user.Verify,
		Token:             user.Token,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailInUse
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// RedeemVerificationToken flips verify and clears the token in one update,
// so concurrent redemptions of the same token succeed at most once.
func (r *UserRepository) RedeemVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	filter := bson.M{"verificationToken": token, "verify": false}
	update := bson.M{"$set": bson.M{
		"verificationToken": "",
		"verify":            true,
		"updatedAt":         time.Now().UTC(),
	}}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *UserRepository) SetToken(ctx context.Context, id, token string) error {
	return r.updateByID(ctx, id, bson.M{"token": token})
}

func (r *UserRepository) UpdateSubscription(ctx context.Context, id string, sub domain.Subscription) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	update := bson.M{"$set": bson.M{
		"subscription": string(sub),
		"updatedAt":    time.Now().UTC(),
	}}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, update)
}

func (r *UserRepository) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	return r.updateByID(ctx, id, bson.M{"avatarURL": avatarURL})
}

// EnsureIndexes creates the unique email index and the token lookup index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "verificationToken", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) updateByID(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set["updatedAt"] = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
