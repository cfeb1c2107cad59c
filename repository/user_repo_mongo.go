package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"elibro/apierr"
	"elibro/crypto"
	"elibro/models"
)

const usersCollection = "users"

type MongoUserRepo struct {
	DB       *mongo.Client
	Database string
	Cipher   *crypto.FieldCipher
}

func NewMongoUserRepo(db *mongo.Client, database string, cipher *crypto.FieldCipher) *MongoUserRepo {
	return &MongoUserRepo{DB: db, Database: database, Cipher: cipher}
}

func (r *MongoUserRepo) users() *mongo.Collection {
	return r.DB.Database(r.Database).Collection(usersCollection)
}

func (r *MongoUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	existing, err := r.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apierr.Conflict("the email address is already in use")
	}

	if user.ID == "" {
		user.ID = models.NewID()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	plain := user.Password
	if err := user.SetPassword(plain); err != nil {
		return err
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	// Keep the in-memory record decrypted after the insert.
	fullname, email := user.Fullname, user.Email
	user.EncryptFields(r.Cipher)
	_, err = r.users().InsertOne(ctx, user)
	user.Fullname, user.Email = fullname, email
	if mongo.IsDuplicateKeyError(err) {
		return apierr.Conflict("the email address is already in use")
	}
	return err
}

func (r *MongoUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	// Equality happens on ciphertext, so the query value is encrypted the
	// same way stored emails are.
	return r.findOne(ctx, bson.M{"email": r.Cipher.Encrypt(email)})
}

func (r *MongoUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepo) GetUserByRefreshToken(ctx context.Context, encryptedToken string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"refreshToken": encryptedToken})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	user := &models.User{}
	err := r.users().FindOne(ctx, filter).Decode(user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	if err := user.DecryptFields(r.Cipher); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *MongoUserRepo) GetAllUsers(ctx context.Context, page, limit int) ([]*models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(int64(page * limit)).
		SetLimit(int64(limit))

	cur, err := r.users().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []*models.User
	for cur.Next(ctx) {
		user := &models.User{}
		if err := cur.Decode(user); err != nil {
			return nil, err
		}
		if err := user.DecryptFields(r.Cipher); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, cur.Err()
}

func (r *MongoUserRepo) CountUsers(ctx context.Context) (int64, error) {
	return r.users().CountDocuments(ctx, bson.M{})
}

func (r *MongoUserRepo) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()

	fullname, email := user.Fullname, user.Email
	user.EncryptFields(r.Cipher)
	update := bson.M{"$set": bson.M{
		"fullname":     user.Fullname,
		"email":        user.Email,
		"password":     user.Password,
		"salt":         user.Salt,
		"role":         user.Role,
		"refreshToken": user.RefreshToken,
		"updatedAt":    user.UpdatedAt,
	}}
	res, err := r.users().UpdateByID(ctx, user.ID, update)
	user.Fullname, user.Email = fullname, email
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apierr.NotFound("user not found")
	}
	return nil
}

func (r *MongoUserRepo) SetRefreshToken(ctx context.Context, userID, encryptedToken string) error {
	res, err := r.users().UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"refreshToken": encryptedToken,
		"updatedAt":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apierr.NotFound("user not found")
	}
	return nil
}

func (r *MongoUserRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	res, err := r.users().UpdateByID(ctx, userID, bson.M{
		"$unset": bson.M{"refreshToken": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apierr.NotFound("user not found")
	}
	return nil
}

func (r *MongoUserRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.users().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apierr.NotFound("user not found")
	}
	return nil
}

func (r *MongoUserRepo) MonthlySignups(ctx context.Context) ([]models.MonthlySignup, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m",
				"date":   "$createdAt",
			}},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := r.users().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.MonthlySignup
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
