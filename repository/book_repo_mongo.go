package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"elibro/apierr"
	"elibro/models"
)

const booksCollection = "books"

type MongoBookRepo struct {
	DB       *mongo.Client
	Database string
}

func NewMongoBookRepo(db *mongo.Client, database string) *MongoBookRepo {
	return &MongoBookRepo{DB: db, Database: database}
}

func (r *MongoBookRepo) books() *mongo.Collection {
	return r.DB.Database(r.Database).Collection(booksCollection)
}

func (r *MongoBookRepo) CreateBook(ctx context.Context, book *models.Book) error {
	existing := r.books().FindOne(ctx, bson.M{"gutenbergId": book.GutenbergID})
	if existing.Err() == nil {
		return apierr.Conflict("a book with this Gutenberg ID already exists")
	}
	if existing.Err() != mongo.ErrNoDocuments {
		return existing.Err()
	}

	if book.ID == "" {
		book.ID = models.NewID()
	}
	_, err := r.books().InsertOne(ctx, book)
	if mongo.IsDuplicateKeyError(err) {
		return apierr.Conflict("a book with this Gutenberg ID already exists")
	}
	return err
}

func filterToQuery(filter BookFilter) bson.M {
	query := bson.M{}
	if filter.Title != "" {
		query["title"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Title, Options: "i"}}
	}
	if filter.Author != "" {
		query["authors.name"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Author, Options: "i"}}
	}
	if filter.Language != "" {
		query["languages"] = bson.M{"$in": []string{filter.Language}}
	}
	return query
}

func (r *MongoBookRepo) GetAllBooks(ctx context.Context, filter BookFilter, page, limit int) ([]*models.Book, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "title", Value: 1}}).
		SetSkip(int64(page * limit)).
		SetLimit(int64(limit))

	cur, err := r.books().Find(ctx, filterToQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var books []*models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *MongoBookRepo) CountBooks(ctx context.Context, filter BookFilter) (int64, error) {
	return r.books().CountDocuments(ctx, filterToQuery(filter))
}

func (r *MongoBookRepo) GetBookByID(ctx context.Context, id string) (*models.Book, error) {
	book := &models.Book{}
	err := r.books().FindOne(ctx, bson.M{"_id": id}).Decode(book)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return book, nil
}

func (r *MongoBookRepo) IncrementDownloads(ctx context.Context, id string) (*models.Book, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	book := &models.Book{}
	err := r.books().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"downloads": 1}},
		opts,
	).Decode(book)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return book, nil
}

func (r *MongoBookRepo) TopBooks(ctx context.Context, limit int) ([]*models.Book, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "downloads", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.books().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var books []*models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *MongoBookRepo) LanguagesDistribution(ctx context.Context) ([]models.LanguageCount, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$languages"}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$languages",
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := r.books().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.LanguageCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
