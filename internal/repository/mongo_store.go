package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"live-poll/internal/domain/active"
	"live-poll/internal/domain/question"
	"live-poll/internal/domain/response"
	poll_errors "live-poll/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoCfg struct {
	URI      string
	Database string
}

// ConnectMongo opens a client and returns the configured database.
func ConnectMongo(ctx context.Context, cfg MongoCfg) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(3 * time.Second).
		SetTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client.Database(cfg.Database), nil
}

// NewMongoStore wires the mongo repositories over one database.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Questions: &MongoQuestionRepository{coll: db.Collection("questions")},
		Active:    &MongoActiveRepository{coll: db.Collection("active")},
		Responses: &MongoResponseRepository{coll: db.Collection("responses")},
		ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
		close: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	}
}

func handleMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.Join(err, poll_errors.ErrNotFound)
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(err, poll_errors.ErrAlreadyExists)
	}
	return err
}

type questionDoc struct {
	ID          string    `bson:"_id"`
	Domain      string    `bson:"domain"`
	Kind        string    `bson:"kind"`
	MediaType   string    `bson:"mediaType,omitempty"`
	MediaURL    string    `bson:"mediaUrl,omitempty"`
	Caption     string    `bson:"caption,omitempty"`
	Statements  []string  `bson:"statements,omitempty"`
	Title       string    `bson:"title,omitempty"`
	Description string    `bson:"description,omitempty"`
	Text        string    `bson:"text,omitempty"`
	Options     []string  `bson:"options,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// The document mirrors the row layout, so conversion goes through the record.
func questionToDoc(q question.Question) questionDoc {
	rec := toQuestionRecord(q)
	return questionDoc{
		ID:          rec.ID,
		Domain:      rec.Domain,
		Kind:        rec.Kind,
		MediaType:   rec.MediaType,
		MediaURL:    rec.MediaURL,
		Caption:     rec.Caption,
		Statements:  rec.Statements,
		Title:       rec.Title,
		Description: rec.Description,
		Text:        rec.Text,
		Options:     rec.Options,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func (d questionDoc) toDomain() question.Question {
	return questionRecord{
		ID:          d.ID,
		Domain:      d.Domain,
		Kind:        d.Kind,
		MediaType:   d.MediaType,
		MediaURL:    d.MediaURL,
		Caption:     d.Caption,
		Statements:  d.Statements,
		Title:       d.Title,
		Description: d.Description,
		Text:        d.Text,
		Options:     d.Options,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}.toDomain()
}

type MongoQuestionRepository struct {
	coll *mongo.Collection
}

func (r *MongoQuestionRepository) Create(ctx context.Context, q *question.Question) error {
	if q.ID == "" {
		q.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = q.CreatedAt
	}
	if _, err := r.coll.InsertOne(ctx, questionToDoc(*q)); err != nil {
		return handleMongoError(err)
	}
	return nil
}

func (r *MongoQuestionRepository) GetByID(ctx context.Context, id string) (question.Question, error) {
	var doc questionDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		return question.Question{}, handleMongoError(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoQuestionRepository) Update(ctx context.Context, q question.Question) error {
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = time.Now().UTC()
	}
	doc := questionToDoc(q)
	set := bson.D{
		{Key: "domain", Value: doc.Domain},
		{Key: "kind", Value: doc.Kind},
		{Key: "mediaType", Value: doc.MediaType},
		{Key: "mediaUrl", Value: doc.MediaURL},
		{Key: "caption", Value: doc.Caption},
		{Key: "statements", Value: doc.Statements},
		{Key: "title", Value: doc.Title},
		{Key: "description", Value: doc.Description},
		{Key: "text", Value: doc.Text},
		{Key: "options", Value: doc.Options},
		{Key: "updatedAt", Value: doc.UpdatedAt},
	}
	res, err := r.coll.UpdateByID(ctx, q.ID, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return handleMongoError(err)
	}
	if res.MatchedCount == 0 {
		return poll_errors.ErrNotFound
	}
	return nil
}

func (r *MongoQuestionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return handleMongoError(err)
	}
	if res.DeletedCount == 0 {
		return poll_errors.ErrNotFound
	}
	return nil
}

func (r *MongoQuestionRepository) List(ctx context.Context) ([]question.Question, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, handleMongoError(err)
	}
	var docs []questionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, handleMongoError(err)
	}
	out := make([]question.Question, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

type activeDoc struct {
	ID         string    `bson:"_id"`
	QuestionID *string   `bson:"questionId"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

type MongoActiveRepository struct {
	coll *mongo.Collection
}

func (r *MongoActiveRepository) Get(ctx context.Context) (active.Pointer, error) {
	var doc activeDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: active.DocumentID}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return active.Pointer{}, nil
		}
		return active.Pointer{}, handleMongoError(err)
	}
	return activeRecord{QuestionID: doc.QuestionID, UpdatedAt: doc.UpdatedAt}.toDomain(), nil
}

func (r *MongoActiveRepository) Set(ctx context.Context, questionID string) error {
	return r.write(ctx, &questionID)
}

func (r *MongoActiveRepository) Clear(ctx context.Context) error {
	return r.write(ctx, nil)
}

func (r *MongoActiveRepository) write(ctx context.Context, questionID *string) error {
	doc := activeDoc{ID: active.DocumentID, QuestionID: questionID, UpdatedAt: time.Now().UTC()}
	_, err := r.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: active.DocumentID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	return handleMongoError(err)
}

type responseDoc struct {
	ID               string    `bson:"_id"`
	QuestionID       string    `bson:"questionId"`
	ClientID         string    `bson:"clientId"`
	Ratings          []int     `bson:"ratings,omitempty"`
	SelectedEmployee string    `bson:"selectedEmployee,omitempty"`
	CreatedAt        time.Time `bson:"createdAt"`
}

func responseToDoc(r response.Response) responseDoc {
	return responseDoc(toResponseRecord(r))
}

func (d responseDoc) toDomain() response.Response {
	return responseRecord(d).toDomain()
}

type MongoResponseRepository struct {
	coll *mongo.Collection
}

func (r *MongoResponseRepository) Upsert(ctx context.Context, resp response.Response) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: resp.ID}},
		responseToDoc(resp),
		options.Replace().SetUpsert(true),
	)
	return handleMongoError(err)
}

func (r *MongoResponseRepository) GetByID(ctx context.Context, id string) (response.Response, error) {
	var doc responseDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		return response.Response{}, handleMongoError(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoResponseRepository) ListAll(ctx context.Context) ([]response.Response, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, handleMongoError(err)
	}
	var docs []responseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, handleMongoError(err)
	}
	out := make([]response.Response, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}
