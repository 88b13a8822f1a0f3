package documents

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoCollection is the subset of *mongo.Collection the repo uses.
type mongoCollection interface {
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter any, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// MongoRepo implements Repo on a MongoDB collection. Field names match the
// records written by the earlier Node service so existing data stays readable.
type MongoRepo struct {
	collection mongoCollection
}

// NewMongoRepo wraps a collection.
func NewMongoRepo(collection *mongo.Collection) *MongoRepo {
	return &MongoRepo{collection: collection}
}

type mongoRecord struct {
	ID            any            `bson:"_id"`
	FileName      string         `bson:"filename"`
	OriginalName  string         `bson:"originalName"`
	FileType      string         `bson:"fileType"`
	Source        string         `bson:"source,omitempty"`
	ExtractedText string         `bson:"extractedText"`
	FileBuffer    any            `bson:"fileBuffer,omitempty"`
	StorageKey    string         `bson:"storageKey,omitempty"`
	UseFileUpload bool           `bson:"useGeminiFileUpload"`
	Summary       string         `bson:"summary,omitempty"`
	Flashcards    []Flashcard    `bson:"flashcards,omitempty"`
	Quiz          []QuizQuestion `bson:"quiz,omitempty"`
	CreatedAt     time.Time      `bson:"createdAt"`
}

// Create inserts a new document.
func (r *MongoRepo) Create(ctx context.Context, doc Document) error {
	_, err := r.collection.InsertOne(ctx, toMongoRecord(doc))
	return err
}

// GetByID fetches a document. IDs may be UUID strings or legacy ObjectID hex.
func (r *MongoRepo) GetByID(ctx context.Context, id string) (Document, error) {
	var rec mongoRecord
	if err := r.collection.FindOne(ctx, idFilter(id)).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return fromMongoRecord(rec), nil
}

// SetSummary stores the generated summary.
func (r *MongoRepo) SetSummary(ctx context.Context, id, summary string) error {
	return r.set(ctx, id, "summary", summary)
}

// SetFlashcards stores the generated flashcards.
func (r *MongoRepo) SetFlashcards(ctx context.Context, id string, cards []Flashcard) error {
	if cards == nil {
		cards = []Flashcard{}
	}
	return r.set(ctx, id, "flashcards", cards)
}

// SetQuiz stores the generated quiz.
func (r *MongoRepo) SetQuiz(ctx context.Context, id string, quiz []QuizQuestion) error {
	if quiz == nil {
		quiz = []QuizQuestion{}
	}
	return r.set(ctx, id, "quiz", quiz)
}

func (r *MongoRepo) set(ctx context.Context, id, field string, value any) error {
	res, err := r.collection.UpdateOne(ctx, idFilter(id), bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

func toMongoRecord(doc Document) mongoRecord {
	rec := mongoRecord{
		ID:            doc.ID,
		FileName:      doc.FileName,
		OriginalName:  doc.OriginalName,
		FileType:      doc.MediaType,
		Source:        string(doc.Source),
		ExtractedText: doc.ExtractedText,
		StorageKey:    doc.StorageKey,
		UseFileUpload: doc.UseMultimodalFallback,
		Summary:       doc.Summary,
		Flashcards:    doc.Flashcards,
		Quiz:          doc.Quiz,
		CreatedAt:     doc.CreatedAt,
	}
	if len(doc.FileBytes) > 0 {
		rec.FileBuffer = primitive.Binary{Subtype: 0x00, Data: doc.FileBytes}
	}
	return rec
}

func fromMongoRecord(rec mongoRecord) Document {
	doc := Document{
		FileName:              rec.FileName,
		OriginalName:          rec.OriginalName,
		MediaType:             rec.FileType,
		Source:                Source(rec.Source),
		ExtractedText:         rec.ExtractedText,
		FileBytes:             NormalizeFileBytes(rec.FileBuffer),
		StorageKey:            rec.StorageKey,
		UseMultimodalFallback: rec.UseFileUpload,
		Summary:               rec.Summary,
		Flashcards:            rec.Flashcards,
		Quiz:                  rec.Quiz,
		CreatedAt:             rec.CreatedAt.UTC(),
	}
	switch id := rec.ID.(type) {
	case primitive.ObjectID:
		doc.ID = id.Hex()
	case string:
		doc.ID = id
	}
	if doc.Source == "" {
		doc.Source = SourceFile
		if doc.OriginalName == TextDocumentName {
			doc.Source = SourceText
		}
	}
	if doc.ExtractedText == "" {
		doc.ExtractedText = NoTextPlaceholder
	}
	return doc
}
