package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

type cocoDetectionDocument struct {
	Class string  `bson:"class"`
	Score float64 `bson:"score"`
}

type userSelectionDocument struct {
	DeviceType          string `bson:"deviceType,omitempty"`
	DeviceLabel         string `bson:"deviceLabel,omitempty"`
	WasFromAI           bool   `bson:"wasFromAI"`
	ManualEntry         bool   `bson:"manualEntry"`
	AISuggestionMatched bool   `bson:"aiSuggestionMatched"`
}

type imageSizeDocument struct {
	Width  int `bson:"width,omitempty"`
	Height int `bson:"height,omitempty"`
}

type performanceDocument struct {
	InferenceTime *float64          `bson:"inferenceTime,omitempty"`
	ModelLoadTime *float64          `bson:"modelLoadTime,omitempty"`
	ImageSize     imageSizeDocument `bson:"imageSize"`
}

type deviceInfoDocument struct {
	UserAgent string `bson:"userAgent"`
	IsMobile  bool   `bson:"isMobile"`
}

type detectionDocument struct {
	ID             primitive.ObjectID      `bson:"_id,omitempty"`
	SessionID      string                  `bson:"sessionId"`
	UserID         *string                 `bson:"userId"`
	Timestamp      time.Time               `bson:"timestamp"`
	CocoDetections []cocoDetectionDocument `bson:"cocoDetections"`
	UserSelection  userSelectionDocument   `bson:"userSelection"`
	Performance    performanceDocument     `bson:"performance"`
	DeviceInfo     deviceInfoDocument      `bson:"deviceInfo"`
}

func newDetectionDocument(entry *domain.DetectionLog) detectionDocument {
	doc := detectionDocument{
		ID:             primitive.NewObjectID(),
		SessionID:      entry.SessionID,
		Timestamp:      entry.Timestamp,
		CocoDetections: make([]cocoDetectionDocument, 0, len(entry.CocoDetections)),
		UserSelection: userSelectionDocument{
			DeviceType:          entry.UserSelection.DeviceType,
			DeviceLabel:         entry.UserSelection.DeviceLabel,
			WasFromAI:           entry.UserSelection.WasFromAI,
			ManualEntry:         entry.UserSelection.ManualEntry,
			AISuggestionMatched: entry.UserSelection.AISuggestionMatched,
		},
		Performance: performanceDocument{
			InferenceTime: entry.Performance.InferenceTime,
			ModelLoadTime: entry.Performance.ModelLoadTime,
			ImageSize: imageSizeDocument{
				Width:  entry.Performance.ImageSize.Width,
				Height: entry.Performance.ImageSize.Height,
			},
		},
		DeviceInfo: deviceInfoDocument{
			UserAgent: entry.DeviceInfo.UserAgent,
			IsMobile:  entry.DeviceInfo.IsMobile,
		},
	}
	if entry.UserID != "" {
		userID := entry.UserID
		doc.UserID = &userID
	}
	for _, d := range entry.CocoDetections {
		doc.CocoDetections = append(doc.CocoDetections, cocoDetectionDocument{Class: d.Class, Score: d.Score})
	}
	return doc
}

type DetectionRepository struct {
	collection *mongo.Collection
}

func NewDetectionRepository(db *mongo.Database) *DetectionRepository {
	return &DetectionRepository{collection: db.Collection(DetectionLogsCollection)}
}

var _ domain.DetectionLogRepository = (*DetectionRepository)(nil)

func (r *DetectionRepository) Insert(ctx context.Context, entry *domain.DetectionLog) error {
	_, err := r.collection.InsertOne(ctx, newDetectionDocument(entry))
	return err
}

// Aggregate runs the summary queries for entries at or after since in parallel.
func (r *DetectionRepository) Aggregate(ctx context.Context, since time.Time, topN int) (*domain.DetectionAggregate, error) {
	inRange := bson.M{"timestamp": bson.M{"$gte": since}}
	agg := &domain.DetectionAggregate{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := r.collection.CountDocuments(gctx, inRange)
		agg.TotalDetections = total
		return err
	})

	g.Go(func() error {
		var rows []struct {
			Type  string `bson:"_id"`
			Label string `bson:"label"`
			Count int64  `bson:"count"`
		}
		err := r.aggregate(gctx, &rows, mongo.Pipeline{
			{{Key: "$match", Value: inRange}},
			{{Key: "$group", Value: bson.M{
				"_id":   "$userSelection.deviceType",
				"count": bson.M{"$sum": 1},
				"label": bson.M{"$first": "$userSelection.deviceLabel"},
			}}},
			{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
			{{Key: "$limit", Value: topN}},
		})
		for _, row := range rows {
			agg.DeviceTypes = append(agg.DeviceTypes, domain.DeviceTypeCount{Type: row.Type, Label: row.Label, Count: row.Count})
		}
		return err
	})

	g.Go(func() error {
		var rows []struct {
			Total   int64 `bson:"total"`
			Matched int64 `bson:"matched"`
		}
		err := r.aggregate(gctx, &rows, mongo.Pipeline{
			{{Key: "$match", Value: bson.M{
				"timestamp":                 bson.M{"$gte": since},
				"userSelection.manualEntry": false,
			}}},
			{{Key: "$group", Value: bson.M{
				"_id":     nil,
				"total":   bson.M{"$sum": 1},
				"matched": bson.M{"$sum": bson.M{"$cond": bson.A{"$userSelection.aiSuggestionMatched", 1, 0}}},
			}}},
		})
		if len(rows) > 0 {
			agg.AIEvaluated = rows[0].Total
			agg.AIMatched = rows[0].Matched
		}
		return err
	})

	g.Go(func() error {
		var rows []struct {
			AvgTime float64 `bson:"avgTime"`
		}
		err := r.aggregate(gctx, &rows, mongo.Pipeline{
			{{Key: "$match", Value: bson.M{
				"timestamp":                 bson.M{"$gte": since},
				"performance.inferenceTime": bson.M{"$exists": true, "$ne": nil},
			}}},
			{{Key: "$group", Value: bson.M{
				"_id":     nil,
				"avgTime": bson.M{"$avg": "$performance.inferenceTime"},
			}}},
		})
		if len(rows) > 0 {
			agg.AvgInferenceTime = rows[0].AvgTime
		}
		return err
	})

	g.Go(func() error {
		var rows []struct {
			Class    string  `bson:"_id"`
			Count    int64   `bson:"count"`
			AvgScore float64 `bson:"avgScore"`
		}
		err := r.aggregate(gctx, &rows, mongo.Pipeline{
			{{Key: "$match", Value: inRange}},
			{{Key: "$unwind", Value: "$cocoDetections"}},
			{{Key: "$group", Value: bson.M{
				"_id":      "$cocoDetections.class",
				"count":    bson.M{"$sum": 1},
				"avgScore": bson.M{"$avg": "$cocoDetections.score"},
			}}},
			{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
			{{Key: "$limit", Value: topN}},
		})
		for _, row := range rows {
			agg.CocoClasses = append(agg.CocoClasses, domain.CocoClassCount{Class: row.Class, Count: row.Count, AvgScore: row.AvgScore})
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return agg, nil
}

func (r *DetectionRepository) aggregate(ctx context.Context, out any, pipeline mongo.Pipeline) error {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}
