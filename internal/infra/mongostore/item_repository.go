package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

// itemDocument reads both canonical and legacy field names. Legacy names are
// never written.
type itemDocument struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	UserID               string             `bson:"userId"`
	Name                 string             `bson:"name"`
	Category             string             `bson:"category,omitempty"`
	ItemType             string             `bson:"itemType,omitempty"`
	DateLastServiced     *time.Time         `bson:"dateLastServiced,omitempty"`
	ExpectedDurationDays int                `bson:"expectedDurationDays,omitempty"`
	Image                string             `bson:"image,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`

	BatteryType      string     `bson:"batteryType,omitempty"`
	MaintenanceType  string     `bson:"maintenanceType,omitempty"`
	DateLastChanged  *time.Time `bson:"dateLastChanged,omitempty"`
	ExpectedDuration int        `bson:"expectedDuration,omitempty"`
}

func (d *itemDocument) toDomain() *domain.MaintenanceItem {
	item := &domain.MaintenanceItem{
		ID:                   d.ID.Hex(),
		OwnerID:              d.UserID,
		Name:                 d.Name,
		Category:             d.Category,
		ItemType:             firstNonEmpty(d.ItemType, d.BatteryType, d.MaintenanceType),
		ExpectedDurationDays: d.ExpectedDurationDays,
		Image:                d.Image,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}

	if item.Category == "" && d.ItemType == "" && d.BatteryType != "" {
		item.Category = domain.CategoryBattery
	}

	switch {
	case d.DateLastServiced != nil:
		item.DateLastServiced = *d.DateLastServiced
	case d.DateLastChanged != nil:
		item.DateLastServiced = *d.DateLastChanged
	}

	if item.ExpectedDurationDays <= 0 {
		item.ExpectedDurationDays = d.ExpectedDuration
	}

	return item
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type ItemRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{
		collection: db.Collection(ItemsCollection),
		now:        time.Now,
	}
}

var _ domain.ItemRepository = (*ItemRepository)(nil)

func (r *ItemRepository) ListAll(ctx context.Context) ([]*domain.MaintenanceItem, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.MaintenanceItem, error) {
	return r.find(ctx, bson.M{"userId": ownerID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *ItemRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.MaintenanceItem, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]*domain.MaintenanceItem, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toDomain())
	}
	return items, nil
}

func (r *ItemRepository) FindByID(ctx context.Context, ownerID, itemID string) (*domain.MaintenanceItem, error) {
	filter, ok := ownedItemFilter(ownerID, itemID)
	if !ok {
		return nil, domain.ErrItemNotFound
	}

	var doc itemDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ItemRepository) Insert(ctx context.Context, item *domain.MaintenanceItem) (*domain.MaintenanceItem, error) {
	now := r.now().UTC()
	serviced := item.DateLastServiced

	doc := itemDocument{
		ID:                   primitive.NewObjectID(),
		UserID:               item.OwnerID,
		Name:                 item.Name,
		Category:             item.Category,
		ItemType:             item.ItemType,
		DateLastServiced:     &serviced,
		ExpectedDurationDays: item.ExpectedDurationDays,
		Image:                item.Image,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ItemRepository) UpdateFields(ctx context.Context, ownerID, itemID string, fields domain.ItemFields) (*domain.MaintenanceItem, error) {
	filter, ok := ownedItemFilter(ownerID, itemID)
	if !ok {
		return nil, domain.ErrItemNotFound
	}

	set := bson.M{"updatedAt": r.now().UTC()}
	unset := bson.M{}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Category != nil {
		set["category"] = *fields.Category
	}
	if fields.ItemType != nil {
		set["itemType"] = *fields.ItemType
		unset["batteryType"] = ""
		unset["maintenanceType"] = ""
	}
	if fields.DateLastServiced != nil {
		set["dateLastServiced"] = *fields.DateLastServiced
		unset["dateLastChanged"] = ""
	}
	if fields.ExpectedDurationDays != nil {
		set["expectedDurationDays"] = *fields.ExpectedDurationDays
		unset["expectedDuration"] = ""
	}
	if fields.Image != nil {
		set["image"] = *fields.Image
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var doc itemDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ItemRepository) Delete(ctx context.Context, ownerID, itemID string) error {
	filter, ok := ownedItemFilter(ownerID, itemID)
	if !ok {
		return domain.ErrItemNotFound
	}

	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func ownedItemFilter(ownerID, itemID string) (bson.M, bool) {
	objID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": objID, "userId": ownerID}, true
}
