package repository

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// Campos que el cliente no puede pisar en un update. sort_order e is_default
// cambian solo por reorder y set-default.
var protectedFields = []string{"_id", "owner_id", "created_at", "sort_order", "is_default"}

// CollectionRepository maneja una colección ordenada por dueño (direcciones de
// un usuario, media u opciones de un producto). Los sort_order de un dueño
// quedan siempre 0..n-1.
type CollectionRepository[T any, PT interface {
	*T
	models.Entry
}] struct {
	collection *mongo.Collection
	hasDefault bool
	now        func() time.Time
}

func NewCollectionRepository[T any, PT interface {
	*T
	models.Entry
}](collection *mongo.Collection) *CollectionRepository[T, PT] {
	_, hasDefault := any(PT(new(T))).(models.Defaulter)
	return &CollectionRepository[T, PT]{
		collection: collection,
		hasDefault: hasDefault,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *CollectionRepository[T, PT]) HasDefault() bool { return r.hasDefault }

// List devuelve los elementos del dueño ordenados por sort_order
func (r *CollectionRepository[T, PT]) List(ctx context.Context, owner string) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.list(ctx, owner)
}

func (r *CollectionRepository[T, PT]) list(ctx context.Context, owner string) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create agrega al final. Si el elemento viene como default, los demás dejan
// de serlo.
func (r *CollectionRepository[T, PT]) Create(ctx context.Context, owner string, item *T) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": owner})
	if err != nil {
		return err
	}

	entry := PT(item)
	entry.Prepare(owner, int(count), r.now())

	if d, ok := any(entry).(models.Defaulter); ok && d.Default() {
		if _, err := r.collection.UpdateMany(ctx,
			bson.M{"owner_id": owner, "is_default": true},
			bson.M{"$set": bson.M{"is_default": false}},
		); err != nil {
			return err
		}
	}

	_, err = r.collection.InsertOne(ctx, item)
	return err
}

// Update reemplaza los campos editables y devuelve el documento actualizado
func (r *CollectionRepository[T, PT]) Update(ctx context.Context, owner, id string, item *T) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	PT(item).Touch(r.now())
	fields, err := toSetDocument(item)
	if err != nil {
		return nil, err
	}

	var out T
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "owner_id": owner},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func toSetDocument(item any) (bson.M, error) {
	raw, err := bson.Marshal(item)
	if err != nil {
		return nil, err
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for _, f := range protectedFields {
		delete(fields, f)
	}
	return fields, nil
}

// Delete borra el elemento y compacta los sort_order restantes
func (r *CollectionRepository[T, PT]) Delete(ctx context.Context, owner, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "owner_id": owner})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return r.compact(ctx, owner)
}

func (r *CollectionRepository[T, PT]) compact(ctx context.Context, owner string) error {
	cursor, err := r.collection.Find(ctx,
		bson.M{"owner_id": owner},
		options.Find().
			SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "_id", Value: 1}}).
			SetProjection(bson.M{"_id": 1, "sort_order": 1}),
	)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID        primitive.ObjectID `bson:"_id"`
		SortOrder int                `bson:"sort_order"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return err
	}

	var writes []mongo.WriteModel
	for i, row := range rows {
		if row.SortOrder == i {
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": row.ID}).
			SetUpdate(bson.M{"$set": bson.M{"sort_order": i}}))
	}
	if len(writes) == 0 {
		return nil
	}
	_, err = r.collection.BulkWrite(ctx, writes)
	return err
}

// SetDefault deja un único default para el dueño
func (r *CollectionRepository[T, PT]) SetDefault(ctx context.Context, owner, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID, "owner_id": owner})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	_, err = r.collection.BulkWrite(ctx, []mongo.WriteModel{
		mongo.NewUpdateManyModel().
			SetFilter(bson.M{"owner_id": owner, "_id": bson.M{"$ne": objID}}).
			SetUpdate(bson.M{"$set": bson.M{"is_default": false}}),
		mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": objID}).
			SetUpdate(bson.M{"$set": bson.M{"is_default": true, "updated_at": r.now()}}),
	})
	return err
}

// Reorder aplica el orden recibido en una sola escritura y devuelve la lista
// autoritativa. Todos los ids tienen que ser del dueño; los que falten quedan
// al final en su orden actual. El sort_order del payload solo se usa para
// ordenar: el resultado siempre es 0..n-1.
func (r *CollectionRepository[T, PT]) Reorder(ctx context.Context, owner string, positions []models.Position) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	current, err := r.list(ctx, owner)
	if err != nil {
		return nil, err
	}

	known := make(map[primitive.ObjectID]bool, len(current))
	for i := range current {
		known[PT(&current[i]).EntryID()] = true
	}

	ordered := sortPositions(positions)
	seen := make(map[primitive.ObjectID]bool, len(ordered))
	ids := make([]primitive.ObjectID, 0, len(current))
	defaults := make(map[primitive.ObjectID]bool, len(ordered))
	defaultCount := 0

	for _, p := range ordered {
		objID, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return nil, ErrInvalidID
		}
		if !known[objID] || seen[objID] {
			return nil, ErrInvalidOrder
		}
		seen[objID] = true
		ids = append(ids, objID)
		defaults[objID] = p.IsDefault
		if p.IsDefault {
			defaultCount++
		}
	}
	if r.hasDefault && defaultCount > 1 {
		return nil, ErrInvalidOrder
	}
	for i := range current {
		if id := PT(&current[i]).EntryID(); !seen[id] {
			ids = append(ids, id)
		}
	}

	now := r.now()
	writes := make([]mongo.WriteModel, 0, len(ids))
	for i, id := range ids {
		set := bson.M{"sort_order": i, "updated_at": now}
		if r.hasDefault && seen[id] {
			set["is_default"] = defaults[id]
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id, "owner_id": owner}).
			SetUpdate(bson.M{"$set": set}))
	}
	if len(writes) > 0 {
		if _, err := r.collection.BulkWrite(ctx, writes); err != nil {
			return nil, err
		}
	}

	return r.list(ctx, owner)
}

// sortPositions ordena por sort_order manteniendo el orden del payload en empates
func sortPositions(positions []models.Position) []models.Position {
	out := make([]models.Position, len(positions))
	copy(out, positions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}
