package repository

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"storefront/internal/models"
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{collection: collection}
}

// ListQuery son los filtros del listado de productos
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Category string
	Sort     string // campo:dirección, ej. "price:asc"
	Summary  bool
}

var sortFields = map[string]string{
	"name":       "name",
	"price":      "base_price",
	"created_at": "created_at",
}

// Create crea un nuevo producto
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.IsDeleted = false

	_, err := r.collection.InsertOne(ctx, product)
	return err
}

// FindByID obtiene un producto por ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var product models.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objID, "is_deleted": false}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	product.UpgradeLegacyPrice()
	return &product, nil
}

// FindAll lista productos con paginación y filtros. El total se cuenta en
// paralelo con la búsqueda.
func (r *ProductRepository) FindAll(ctx context.Context, q ListQuery) ([]*models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := buildProductFilter(q)

	findOptions := options.Find()
	if q.Summary {
		findOptions.SetProjection(bson.M{
			"sku":         1,
			"name":        1,
			"category":    1,
			"base_price":  1,
			"price_cents": 1,
			"currency":    1,
			"stock":       1,
			"images":      bson.M{"$slice": 1},
			"is_active":   1,
			"created_at":  1,
		})
	}
	if q.Page > 0 && q.PageSize > 0 {
		findOptions.SetSkip(int64((q.Page - 1) * q.PageSize))
		findOptions.SetLimit(int64(q.PageSize))
	} else {
		findOptions.SetLimit(100)
	}
	findOptions.SetSort(buildProductSort(q.Sort))

	var (
		total    int64
		products []*models.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.collection.CountDocuments(gctx, filter)
		total = n
		return err
	})
	g.Go(func() error {
		cursor, err := r.collection.Find(gctx, filter, findOptions)
		if err != nil {
			return err
		}
		defer cursor.Close(gctx)
		return cursor.All(gctx, &products)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if products == nil {
		products = []*models.Product{}
	}
	for _, p := range products {
		p.UpgradeLegacyPrice()
	}
	return products, total, nil
}

func buildProductFilter(q ListQuery) bson.M {
	filter := bson.M{"is_deleted": false}

	if s := strings.TrimSpace(q.Search); s != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		filter["$or"] = []bson.M{
			{"name": pattern},
			{"description": pattern},
			{"sku": pattern},
		}
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	return filter
}

// buildProductSort acepta "campo:asc|desc"; campos desconocidos van por created_at desc
func buildProductSort(raw string) bson.D {
	field, dir, _ := strings.Cut(raw, ":")
	key, ok := sortFields[strings.TrimSpace(field)]
	if !ok {
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
	order := 1
	if dir == "desc" {
		order = -1
	}
	return bson.D{{Key: key, Value: order}, {Key: "_id", Value: order}}
}

// Update aplica un $set parcial
func (r *ProductRepository) Update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	update["updated_at"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "is_deleted": false},
		bson.M{"$set": update},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marca un producto como eliminado
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
