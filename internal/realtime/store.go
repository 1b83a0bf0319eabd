package realtime

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("document not found")

// Product lives in the document catalog; Categories is populated by the
// read-time lookup, never stored.
type Product struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	About       string               `bson:"about" json:"about"`
	Price       float64              `bson:"price" json:"price"`
	CategoryIDs []primitive.ObjectID `bson:"categoryIds" json:"categoryIds"`
	Categories  []Category           `bson:"categories,omitempty" json:"categories,omitempty"`
}

type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

type Store struct{ DB *mongo.Database }

func (s *Store) products() *mongo.Collection   { return s.DB.Collection("products") }
func (s *Store) categories() *mongo.Collection { return s.DB.Collection("categories") }

var categoryLookup = bson.D{{Key: "$lookup", Value: bson.D{
	{Key: "from", Value: "categories"},
	{Key: "localField", Value: "categoryIds"},
	{Key: "foreignField", Value: "_id"},
	{Key: "as", Value: "categories"},
}}}

func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	cur, err := s.products().Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{}}},
		categoryLookup,
	})
	if err != nil {
		return nil, err
	}
	out := []Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetProduct(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	cur, err := s.products().Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		categoryLookup,
	})
	if err != nil {
		return nil, err
	}
	var out []Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

func (s *Store) CreateProduct(ctx context.Context, p *Product) error {
	p.ID = primitive.NewObjectID()
	if p.CategoryIDs == nil {
		p.CategoryIDs = []primitive.ObjectID{}
	}
	_, err := s.products().InsertOne(ctx, bson.D{
		{Key: "_id", Value: p.ID},
		{Key: "name", Value: p.Name},
		{Key: "about", Value: p.About},
		{Key: "price", Value: p.Price},
		{Key: "categoryIds", Value: p.CategoryIDs},
	})
	return err
}

func (s *Store) ReplaceProduct(ctx context.Context, p *Product) error {
	res, err := s.products().ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: p.ID}},
		bson.D{
			{Key: "name", Value: p.Name},
			{Key: "about", Value: p.About},
			{Key: "price", Value: p.Price},
			{Key: "categoryIds", Value: p.CategoryIDs},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PatchProduct applies only the supplied fields via $set.
func (s *Store) PatchProduct(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	res, err := s.products().UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: updates}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	prior, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.products().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return nil, err
	}
	return prior, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *Category) error {
	c.ID = primitive.NewObjectID()
	_, err := s.categories().InsertOne(ctx, bson.D{
		{Key: "_id", Value: c.ID},
		{Key: "name", Value: c.Name},
	})
	return err
}

func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	cur, err := s.categories().Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	out := []Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
