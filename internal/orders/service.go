package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
)

// OrderStore persists the order aggregate. Replace, Patch and Delete report
// a missing target through ErrOrderNotFound derived from a zero-row outcome,
// not from a pre-read.
type OrderStore interface {
	Insert(ctx context.Context, o *Order) error
	Replace(ctx context.Context, o *Order) error
	Patch(ctx context.Context, id string, p StorePatch) (*Order, error)
	Delete(ctx context.Context, id string) (*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
}

// StorePatch is the sparse column set for a partial update. Total travels
// with ProductIDs: they change together or not at all.
type StorePatch struct {
	UserID     *string
	ProductIDs []string
	Total      *decimal.Decimal
	Payment    *bool
}

// Notifier receives one event per successful mutation, after the write is
// acknowledged. Delivery is the notifier's problem; a lost event never fails
// the request that produced it.
type Notifier interface {
	OrderCreated(o Order)
	OrderUpdated(o Order)
	OrderDeleted(id string, prior Order)
}

// Service owns the create / full-replace / partial-update / delete
// transitions of an order, orchestrating validation and pricing so that the
// stored total always reflects the product set of the last successful write.
//
// Validation and the write are two separate store round trips; concurrent
// writers to the same id race and the later commit wins. A Create retried
// after an ambiguous store failure may create a duplicate order.
type Service struct {
	store     OrderStore
	catalog   CatalogStore
	notify    Notifier
	taxRate   decimal.Decimal
	validator Validator
}

func NewService(store OrderStore, cat CatalogStore, n Notifier, taxRate decimal.Decimal) *Service {
	return &Service{
		store:     store,
		catalog:   cat,
		notify:    n,
		taxRate:   taxRate,
		validator: Validator{Store: cat},
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	prices, err := s.validator.Validate(ctx, in.UserID, in.ProductIDs)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	o := Order{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		ProductIDs: in.ProductIDs,
		Total:      ComputeTotal(prices, s.taxRate),
		Payment:    in.Payment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Insert(ctx, &o); err != nil {
		return nil, err
	}
	s.notify.OrderCreated(o)
	return &o, nil
}

// Replace re-validates and re-prices every field, exactly like Create, and
// keeps createdAt from the existing record.
func (s *Service) Replace(ctx context.Context, id string, in CreateInput) (*Order, error) {
	prices, err := s.validator.Validate(ctx, in.UserID, in.ProductIDs)
	if err != nil {
		return nil, err
	}
	o := Order{
		ID:         id,
		UserID:     in.UserID,
		ProductIDs: in.ProductIDs,
		Total:      ComputeTotal(prices, s.taxRate),
		Payment:    in.Payment,
	}
	if err := s.store.Replace(ctx, &o); err != nil {
		return nil, err
	}
	s.notify.OrderUpdated(o)
	return &o, nil
}

// Patch validates and applies only the supplied fields. A payment-only patch
// touches neither the product set nor the total.
func (s *Service) Patch(ctx context.Context, id string, in PatchInput) (*Order, error) {
	if in.Empty() {
		return nil, ErrEmptyUpdate
	}
	upd := StorePatch{UserID: in.UserID, Payment: in.Payment}
	if in.UserID != nil {
		if err := s.validator.ValidateUser(ctx, *in.UserID); err != nil {
			return nil, err
		}
	}
	if in.ProductIDs != nil {
		prices, err := s.validator.ValidateProducts(ctx, in.ProductIDs)
		if err != nil {
			return nil, err
		}
		total := ComputeTotal(prices, s.taxRate)
		upd.ProductIDs = in.ProductIDs
		upd.Total = &total
	}
	o, err := s.store.Patch(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.notify.OrderUpdated(*o)
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*Order, error) {
	prior, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify.OrderDeleted(id, *prior)
	return prior, nil
}

// Get joins the order with its user and resolved products for display.
// References that disappeared since the last write are simply omitted.
func (s *Service) Get(ctx context.Context, id string) (*OrderDetail, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDetail(ctx, *o)
}

func (s *Service) List(ctx context.Context) ([]OrderDetail, error) {
	os, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrderDetail, 0, len(os))
	for _, o := range os {
		d, err := s.toDetail(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *Service) toDetail(ctx context.Context, o Order) (*OrderDetail, error) {
	d := OrderDetail{Order: o, Products: []catalog.Product{}}
	u, err := s.catalog.GetUser(ctx, o.UserID)
	if err != nil {
		return nil, err
	}
	d.User = u
	found, err := s.catalog.GetProductsByIDs(ctx, dedup(o.ProductIDs))
	if err != nil {
		return nil, err
	}
	for _, id := range dedup(o.ProductIDs) {
		if p, ok := found[id]; ok {
			d.Products = append(d.Products, p)
		}
	}
	return &d, nil
}
