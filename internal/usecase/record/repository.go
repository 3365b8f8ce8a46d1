package record

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/logger"
)

// Repository loads and saves one kind of record through a Driver, decoding it into
// its schema at the boundary. Unknown fields are rejected so schema drift surfaces
// as ErrCorrupt on load instead of deep inside the economy logic.
type Repository[T any, PT interface {
	*T
	recordv1.Normalizer
}] struct {
	driver recordv1.Driver
	kind   recordv1.Kind
	logger logger.Interface
}

// NewRepository creates a Repository for records of kind.
func NewRepository[T any, PT interface {
	*T
	recordv1.Normalizer
}](driver recordv1.Driver, kind recordv1.Kind, log logger.Interface) *Repository[T, PT] {
	return &Repository[T, PT]{
		driver: driver,
		kind:   kind,
		logger: log,
	}
}

// Locator returns the locator of the record with id.
func (r *Repository[T, PT]) Locator(id string) recordv1.Locator {
	return recordv1.Locator{Kind: r.kind, ID: id}
}

// Load reads and decodes the record with id. It returns an error wrapping
// recordv1.ErrNotFound when nothing is stored.
func (r *Repository[T, PT]) Load(ctx context.Context, id string) (*T, error) {
	loc := r.Locator(id)
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	data, err := r.driver.Load(ctx, loc)
	if err != nil {
		if !stderrors.Is(err, recordv1.ErrNotFound) {
			r.logger.ErrorContext(ctx, err, logger.Field{Key: "locator", Value: loc.Key()})
		}
		return nil, errors.NewTracer(string(errors.RecordLoadError)).Wrap(err)
	}

	rec := new(T)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(rec); err != nil {
		wrapped := fmt.Errorf("%w: %s: %v", recordv1.ErrCorrupt, loc.Key(), err)
		r.logger.ErrorContext(ctx, wrapped, logger.Field{Key: "locator", Value: loc.Key()})
		return nil, errors.NewTracer(string(errors.RecordDecodeError)).Wrap(wrapped)
	}
	PT(rec).Normalize()

	return rec, nil
}

// LoadOrNew returns the stored record, or a fresh normalized one built by init when
// none is stored. created reports which happened.
func (r *Repository[T, PT]) LoadOrNew(ctx context.Context, id string, init func() *T) (rec *T, created bool, err error) {
	rec, err = r.Load(ctx, id)
	if err == nil {
		return rec, false, nil
	}
	if !stderrors.Is(err, recordv1.ErrNotFound) {
		return nil, false, err
	}

	if init != nil {
		rec = init()
	} else {
		rec = new(T)
	}
	PT(rec).Normalize()
	return rec, true, nil
}

// Save encodes rec and writes it under id.
func (r *Repository[T, PT]) Save(ctx context.Context, id string, rec *T) error {
	loc := r.Locator(id)
	if err := loc.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.NewTracer(string(errors.RecordEncodeError)).Wrap(err)
	}

	if err := r.driver.Save(ctx, loc, data); err != nil {
		r.logger.ErrorContext(ctx, err, logger.Field{Key: "locator", Value: loc.Key()})
		return errors.NewTracer(string(errors.RecordSaveError)).Wrap(err)
	}

	r.logger.DebugContext(ctx, "record saved",
		logger.Field{Key: "locator", Value: loc.Key()},
		logger.Field{Key: "bytes", Value: len(data)},
	)
	return nil
}
