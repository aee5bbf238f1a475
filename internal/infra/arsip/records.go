package arsip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/arsipak/admin-bff-go/internal/domain"
)

// Collection is the generic CRUD surface over one upstream collection.
// Implements port.Resource[T].
type Collection[T any] struct {
	client *Client
	path   string // trailing-slash endpoint, e.g. "/divisions/"
	name   string // singular resource name for errors, e.g. "division"
}

// NewCollection binds a client to one upstream collection endpoint.
func NewCollection[T any](c *Client, path, name string) *Collection[T] {
	return &Collection[T]{client: c, path: path, name: name}
}

// List fetches one page of the collection.
func (r *Collection[T]) List(ctx context.Context, token string, p domain.ListParams) (domain.Page[T], error) {
	ctx, span := tracer.Start(ctx, "Arsip.List")
	defer span.End()
	span.SetAttributes(attribute.String("resource", r.name))

	q := url.Values{}
	if p.Page > 1 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	path := r.path
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page domain.Page[T]
	err := r.client.execute(ctx, "records", func() error {
		raw, err := r.client.do(ctx, http.MethodGet, path, token, nil)
		if err != nil {
			return err
		}
		items, total, _, err := decodeList[T](raw)
		if err != nil {
			return err
		}
		page = domain.Page[T]{Items: items, Total: total}
		return nil
	})
	if err != nil {
		return domain.Page[T]{}, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

// Get fetches a single record by id.
func (r *Collection[T]) Get(ctx context.Context, token, id string) (*T, error) {
	ctx, span := tracer.Start(ctx, "Arsip.Get")
	defer span.End()
	span.SetAttributes(attribute.String("resource", r.name), attribute.String("id", id))

	var out *T
	err := r.client.execute(ctx, "records", func() error {
		raw, err := r.client.do(ctx, http.MethodGet, r.path+id+"/", token, nil)
		if err != nil {
			return err
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return fmt.Errorf("decode %s: %w", r.name, err)
		}
		out = &item
		return nil
	})
	if err != nil {
		return nil, r.remapNotFound(err, id)
	}
	return out, nil
}

// Create posts a new record and returns the stored representation.
func (r *Collection[T]) Create(ctx context.Context, token string, in T) (*T, error) {
	ctx, span := tracer.Start(ctx, "Arsip.Create")
	defer span.End()
	span.SetAttributes(attribute.String("resource", r.name))

	var out *T
	err := r.client.executeWrite(ctx, "records", func() error {
		raw, err := r.client.do(ctx, http.MethodPost, r.path, token, in)
		if err != nil {
			return err
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return fmt.Errorf("decode created %s: %w", r.name, err)
		}
		out = &item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces a record by id.
func (r *Collection[T]) Update(ctx context.Context, token, id string, in T) (*T, error) {
	ctx, span := tracer.Start(ctx, "Arsip.Update")
	defer span.End()
	span.SetAttributes(attribute.String("resource", r.name), attribute.String("id", id))

	var out *T
	err := r.client.executeWrite(ctx, "records", func() error {
		raw, err := r.client.do(ctx, http.MethodPut, r.path+id+"/", token, in)
		if err != nil {
			return err
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return fmt.Errorf("decode updated %s: %w", r.name, err)
		}
		out = &item
		return nil
	})
	if err != nil {
		return nil, r.remapNotFound(err, id)
	}
	return out, nil
}

// Delete removes a record by id.
func (r *Collection[T]) Delete(ctx context.Context, token, id string) error {
	ctx, span := tracer.Start(ctx, "Arsip.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("resource", r.name), attribute.String("id", id))

	err := r.client.executeWrite(ctx, "records", func() error {
		_, err := r.client.do(ctx, http.MethodDelete, r.path+id+"/", token, nil)
		return err
	})
	return r.remapNotFound(err, id)
}

// remapNotFound replaces the transport-level not-found with one naming the
// resource and id.
func (r *Collection[T]) remapNotFound(err error, id string) error {
	var nf *domain.ErrNotFound
	if errors.As(err, &nf) {
		return &domain.ErrNotFound{Resource: r.name, ID: id}
	}
	return err
}
