package restclient

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/models"
	"storefront/internal/staged"
)

// Collection es una colección ordenada de la API; implementa staged.Remote
type Collection[T any] struct {
	client *Client
	path   string
}

var _ staged.Remote[models.Address] = (*Collection[models.Address])(nil)

func NewCollection[T any](c *Client, path string) *Collection[T] {
	return &Collection[T]{client: c, path: path}
}

func (c *Client) Addresses(userID string) *Collection[models.Address] {
	return NewCollection[models.Address](c, "/v1/users/"+url.PathEscape(userID)+"/addresses")
}

func (c *Client) Media(productID string) *Collection[models.Media] {
	return NewCollection[models.Media](c, "/v1/products/"+url.PathEscape(productID)+"/media")
}

func (c *Client) Options(productID string) *Collection[models.Option] {
	return NewCollection[models.Option](c, "/v1/products/"+url.PathEscape(productID)+"/options")
}

func (col *Collection[T]) item(id string) string {
	return col.path + "/" + url.PathEscape(id)
}

func (col *Collection[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := col.client.do(ctx, http.MethodGet, col.path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (col *Collection[T]) Create(ctx context.Context, item T) (T, error) {
	var created T
	err := col.client.do(ctx, http.MethodPost, col.path, item, &created)
	return created, err
}

func (col *Collection[T]) Update(ctx context.Context, id string, item T) (T, error) {
	var updated T
	err := col.client.do(ctx, http.MethodPut, col.item(id), item, &updated)
	return updated, err
}

func (col *Collection[T]) Delete(ctx context.Context, id string) error {
	return col.client.do(ctx, http.MethodDelete, col.item(id), nil, nil)
}

func (col *Collection[T]) SetDefault(ctx context.Context, id string) error {
	return col.client.do(ctx, http.MethodPut, col.item(id)+"/default", nil, nil)
}

func (col *Collection[T]) Reorder(ctx context.Context, positions []staged.Position) ([]T, error) {
	var items []T
	if err := col.client.do(ctx, http.MethodPut, col.path+"/reorder", positions, &items); err != nil {
		return nil, err
	}
	return items, nil
}
