package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/money"
	"storefront/internal/prefs"
	"storefront/internal/repository"
	"storefront/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProducts struct {
	mu    sync.Mutex
	items map[string]*models.Product
	finds int
}

func newFakeProducts(ps ...*models.Product) *fakeProducts {
	f := &fakeProducts{items: map[string]*models.Product{}}
	for _, p := range ps {
		f.items[p.ID.Hex()] = p
	}
	return f
}

func (f *fakeProducts) Create(ctx context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	f.items[p.ID.Hex()] = p
	return nil
}

func (f *fakeProducts) FindByID(ctx context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	p, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) FindAll(ctx context.Context, q repository.ListQuery) ([]*models.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProducts) Update(ctx context.Context, id string, update bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v, ok := update["base_price"]; ok {
		p.BasePrice = v.(money.Amount)
	}
	return nil
}

func (f *fakeProducts) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

// fakeAddresses imita el repositorio: append, compactar, un único default
type fakeAddresses struct {
	mu    sync.Mutex
	items []models.Address
}

func (f *fakeAddresses) index(id string) int {
	for i, a := range f.items {
		if a.ID.Hex() == id {
			return i
		}
	}
	return -1
}

func (f *fakeAddresses) List(ctx context.Context, owner string) ([]models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Address{}, f.items...), nil
}

func (f *fakeAddresses) Create(ctx context.Context, owner string, a *models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.Prepare(owner, len(f.items), time.Now())
	f.items = append(f.items, *a)
	return nil
}

func (f *fakeAddresses) Update(ctx context.Context, owner, id string, a *models.Address) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	cur := f.items[i]
	cur.Name, cur.Line1 = a.Name, a.Line1
	f.items[i] = cur
	return &cur, nil
}

func (f *fakeAddresses) Delete(ctx context.Context, owner, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	for j := range f.items {
		f.items[j].SortOrder = j
	}
	return nil
}

func (f *fakeAddresses) SetDefault(ctx context.Context, owner, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index(id) < 0 {
		return repository.ErrNotFound
	}
	for j := range f.items {
		f.items[j].IsDefault = f.items[j].ID.Hex() == id
	}
	return nil
}

func (f *fakeAddresses) Reorder(ctx context.Context, owner string, positions []models.Position) ([]models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(positions) != len(f.items) {
		return nil, repository.ErrInvalidOrder
	}
	next := make([]models.Address, len(positions))
	for _, p := range positions {
		i := f.index(p.ID)
		if i < 0 || p.SortOrder >= len(next) {
			return nil, repository.ErrInvalidOrder
		}
		a := f.items[i]
		a.SortOrder = p.SortOrder
		a.IsDefault = p.IsDefault
		next[p.SortOrder] = a
	}
	f.items = next
	return append([]models.Address{}, f.items...), nil
}

type fakeOptions struct {
	mu    sync.Mutex
	byID  map[string][]models.Option
	lists int
}

func (f *fakeOptions) List(ctx context.Context, owner string) ([]models.Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return f.byID[owner], nil
}

func newCache(t *testing.T) *cache.Cache {
	t.Helper()
	c := cache.New(time.Minute)
	t.Cleanup(c.Close)
	return c
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func option(name string, adjustments map[string]string, order ...string) models.Option {
	o := models.Option{ID: primitive.NewObjectID(), Name: name}
	for i, valueName := range order {
		o.Values = append(o.Values, models.OptionValue{
			ID:              name + "-" + valueName,
			Name:            valueName,
			PriceAdjustment: money.MustParse(adjustments[valueName]),
			SortOrder:       i,
		})
	}
	return o
}

func TestCreateProductValidation(t *testing.T) {
	h := NewProductHandler(newFakeProducts(), newCache(t))
	r := gin.New()
	r.POST("/products", h.CreateProduct)

	w := doJSON(r, http.MethodPost, "/products", map[string]any{"name": "Mug"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[ErrorResponse](t, w)
	if resp.Fields["sku"] != "is required" || resp.Fields["currency"] != "is required" {
		t.Errorf("fields = %v", resp.Fields)
	}

	w = doJSON(r, http.MethodPost, "/products", map[string]any{
		"sku": "MUG-1", "name": "Mug", "category": "kitchen", "currency": "USD", "base_price": "-1",
	})
	if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Fields["base_price"] == "" {
		t.Errorf("negative price: %d %s", w.Code, w.Body)
	}

	w = doJSON(r, http.MethodPost, "/products", map[string]any{
		"sku": "MUG-1", "name": "Mug", "category": "kitchen", "currency": "USD", "base_price": "12.50",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", w.Code, w.Body)
	}
	if p := decode[models.Product](t, w); p.BasePrice.String() != "12.5" {
		t.Errorf("base_price = %s", p.BasePrice)
	}
}

func TestGetProductErrors(t *testing.T) {
	h := NewProductHandler(newFakeProducts(), newCache(t))
	r := gin.New()
	r.GET("/products/:id", h.GetProduct)

	if w := doJSON(r, http.MethodGet, "/products/nope", nil); w.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/products/"+primitive.NewObjectID().Hex(), nil); w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d", w.Code)
	}
}

func TestAddressCollectionRoutes(t *testing.T) {
	store := &fakeAddresses{}
	h := NewCollectionHandler[models.Address](store, "addresses")
	r := gin.New()
	h.Register(r.Group("/users/:id/addresses"), true)

	base := "/users/u1/addresses"
	body := func(line1 string) map[string]any {
		return map[string]any{"name": "Home", "line1": line1, "city": "X", "postal_code": "1", "country": "US"}
	}

	w := doJSON(r, http.MethodPost, base, map[string]any{"name": "Home"})
	if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Fields["line1"] != "is required" {
		t.Fatalf("invalid create: %d %s", w.Code, w.Body)
	}

	first := decode[models.Address](t, doJSON(r, http.MethodPost, base, body("1 Main")))
	second := decode[models.Address](t, doJSON(r, http.MethodPost, base, body("2 Main")))
	if first.SortOrder != 0 || second.SortOrder != 1 || second.UserID != "u1" {
		t.Fatalf("created = %+v / %+v", first, second)
	}

	if w := doJSON(r, http.MethodPut, base+"/"+second.ID.Hex()+"/default", nil); w.Code != http.StatusNoContent {
		t.Fatalf("set default status = %d", w.Code)
	}

	w = doJSON(r, http.MethodPut, base+"/reorder", []map[string]any{
		{"id": second.ID.Hex(), "sort_order": 0, "is_default": true},
		{"id": first.ID.Hex(), "sort_order": 1},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder status = %d %s", w.Code, w.Body)
	}
	items := decode[[]models.Address](t, w)
	if items[0].ID != second.ID || !items[0].IsDefault || items[1].IsDefault {
		t.Errorf("after reorder = %+v", items)
	}

	w = doJSON(r, http.MethodPut, base+"/reorder", []map[string]any{{"id": first.ID.Hex(), "sort_order": 0}})
	if w.Code != http.StatusConflict {
		t.Errorf("partial reorder status = %d", w.Code)
	}

	if w := doJSON(r, http.MethodDelete, base+"/"+second.ID.Hex(), nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, base+"/"+second.ID.Hex(), nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}

	items = decode[[]models.Address](t, doJSON(r, http.MethodGet, base, nil))
	if len(items) != 1 || items[0].SortOrder != 0 {
		t.Errorf("after delete = %+v", items)
	}
}

func TestCollectionOwnerMustExist(t *testing.T) {
	h := NewCollectionHandler[models.Address](&fakeAddresses{}, "media")
	h.OwnerExists = func(ctx context.Context, owner string) error { return repository.ErrNotFound }
	r := gin.New()
	h.Register(r.Group("/products/:id/media"), false)

	if w := doJSON(r, http.MethodGet, "/products/p1/media", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodPut, "/products/p1/media/x/default", nil); w.Code != http.StatusNotFound {
		t.Errorf("default route should not exist without flag, got %d", w.Code)
	}
}

func pricingRouter(t *testing.T) (*gin.Engine, *fakeProducts, *fakeOptions, *cache.Cache, string) {
	t.Helper()
	product := &models.Product{ID: primitive.NewObjectID(), Name: "Tee", BasePrice: money.MustParse("10")}
	products := newFakeProducts(product)
	pid := product.ID.Hex()

	opts := &fakeOptions{byID: map[string][]models.Option{
		pid: {
			option("Size", map[string]string{"S": "0", "L": "5"}, "S", "L"),
			option("Color", map[string]string{"Red": "-2", "Gold": "3"}, "Red", "Gold"),
		},
	}}
	opts.byID[pid][1].SortOrder = 1

	c := newCache(t)
	h := NewPricingHandler(products, opts, c, time.Minute)
	r := gin.New()
	r.GET("/products/:id/price-range", h.GetPriceRange)
	r.POST("/cart/quote", h.Quote)
	return r, products, opts, c, pid
}

func TestPriceRangeIsCachedUntilInvalidated(t *testing.T) {
	r, _, opts, c, pid := pricingRouter(t)

	for i := 0; i < 2; i++ {
		w := doJSON(r, http.MethodGet, "/products/"+pid+"/price-range", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d %s", w.Code, w.Body)
		}
		got := decode[map[string]any](t, w)
		if got["min"] != "8" || got["max"] != "18" || got["has_range"] != true {
			t.Errorf("range = %v", got)
		}
	}
	if opts.lists != 1 {
		t.Errorf("options listed %d times, want 1 (cached)", opts.lists)
	}

	InvalidatePriceRange(c, pid)
	doJSON(r, http.MethodGet, "/products/"+pid+"/price-range", nil)
	if opts.lists != 2 {
		t.Errorf("options listed %d times after invalidation, want 2", opts.lists)
	}
}

func TestQuote(t *testing.T) {
	r, _, _, _, pid := pricingRouter(t)

	w := doJSON(r, http.MethodPost, "/cart/quote", map[string]any{
		"items": []map[string]any{{
			"product_id":       pid,
			"quantity":         2,
			"selected_options": map[string]any{"by": "name", "values": map[string]string{"Size": "L"}},
		}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body)
	}
	q := decode[map[string]any](t, w)
	if q["subtotal"] != "30" {
		t.Errorf("subtotal = %v, want 30", q["subtotal"])
	}

	w = doJSON(r, http.MethodPost, "/cart/quote", map[string]any{
		"items": []map[string]any{{"product_id": pid, "quantity": 0}},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("quantity 0 status = %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/cart/quote", map[string]any{
		"items": []map[string]any{{"product_id": primitive.NewObjectID().Hex(), "quantity": 1}},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown product status = %d", w.Code)
	}

	if w := doJSON(r, http.MethodPost, "/cart/quote", map[string]any{"items": []any{}}); w.Code != http.StatusBadRequest {
		t.Errorf("empty cart status = %d", w.Code)
	}
}

func TestUpload(t *testing.T) {
	h := NewUploadHandler(storage.NewLocal(t.TempDir(), "/uploads"))
	r := gin.New()
	r.POST("/uploads", h.Upload)

	send := func(filename string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if filename != "" {
			fw, _ := mw.CreateFormFile("file", filename)
			_, _ = fw.Write([]byte("image-bytes"))
		}
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send("photo.jpg")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d %s", w.Code, w.Body)
	}
	if res := decode[storage.PutResult](t, w); res.Key == "" || res.URL != "/uploads/"+res.Key {
		t.Errorf("result = %+v", res)
	}

	if w := send("notes.txt"); w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("txt status = %d", w.Code)
	}
	if w := send(""); w.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d", w.Code)
	}
}

func TestPrefs(t *testing.T) {
	h := NewPrefsHandler(prefs.NewCacheStore(newCache(t), time.Hour))
	r := gin.New()
	r.GET("/sessions/:sid/prefs", h.Get)
	r.PUT("/sessions/:sid/prefs", h.Put)

	got := decode[prefs.Preferences](t, doJSON(r, http.MethodGet, "/sessions/s1/prefs", nil))
	if got != prefs.Defaults() {
		t.Errorf("defaults = %+v", got)
	}

	w := doJSON(r, http.MethodPut, "/sessions/s1/prefs", map[string]any{"theme": "neon"})
	if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Fields["theme"] == "" {
		t.Errorf("invalid theme: %d %s", w.Code, w.Body)
	}

	w = doJSON(r, http.MethodPut, "/sessions/s1/prefs", map[string]any{
		"theme": "dark", "search": map[string]any{"query": "mug", "sort": "price:asc", "page_size": 50},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d %s", w.Code, w.Body)
	}
	got = decode[prefs.Preferences](t, doJSON(r, http.MethodGet, "/sessions/s1/prefs", nil))
	if got.Theme != "dark" || got.Search.Query != "mug" || got.Search.PageSize != 50 {
		t.Errorf("saved = %+v", got)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get(HeaderRequestID) != "abc" || w.Body.String() != "abc" {
		t.Errorf("request id = %q body %q", w.Header().Get(HeaderRequestID), w.Body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("request id not generated")
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, 2, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	open := gin.New()
	open.Use(RateLimit(0, 0, zap.NewNop()))
	open.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		open.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("disabled limiter returned %d", w.Code)
		}
	}
}
