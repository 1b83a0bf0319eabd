package rpcx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
	"github.com/ariefcatur/go-catalog-api/internal/httpx"
)

type fakeCreator struct {
	created *catalog.Product
	err     error
}

func (f *fakeCreator) CreateProduct(_ context.Context, name, about string, price decimal.Decimal) (*catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &catalog.Product{ID: "p-1", Name: name, About: about, Price: price}
	return f.created, nil
}

func call(t *testing.T, repo ProductCreator, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httpx.NewRouter()
	h := &Handler{Repo: repo}
	h.Register(r)

	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDispatchCreateProduct(t *testing.T) {
	repo := &fakeCreator{}
	w := call(t, repo, `{"method":"CreateProduct","params":{"name":"Keyboard","about":"mech","price":49.90}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Result catalog.Product `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "p-1", resp.Result.ID)
	assert.Equal(t, "Keyboard", resp.Result.Name)
	require.NotNil(t, repo.created)
}

func TestDispatchUnknownMethod(t *testing.T) {
	w := call(t, &fakeCreator{}, `{"method":"DropTables","params":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UnknownMethod")
}

func TestDispatchMissingArguments(t *testing.T) {
	w := call(t, &fakeCreator{}, `{"method":"CreateProduct","params":{"name":"Keyboard"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BadArguments")
}

func TestDispatchNegativePrice(t *testing.T) {
	w := call(t, &fakeCreator{}, `{"method":"CreateProduct","params":{"name":"K","about":"a","price":-1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatchStoreFault(t *testing.T) {
	w := call(t, &fakeCreator{err: errors.New("down")}, `{"method":"CreateProduct","params":{"name":"K","about":"a","price":1}}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Receiver.Store")
}
