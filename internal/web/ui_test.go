package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-catalog/internal/catalog"
	"cosmos-catalog/internal/idgen"
	"cosmos-catalog/internal/logger"
	"cosmos-catalog/internal/slot"
)

func setupUI(t *testing.T) (http.Handler, *catalog.Collection, *slot.MemorySlot) {
	t.Helper()
	logger.InitWriter(io.Discard, "error")
	s := slot.NewMemorySlot("products")
	n := 0
	ids := idgen.Func(func() string {
		n++
		return fmt.Sprintf("p%d", n)
	})
	store, err := catalog.LoadCollection(context.Background(), s, catalog.WithIDGenerator(ids))
	require.NoError(t, err)
	ui, err := NewUI(store)
	require.NoError(t, err)
	return ui.Handler(), store, s
}

func get(t *testing.T, h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func post(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func marsForm() url.Values {
	return url.Values{
		"name":        {"Марс"},
		"category":    {"планеты"},
		"description": {"Красная планета"},
		"price":       {"12000"},
		"stock":       {"3"},
	}
}

func TestUI_EmptyState(t *testing.T) {
	h, _, _ := setupUI(t)
	rr := get(t, h, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Список товаров пуст. Добавьте первый товар!")
	assert.Contains(t, rr.Body.String(), "Добавить товар")
}

func TestUI_CreateRedirectsWithFlash(t *testing.T) {
	h, store, s := setupUI(t)

	rr := post(t, h, "/products", marsForm())
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, 1, store.Len())

	data, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), "Марс")

	page := get(t, h, "/", rr.Result().Cookies()...)
	body := page.Body.String()
	assert.Contains(t, body, "message-success")
	assert.Contains(t, body, "Марс")
	assert.NotContains(t, body, "Список товаров пуст")

	// the flash is shown once
	var cleared bool
	for _, c := range page.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestUI_InvalidFormIsEchoed(t *testing.T) {
	h, store, _ := setupUI(t)
	form := marsForm()
	form.Set("price", "0")

	rr := post(t, h, "/products", form)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Введите корректную цену")
	assert.Contains(t, body, `value="Марс"`)
	assert.Equal(t, 0, store.Len())
}

func TestUI_EditFlow(t *testing.T) {
	h, store, _ := setupUI(t)
	require.Equal(t, http.StatusSeeOther, post(t, h, "/products", marsForm()).Code)

	page := get(t, h, "/?edit=p1")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Редактировать товар")
	assert.Contains(t, page.Body.String(), `name="id" value="p1"`)

	form := marsForm()
	form.Set("id", "p1")
	form.Set("name", "Марс II")
	rr := post(t, h, "/products", form)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	p, err := store.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Марс II", p.Name)
	assert.Equal(t, 1, store.Len())
}

func TestUI_EditUnknownShowsBlankForm(t *testing.T) {
	h, _, _ := setupUI(t)
	page := get(t, h, "/?edit=missing")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Добавить товар")
}

func TestUI_DeleteNeedsConfirmation(t *testing.T) {
	h, store, _ := setupUI(t)
	require.Equal(t, http.StatusSeeOther, post(t, h, "/products", marsForm()).Code)

	confirm := get(t, h, "/products/p1/delete?editing=p1")
	require.Equal(t, http.StatusOK, confirm.Code)
	assert.Contains(t, confirm.Body.String(), "Вы уверены, что хотите удалить этот товар")
	assert.Contains(t, confirm.Body.String(), "Марс")

	rr := post(t, h, "/products/p1/delete", url.Values{"confirm": {"no"}, "editing": {"p1"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?edit=p1", rr.Header().Get("Location"))
	assert.Equal(t, 1, store.Len())

	rr = post(t, h, "/products/p1/delete", url.Values{"confirm": {"yes"}, "editing": {"p1"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"), "editing state resets when the edited record is removed")
	assert.Equal(t, 0, store.Len())

	page := get(t, h, "/", rr.Result().Cookies()...)
	assert.Contains(t, page.Body.String(), "message-info")
}

func TestUI_DeleteKeepsOtherEdit(t *testing.T) {
	h, store, _ := setupUI(t)
	require.Equal(t, http.StatusSeeOther, post(t, h, "/products", marsForm()).Code)
	require.Equal(t, http.StatusSeeOther, post(t, h, "/products", marsForm()).Code)

	rr := post(t, h, "/products/p1/delete", url.Values{"confirm": {"yes"}, "editing": {"p2"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?edit=p2", rr.Header().Get("Location"))
	assert.Equal(t, 1, store.Len())
}

func TestUI_DeleteUnknown(t *testing.T) {
	h, _, _ := setupUI(t)
	rr := get(t, h, "/products/nope/delete")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestUI_EscapesUserContent(t *testing.T) {
	h, _, _ := setupUI(t)
	form := marsForm()
	form.Set("name", "<script>alert(1)</script>")
	form.Set("description", "<script>alert(2)</script>\n\n**жирный**")
	require.Equal(t, http.StatusSeeOther, post(t, h, "/products", form).Code)

	body := get(t, h, "/").Body.String()
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, body, "<strong>жирный</strong>")
}

func TestUI_DiscountBadge(t *testing.T) {
	h, _, _ := setupUI(t)
	form := marsForm()
	form.Set("price", "8000")
	form.Set("oldPrice", "10000")
	form.Set("rating", "4.5")
	require.Equal(t, http.StatusSeeOther, post(t, h, "/products", form).Code)

	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, "-20%")
	assert.Contains(t, body, "product-old-price")
	assert.Contains(t, body, "★ 4.5")
}
