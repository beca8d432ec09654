// Package web renders the local catalog: a server-side form and card list over
// a slot-backed product collection.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"cosmos-catalog/internal/catalog"
	"cosmos-catalog/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// UI serves the local catalog pages.
type UI struct {
	store catalog.Store
	tmpl  *template.Template
}

// NewUI parses the embedded templates.
func NewUI(store catalog.Store) (*UI, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web.NewUI: %w", err)
	}
	return &UI{store: store, tmpl: tmpl}, nil
}

// Handler returns the router for the UI.
func (u *UI) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", u.index).Methods(http.MethodGet)
	r.HandleFunc("/products", u.save).Methods(http.MethodPost)
	r.HandleFunc("/products/{id}/delete", u.confirmDelete).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}/delete", u.delete).Methods(http.MethodPost)
	return r
}

type indexPage struct {
	Products []catalog.Product
	Form     Form
	Flash    *Flash
	Error    string
}

type confirmPage struct {
	Product catalog.Product
	Editing string
}

func (u *UI) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := u.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger.Errorf("web render %s: %v", name, err)
	}
}

func (u *UI) renderIndex(w http.ResponseWriter, r *http.Request, status int, form Form, formErr string) {
	products, err := u.store.List(r.Context())
	if err != nil {
		logger.Errorf("web list: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	u.render(w, status, "index.html", indexPage{
		Products: products,
		Form:     form,
		Flash:    popFlash(w, r),
		Error:    formErr,
	})
}

func (u *UI) index(w http.ResponseWriter, r *http.Request) {
	var form Form
	if id := r.URL.Query().Get("edit"); id != "" {
		p, err := u.store.Get(r.Context(), id)
		if err != nil {
			logger.Errorf("web get %s: %v", id, err)
		}
		if p != nil {
			form = formFromProduct(*p)
		}
	}
	u.renderIndex(w, r, http.StatusOK, form, "")
}

func (u *UI) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := formFromValues(r.PostForm)
	in, msg := form.Validate()
	if msg != "" {
		u.renderIndex(w, r, http.StatusUnprocessableEntity, form, msg)
		return
	}

	if form.Editing() {
		updated, err := u.store.Update(r.Context(), form.ID, in)
		switch {
		case err != nil:
			logger.Errorf("web update %s: %v", form.ID, err)
			setFlash(w, FlashError, "Не удалось сохранить товар")
		case updated == nil:
			setFlash(w, FlashError, "Товар не найден")
		default:
			setFlash(w, FlashSuccess, fmt.Sprintf("Товар %q обновлен", updated.Name))
		}
	} else {
		created, err := u.store.Create(r.Context(), in)
		if err != nil {
			logger.Errorf("web create: %v", err)
			setFlash(w, FlashError, "Не удалось сохранить товар")
		} else {
			setFlash(w, FlashSuccess, fmt.Sprintf("Товар %q добавлен", created.Name))
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (u *UI) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := u.store.Get(r.Context(), id)
	if err != nil || p == nil {
		setFlash(w, FlashError, "Товар не найден")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	u.render(w, http.StatusOK, "confirm.html", confirmPage{Product: *p, Editing: r.URL.Query().Get("editing")})
}

func (u *UI) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	editing := r.PostForm.Get("editing")

	if r.PostForm.Get("confirm") != "yes" {
		http.Redirect(w, r, redirectTarget(editing), http.StatusSeeOther)
		return
	}

	p, err := u.store.Get(r.Context(), id)
	if err == nil && p != nil {
		var deleted bool
		deleted, err = u.store.Delete(r.Context(), id)
		if deleted {
			setFlash(w, FlashInfo, fmt.Sprintf("Товар %q удален", p.Name))
		}
	}
	if err != nil {
		logger.Errorf("web delete %s: %v", id, err)
		setFlash(w, FlashError, "Не удалось удалить товар")
	}

	// the form must not keep pointing at a record that no longer exists
	if editing == id {
		editing = ""
	}
	http.Redirect(w, r, redirectTarget(editing), http.StatusSeeOther)
}

func redirectTarget(editing string) string {
	if editing == "" {
		return "/"
	}
	return "/?edit=" + url.QueryEscape(editing)
}
