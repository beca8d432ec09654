package catalog

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"cosmos-catalog/internal/http/respond"
	"cosmos-catalog/internal/idgen"
)

// MsgUserNotFound is the 404 body for unknown user ids.
const MsgUserNotFound = "User not found"

// UserHandler serves fixed demo users. Writes are acknowledged and echoed but
// never stored.
type UserHandler struct {
	users []User
	ids   idgen.Generator
}

// DefaultUsers returns the demo records.
func DefaultUsers() []User {
	return []User{
		{ID: "u1", Name: "Юрий Гагарин", Email: "yuri@cosmos.example", Role: "admin", CreatedAt: "1961-04-12T06:07:00Z"},
		{ID: "u2", Name: "Валентина Терешкова", Email: "valentina@cosmos.example", Role: "manager", CreatedAt: "1963-06-16T09:29:00Z"},
		{ID: "u3", Name: "Алексей Леонов", Email: "alexei@cosmos.example", Role: "customer", CreatedAt: "1965-03-18T07:00:00Z"},
	}
}

// NewUserHandler serves users; a nil slice means DefaultUsers.
func NewUserHandler(users []User) *UserHandler {
	if users == nil {
		users = DefaultUsers()
	}
	return &UserHandler{users: users, ids: idgen.Random(6)}
}

// Register mounts the user routes on r, which must already be scoped to the
// users prefix so that middleware can be attached to it alone.
func (h *UserHandler) Register(r *mux.Router) {
	r.HandleFunc("", h.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("", h.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/{id}", h.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.UpdateUser).Methods(http.MethodPatch)
	r.HandleFunc("/{id}", h.DeleteUser).Methods(http.MethodDelete)
}

func (h *UserHandler) find(id string) (User, bool) {
	for _, u := range h.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

type userInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

func readUserInput(w http.ResponseWriter, r *http.Request) (userInput, error) {
	var in userInput
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return in, err
	}
	if strings.TrimSpace(string(body)) == "" {
		return in, nil
	}
	err = json.Unmarshal(body, &in)
	return in, err
}

func (in userInput) apply(u *User) {
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.Role != nil {
		u.Role = strings.TrimSpace(*in.Role)
	}
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.users)
}

// GetUser handles GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.find(mux.Vars(r)["id"])
	if !ok {
		respond.Error(w, http.StatusNotFound, MsgUserNotFound, "")
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

// CreateUser handles POST /users. The record is returned, not kept.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	in, err := readUserInput(w, r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, MsgInvalidJSON, "")
		return
	}
	u := User{ID: h.ids.NewID(), Role: "customer", CreatedAt: time.Now().UTC().Format(time.RFC3339)}
	in.apply(&u)
	if u.Name == "" || u.Email == "" {
		respond.Error(w, http.StatusBadRequest, MsgMissingFields, "name, email")
		return
	}
	respond.JSON(w, http.StatusCreated, u)
}

// UpdateUser handles PATCH /users/{id}. The merged record is returned, not kept.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.find(mux.Vars(r)["id"])
	if !ok {
		respond.Error(w, http.StatusNotFound, MsgUserNotFound, "")
		return
	}
	in, err := readUserInput(w, r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, MsgInvalidJSON, "")
		return
	}
	in.apply(&u)
	respond.JSON(w, http.StatusOK, u)
}

// DeleteUser handles DELETE /users/{id}. Nothing is removed.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.find(mux.Vars(r)["id"]); !ok {
		respond.Error(w, http.StatusNotFound, MsgUserNotFound, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
