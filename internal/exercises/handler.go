package exercises

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/tracing"
	"github.com/2beens/fitlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{
		catalog: catalog,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleList).Methods("GET", "OPTIONS").Name("exercises-list")
	router.HandleFunc("", h.HandleAdd).Methods("POST", "OPTIONS").Name("exercises-add")
	router.HandleFunc("/muscle-groups", h.HandleMuscleGroups).Methods("GET", "OPTIONS").Name("exercises-muscle-groups")
	router.HandleFunc("/equipment", h.HandleEquipment).Methods("GET", "OPTIONS").Name("exercises-equipment")
	router.HandleFunc("/reset", h.HandleReset).Methods("POST", "OPTIONS").Name("exercises-reset")
	router.HandleFunc("/{id}", h.HandleGet).Methods("GET", "OPTIONS").Name("exercises-get")
	router.HandleFunc("/{id}", h.HandleUpdate).Methods("PUT", "OPTIONS").Name("exercises-update")
	router.HandleFunc("/{id}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("exercises-delete")
}

// HandleList lists exercises, optionally filtered by ?q=, ?muscleGroup= or ?type=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	var (
		list []domain.Exercise
		err  error
	)
	query := r.URL.Query()
	switch {
	case query.Get("muscleGroup") != "":
		list, err = h.catalog.ByMuscleGroup(ctx, domain.MuscleGroup(query.Get("muscleGroup")))
	case query.Get("type") != "":
		list, err = h.catalog.ByType(ctx, domain.ExerciseType(query.Get("type")))
	default:
		list, err = h.catalog.Search(ctx, query.Get("q"))
	}
	if err != nil {
		log.Errorf("list exercises: %s", err)
		http.Error(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	ex, err := h.catalog.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("get exercise: %s", err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, ex)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	var ex domain.Exercise
	if err := json.NewDecoder(r.Body).Decode(&ex); err != nil {
		log.Tracef("add exercise, unmarshal json: %s", err)
		http.Error(w, "invalid exercise", http.StatusBadRequest)
		return
	}
	if ex.Name == "" || len(ex.MuscleGroups) == 0 {
		http.Error(w, "exercise name and muscle groups required", http.StatusBadRequest)
		return
	}

	added, err := h.catalog.AddCustom(ctx, ex)
	if err != nil {
		log.Errorf("add exercise: %s", err)
		http.Error(w, "failed to add exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusCreated, added)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	var ex domain.Exercise
	if err := json.NewDecoder(r.Body).Decode(&ex); err != nil {
		http.Error(w, "invalid exercise", http.StatusBadRequest)
		return
	}
	ex.ID = mux.Vars(r)["id"]

	updated, err := h.catalog.Update(ctx, ex)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("update exercise %s: %s", ex.ID, err)
		http.Error(w, "failed to update exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if err := h.catalog.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, ErrExerciseNotFound):
			http.Error(w, "exercise not found", http.StatusNotFound)
		case errors.Is(err, ErrSeedExerciseFixed):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Errorf("delete exercise %s: %s", id, err)
			http.Error(w, "failed to delete exercise", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleReset drops custom exercises and restores the seeded catalog.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.reset")
	defer span.End()

	if err := h.catalog.ResetToSeed(ctx); err != nil {
		log.Errorf("reset exercises: %s", err)
		http.Error(w, "failed to reset exercises", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.MuscleGroups(r.Context())
	if err != nil {
		log.Errorf("list muscle groups: %s", err)
		http.Error(w, "failed to list muscle groups", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, groups)
}

func (h *Handler) HandleEquipment(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.catalog.Equipment(r.Context())
	if err != nil {
		log.Errorf("list equipment: %s", err)
		http.Error(w, "failed to list equipment", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, equipment)
}
