package api

import (
	"context"
	"net/http"

	"github.com/okian/mergington/internal/domain/types"
	"github.com/okian/mergington/pkg/logger"
)

// ActivitiesHandler serves the activity listing and roster mutations.
type ActivitiesHandler struct {
	deps Dependencies
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(deps Dependencies) *ActivitiesHandler {
	return &ActivitiesHandler{deps: deps}
}

// HandleList handles GET /activities requests.
func (h *ActivitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.Activities(h.deps.List(r.Context())))
}

// HandleSignup handles POST /activities/{name}/signup?email= requests.
func (h *ActivitiesHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "api.signup", h.deps.Signup)
}

// HandleUnregister handles POST /activities/{name}/unregister?email= requests.
func (h *ActivitiesHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "api.unregister", h.deps.Unregister)
}

type mutation func(ctx context.Context, activity, email string) (string, error)

func (h *ActivitiesHandler) mutate(w http.ResponseWriter, r *http.Request, op string, apply mutation) {
	activity := r.PathValue("name")
	query := r.URL.Query()
	if !query.Has("email") {
		status, detail := errorStatus(ErrMissingEmail)
		writeError(w, status, detail)
		return
	}

	msg, err := apply(r.Context(), activity, query.Get("email"))
	if err != nil {
		status, detail := errorStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Named("api").Error(r.Context(), "roster mutation failed",
				logger.String("op", op),
				logger.String("activity", activity),
				logger.String("requestID", RequestIDFromContext(r.Context())),
				logger.Error(err),
			)
		}
		writeError(w, status, detail)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: msg})
}
