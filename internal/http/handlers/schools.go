package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/schoolhub/internal/cache"
	"github.com/geocoder89/schoolhub/internal/domain/school"
	"github.com/geocoder89/schoolhub/internal/utils"
	"github.com/gin-gonic/gin"
)

const dbTimeout = 3 * time.Second

type SchoolsStore interface {
	Create(ctx context.Context, req school.CreateSchoolRequest) (school.School, error)
	List(ctx context.Context, filter school.ListSchoolsFilter) ([]school.School, int, error)
	GetByID(ctx context.Context, id int64) (school.School, error)
	Update(ctx context.Context, id int64, patch school.Patch) (school.School, error)
	Delete(ctx context.Context, id int64) (school.School, error)
}

type SchoolsHandler struct {
	repo  SchoolsStore
	cache cache.Store
	log   *slog.Logger
}

func NewSchoolsHandler(repo SchoolsStore) *SchoolsHandler {
	return NewSchoolsHandlerWithCache(repo, nil)
}

func NewSchoolsHandlerWithCache(repo SchoolsStore, c cache.Store) *SchoolsHandler {
	return &SchoolsHandler{repo: repo, cache: c, log: slog.Default()}
}

type listSchoolsResponse struct {
	Items []school.School `json:"items"`
	Count int             `json:"count"`
	Total int             `json:"total"`
	Skip  int             `json:"skip"`
	Limit int             `json:"limit"`
}

func (h *SchoolsHandler) CreateSchool(ctx *gin.Context) {
	var req school.CreateSchoolRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	s, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, school.ErrNameTaken) {
			RespondBadRequestCode(ctx, "school_name_taken", "A school with this name already exists")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "create school failed", "err", err)
		RespondInternal(ctx, "Could not create school")
		return
	}

	h.invalidateList(ctx.Request.Context())

	ctx.JSON(http.StatusCreated, s)
}

func (h *SchoolsHandler) ListSchools(ctx *gin.Context) {
	skip, limit, err := utils.ParseSkipLimit(ctx.Query("skip"), ctx.Query("limit"))

	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	key := utils.BuildSchoolsListCacheKey(skip, limit)

	if h.cache != nil {
		if b, ok := h.cache.Get(ctx.Request.Context(), key); ok {
			var cached listSchoolsResponse
			if json.Unmarshal(b, &cached) == nil {
				RespondJSONWithETag(ctx, http.StatusOK, cached)
				return
			}
		}
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	items, total, err := h.repo.List(cctx, school.ListSchoolsFilter{Limit: limit, Offset: skip})

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list schools failed", "err", err)
		RespondInternal(ctx, "Could not list schools")
		return
	}

	resp := listSchoolsResponse{
		Items: items,
		Count: len(items),
		Total: total,
		Skip:  skip,
		Limit: limit,
	}

	if h.cache != nil {
		if b, err := json.Marshal(resp); err == nil {
			h.cache.Set(ctx.Request.Context(), key, b)
		}
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}

func (h *SchoolsHandler) GetSchoolByID(ctx *gin.Context) {
	id, ok := utils.ParseID(ctx.Param("id"))
	if !ok {
		RespondBadRequest(ctx, "Invalid school id", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	s, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, school.ErrNotFound) {
			RespondNotFound(ctx, "School not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "get school failed", "err", err, "school_id", id)
		RespondInternal(ctx, "Could not fetch school")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, s)
}

func (h *SchoolsHandler) UpdateSchool(ctx *gin.Context) {
	id, ok := utils.ParseID(ctx.Param("id"))
	if !ok {
		RespondBadRequest(ctx, "Invalid school id", nil)
		return
	}

	var patch school.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	if patch.Empty() {
		RespondBadRequest(ctx, "No fields to update", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	s, err := h.repo.Update(cctx, id, patch)

	if err != nil {
		switch {
		case errors.Is(err, school.ErrNotFound):
			RespondNotFound(ctx, "School not found")
		case errors.Is(err, school.ErrNameTaken):
			RespondBadRequestCode(ctx, "school_name_taken", "A school with this name already exists")
		default:
			h.log.ErrorContext(ctx.Request.Context(), "update school failed", "err", err, "school_id", id)
			RespondInternal(ctx, "Could not update school")
		}
		return
	}

	h.invalidateList(ctx.Request.Context())

	ctx.JSON(http.StatusOK, s)
}

func (h *SchoolsHandler) DeleteSchool(ctx *gin.Context) {
	id, ok := utils.ParseID(ctx.Param("id"))
	if !ok {
		RespondBadRequest(ctx, "Invalid school id", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	s, err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, school.ErrNotFound) {
			RespondNotFound(ctx, "School not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "delete school failed", "err", err, "school_id", id)
		RespondInternal(ctx, "Could not delete school")
		return
	}

	h.invalidateList(ctx.Request.Context())

	RespondMessage(ctx, http.StatusOK, "School -> "+s.Name+" -> was deleted successfully!")
}

func (h *SchoolsHandler) invalidateList(ctx context.Context) {
	if h.cache != nil {
		h.cache.InvalidatePrefix(ctx, utils.SchoolsListCachePrefix)
	}
}
