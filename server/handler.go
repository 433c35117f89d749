package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/plan"
	"github.com/kbukum/transducekit/source"
	"github.com/kbukum/transducekit/validation"
)

// RunRecord is the body of a successful run and what a RunStore keeps.
type RunRecord struct {
	ID         string    `json:"run_id"`
	Plan       string    `json:"plan"`
	Input      int       `json:"input_count"`
	Count      int       `json:"count"`
	Result     []any     `json:"result"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// RunStore retains run records. redis.Store[RunRecord] satisfies it.
type RunStore interface {
	Save(ctx context.Context, id string, rec *RunRecord) error
	Load(ctx context.Context, id string) (*RunRecord, error)
}

type runRequest struct {
	Items []any `json:"items" validate:"required"`
}

type handler struct {
	plans   *plan.Engine
	store   RunStore
	log     *logger.Logger
	timeout time.Duration
}

func (h *handler) listPlans(c *gin.Context) {
	names, err := h.plans.Plans()
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{"plans": names})
}

func (h *handler) getPlan(c *gin.Context) {
	def, err := h.plans.Load(c.Param("name"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, def)
}

func (h *handler) runPlan(c *gin.Context) {
	items, err := decodeItems(c.Request.Body)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	rec := RunRecord{ID: uuid.NewString(), Plan: c.Param("name"), Input: len(items), StartedAt: time.Now().UTC()}
	ctx = logger.ContextWithRunID(ctx, rec.ID)

	result, err := h.plans.RunAsync(ctx, rec.Plan, source.FromSlice(items))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	rec.Result, rec.Count = result, len(result)
	rec.DurationMS = time.Since(rec.StartedAt).Milliseconds()

	if h.store != nil {
		if err := h.store.Save(ctx, rec.ID, &rec); err != nil {
			h.log.WithContext(ctx).Warn("Run result not stored", logger.MergeWithError(nil, err))
		}
	}
	c.Header("X-Run-Id", rec.ID)
	RespondOK(c, rec)
}

func (h *handler) getRun(c *gin.Context) {
	id := c.Param("id")
	if h.store == nil {
		RespondWithError(c, apperrors.NotFound("run", id))
		return
	}
	if _, err := validation.ParseUUID("id", id); err != nil {
		RespondWithError(c, err)
		return
	}
	rec, err := h.store.Load(c.Request.Context(), id)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, rec)
}

// decodeItems accepts a bare JSON array or {"items": [...]}.
func decodeItems(body io.Reader) ([]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.InvalidInput("body", "request body too large")
		}
		return nil, apperrors.InvalidInput("body", "unreadable request body").WithCause(err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, apperrors.InvalidInput("body", "malformed JSON array").WithCause(err)
		}
		return items, nil
	}

	var req runRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, apperrors.InvalidInput("body", "expected a JSON array or an object with items").WithCause(err)
	}
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	return req.Items, nil
}
