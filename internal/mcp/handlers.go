package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/prodsynth/internal/config"
	"github.com/hpungsan/prodsynth/internal/errors"
	"github.com/hpungsan/prodsynth/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance. A nil logger discards output.
func NewHandlers(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{db: db, cfg: cfg, logger: logger}
}

// Request types for each tool

// GenerateRequest represents the arguments for dataset_generate.
type GenerateRequest struct {
	Path  string  `json:"path,omitempty"`
	Rows  *int    `json:"rows,omitempty"`
	Users *int    `json:"users,omitempty"`
	Seed  *uint64 `json:"seed,omitempty"`
}

// ListRequest represents the arguments for dataset_list.
type ListRequest struct {
	Limit          int  `json:"limit,omitempty"`
	Offset         int  `json:"offset,omitempty"`
	IncludeDeleted bool `json:"include_deleted,omitempty"`
}

// ShowRequest represents the arguments for dataset_show.
type ShowRequest struct {
	ID             string `json:"id"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// LatestRequest represents the arguments for dataset_latest.
type LatestRequest struct {
	IncludeDeleted bool `json:"include_deleted,omitempty"`
}

// IDRequest represents the arguments for dataset_verify and dataset_delete.
type IDRequest struct {
	ID string `json:"id"`
}

// PurgeRequest represents the arguments for dataset_purge.
type PurgeRequest struct {
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// HandleGenerate handles the dataset_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Seed != nil && *input.Seed > maxSeed {
		return errorResult(errors.NewInvalidRequest(fmt.Sprintf("seed must be <= %d", uint64(maxSeed)))), nil
	}

	result, err := ops.Generate(ctx, h.db, h.cfg, ops.GenerateInput{
		Path:  input.Path,
		Rows:  input.Rows,
		Users: input.Users,
		Seed:  input.Seed,
	})
	if err != nil {
		return h.fail("dataset_generate", err), nil
	}

	h.logger.Info("dataset generated",
		zap.String("id", result.ID),
		zap.String("path", result.Path),
		zap.Int("rows", result.Rows),
		zap.Uint64("seed", result.Seed),
	)
	return successResult(result)
}

// HandleList handles the dataset_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Limit:          input.Limit,
		Offset:         input.Offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return h.fail("dataset_list", err), nil
	}

	return successResult(result)
}

// HandleShow handles the dataset_show tool call.
func (h *Handlers) HandleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ShowRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:             input.ID,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return h.fail("dataset_show", err), nil
	}

	return successResult(result)
}

// HandleLatest handles the dataset_latest tool call.
func (h *Handlers) HandleLatest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LatestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Latest(ctx, h.db, ops.LatestInput{IncludeDeleted: input.IncludeDeleted})
	if err != nil {
		return h.fail("dataset_latest", err), nil
	}

	return successResult(result)
}

// HandleVerify handles the dataset_verify tool call.
func (h *Handlers) HandleVerify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Verify(ctx, h.db, ops.VerifyInput{ID: input.ID})
	if err != nil {
		return h.fail("dataset_verify", err), nil
	}

	return successResult(result)
}

// HandleDelete handles the dataset_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return h.fail("dataset_delete", err), nil
	}

	return successResult(result)
}

// HandlePurge handles the dataset_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{OlderThanDays: input.OlderThanDays})
	if err != nil {
		return h.fail("dataset_purge", err), nil
	}

	return successResult(result)
}

// fail logs a failed tool call and converts err to an MCP error result.
func (h *Handlers) fail(tool string, err error) *mcp.CallToolResult {
	level := zap.WarnLevel
	if errors.Is(err, errors.ErrInternal) || errors.Is(err, errors.ErrIOFailure) {
		level = zap.ErrorLevel
	}
	h.logger.Log(level, "tool call failed", zap.String("tool", tool), zap.Error(err))
	return errorResult(err)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never included in the payload.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var sErr *errors.SynthError
	if stderrors.As(err, &sErr) {
		msg := sErr.Message
		// Keep any context a caller wrapped around the error
		if full := err.Error(); full != sErr.Error() {
			msg = strings.TrimSuffix(full, sErr.Error()) + sErr.Message
		}
		if sErr.Code == errors.ErrInternal {
			msg = "an internal error occurred"
		}

		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": msg,
			"status":  sErr.Status,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
