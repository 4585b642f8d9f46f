package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	svc *ops.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *ops.Service) *Handlers {
	return &Handlers{svc: svc}
}

// TextRequest represents the arguments for log and quick_add.
type TextRequest struct {
	Text string `json:"text"`
}

// SearchRequest represents the arguments for search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// AddRequest represents the arguments for add.
type AddRequest struct {
	Name      string  `json:"name"`
	Kcal      float64 `json:"kcal"`
	ProteinG  float64 `json:"protein_g"`
	FatG      float64 `json:"fat_g"`
	CarbG     float64 `json:"carb_g"`
	Basis     string  `json:"basis,omitempty"`
	UnitGrams float64 `json:"unit_grams,omitempty"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

type emptyRequest struct{}

// FoodListOutput is the result of the list tool.
type FoodListOutput struct {
	Foods []food.Food `json:"foods"`
	Count int         `json:"count"`
}

// HandleLog handles the food_log tool call.
func (h *Handlers) HandleLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TextRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.LogText(ctx, ops.LogTextInput{Text: input.Text})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleQuickAdd handles the food_quick_add tool call.
func (h *Handlers) HandleQuickAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TextRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.QuickAdd(ctx, ops.QuickAddInput{Text: input.Text})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUndo handles the food_undo tool call.
func (h *Handlers) HandleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[emptyRequest](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Undo(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStatus handles the food_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[emptyRequest](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Status(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistory handles the food_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[emptyRequest](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.History(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the food_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.SearchFoods(ctx, ops.SearchFoodsInput{
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAdd handles the food_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	basis := food.Per100g
	if input.Basis != "" {
		if basis, err = food.ParseBasis(input.Basis); err != nil {
			return errorResult(errors.NewInvalidRequest(err.Error())), nil
		}
	}

	result, err := h.svc.AddFood(ctx, ops.AddFoodInput{Food: food.Food{
		Name:  input.Name,
		Basis: basis,
		Profile: food.Profile{
			Kcal:     input.Kcal,
			ProteinG: input.ProteinG,
			FatG:     input.FatG,
			CarbG:    input.CarbG,
		},
		UnitGrams: input.UnitGrams,
	}})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the food_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[emptyRequest](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	foods := h.svc.ListFoods(ctx)
	return successResult(FoodListOutput{Foods: foods, Count: len(foods)})
}

// HandleExport handles the export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.ExportFoods(ctx, ops.ExportFoodsInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.ImportFoods(ctx, ops.ImportFoodsInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if nErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    nErr.Code,
			"message": nErr.Message,
			"status":  nErr.Status,
		}
		if nErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if nErr.Details != nil {
			errorObj["details"] = nErr.Details
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
