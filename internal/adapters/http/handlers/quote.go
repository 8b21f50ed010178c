package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-keeper/internal/app"
)

// exportFilename is the attachment name of GET /export.
const exportFilename = "quotes.json"

// QuoteHandler serves the quote collection.
type QuoteHandler struct {
	quotes *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(quotes *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// RegisterRoutes mounts the collection routes on rg.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes", h.List)
	rg.GET("/quotes/random", h.Random)
	rg.GET("/quotes/:id", h.Get)
	rg.POST("/quotes", h.Create)
	rg.DELETE("/quotes/:id", h.Delete)
	rg.GET("/categories", h.Categories)
	rg.PUT("/categories/selected", h.SelectCategory)
	rg.GET("/export", h.Export)
	rg.POST("/import", h.Import)
}

// List handles GET /api/v1/quotes.
// The category defaults to the current selection; "all" lists everything.
//
// @Summary List quotes
// @Tags quotes
// @Param category query string false "Category"
// @Param limit query int false "Page size (1-100)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} dto.PaginatedResponse[dto.QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	category := req.Category
	if category == "" {
		_, category = h.quotes.Categories()
	}

	quotes := h.quotes.List(c.Request.Context(), category)

	items := make([]dto.QuoteResponse, len(quotes))
	for i, q := range quotes {
		items[i] = dto.NewQuoteResponse(q)
	}

	page, err := dto.Paginate(items, req.PaginationRequest, category,
		func(r dto.QuoteResponse) string { return r.ID })
	if err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, page)
}

// Random handles GET /api/v1/quotes/random.
// An empty collection yields the placeholder record.
//
// @Summary Show a random quote
// @Tags quotes
// @Success 200 {object} dto.QuoteResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) Random(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewQuoteResponse(h.quotes.ShowRandom(c.Request.Context())))
}

// Get handles GET /api/v1/quotes/:id.
//
// @Summary Get a quote by ID
// @Tags quotes
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	var uri dto.QuoteID
	if err := dto.BindURIAndValidate(c, &uri); err != nil {
		respondBindError(c, err)
		return
	}

	q, err := h.quotes.Get(c.Request.Context(), uri.ID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// Create handles POST /api/v1/quotes.
//
// @Summary Add a quote
// @Tags quotes
// @Accept json
// @Param quote body dto.AddQuoteRequest true "Quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var req dto.AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	q, err := h.quotes.Add(c.Request.Context(), req.Text, req.Category, req.Author)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+q.ID)
	c.JSON(http.StatusCreated, dto.NewQuoteResponse(q))
}

// Delete handles DELETE /api/v1/quotes/:id.
//
// @Summary Remove a quote
// @Tags quotes
// @Param id path string true "Quote ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *gin.Context) {
	var uri dto.QuoteID
	if err := dto.BindURIAndValidate(c, &uri); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.quotes.Remove(c.Request.Context(), uri.ID); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Categories handles GET /api/v1/categories.
func (h *QuoteHandler) Categories(c *gin.Context) {
	categories, selected := h.quotes.Categories()

	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: categories, Selected: selected})
}

// SelectCategory handles PUT /api/v1/categories/selected.
// Unknown categories are 404.
func (h *QuoteHandler) SelectCategory(c *gin.Context) {
	var req dto.SelectCategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.quotes.SelectCategory(c.Request.Context(), req.Category); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.Categories(c)
}

// Export handles GET /api/v1/export as a quotes.json download.
func (h *QuoteHandler) Export(c *gin.Context) {
	data, err := h.quotes.Export(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import handles POST /api/v1/import. The body is the raw JSON document;
// an invalid document is rejected whole with INVALID_FORMAT.
//
// @Summary Import quotes
// @Tags quotes
// @Accept json
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Router /api/v1/import [post]
func (h *QuoteHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondReadError(c, err)
		return
	}

	result, err := h.quotes.Import(c.Request.Context(), body)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{
		Imported: result.Imported,
		Skipped:  result.Skipped,
		Total:    len(h.quotes.Quotes()),
		Message:  result.Message(),
	})
}

// respondBindError reports a binding or validation failure.
func respondBindError(c *gin.Context, err error) {
	switch {
	case dto.IsValidationError(err):
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
	case isTooLarge(err):
		dto.RespondWithErrorCode(c, dto.ErrorCodeTooLarge, "request body too large")
	default:
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "malformed request")
	}
}

func respondReadError(c *gin.Context, err error) {
	if isTooLarge(err) {
		dto.RespondWithErrorCode(c, dto.ErrorCodeTooLarge, "request body too large")
		return
	}

	dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "could not read request body")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
