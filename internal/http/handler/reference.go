package handler

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"referensi/internal/model"
	"referensi/internal/query"
	"referensi/internal/service"
)

// listResponse wraps non-paginated collections.
type listResponse[T any] struct {
	Data []T `json:"data"`
}

// ListReferences godoc
// @Summary List reference documents
// @Description Paginated listing filtered by optional keyword and category. Out-of-range page and limit are clamped.
// @Tags referensi
// @Produce json
// @Param query query string false "full-text keyword"
// @Param category query int false "category id"
// @Param page query int false "page number (default 1)"
// @Param limit query int false "page size (default 10, max 100)"
// @Success 200 {object} service.PageResult
// @Failure 500 {object} errorPayload
// @Router /referensi [get]
func ListReferences(svc service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := query.ParsePageRequest(c.Query("query"), c.Query("category"), c.Query("page"), c.Query("limit"))

		res, err := svc.ListPage(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// SearchReferences godoc
// @Summary Quick search
// @Description Full-text search returning an HTML fragment of result cards. The keyword is required.
// @Tags referensi
// @Accept x-www-form-urlencoded
// @Produce html
// @Param query formData string true "full-text keyword"
// @Param categoryId formData int false "category id"
// @Success 200 {string} string "HTML fragment"
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /search [post]
func SearchReferences(svc service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		keyword := c.FormValue("query")
		if !query.ValidKeyword(keyword) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST",
				fmt.Sprintf("search keyword is required and must be at most %d characters", query.MaxKeywordLength))
		}

		docs, err := svc.Search(c.UserContext(), keyword, query.ParseCategoryID(c.FormValue("categoryId")))
		if err != nil {
			return writeServiceError(c, err)
		}

		body, err := renderResults(docs)
		if err != nil {
			return err
		}
		c.Type("html", "utf-8")
		return c.Send(body)
	}
}

// GetReference godoc
// @Summary Get a reference document
// @Tags referensi
// @Produce json
// @Param id path int true "document id"
// @Success 200 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /referensi/{id} [get]
func GetReference(svc service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadReference godoc
// @Summary Download a reference document
// @Description Redirects to a presigned mirror URL when the file is mirrored, otherwise to the stored download URL.
// @Tags referensi
// @Param id path int true "document id"
// @Success 302
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /referensi/{id}/download [get]
func DownloadReference(svc service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		target, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Redirect(target, fiber.StatusFound)
	}
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} listResponse[model.Category]
// @Failure 500 {object} errorPayload
// @Router /categories [get]
func ListCategories(svc service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.Categories(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(listResponse[model.Category]{Data: cats})
	}
}

// Discover godoc
// @Summary Random sample of documents
// @Tags referensi
// @Produce json
// @Success 200 {object} listResponse[model.Document]
// @Failure 500 {object} errorPayload
// @Router /discover [get]
func Discover(svc service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.Discover(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(listResponse[model.Document]{Data: docs})
	}
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
