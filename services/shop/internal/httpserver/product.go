package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/shop/internal/service"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
	"github.com/Skotchmaster/storefront/services/shop/internal/util"
)

type ProductHTTP struct {
	Svc *service.CatalogService
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListProducts(ctx, c.QueryParam("category"), offset, limit)
	if err != nil {
		l.Error("get_products_error", "status", 500, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.ProductPage{
		Data: items,
		Meta: transport.PageMeta{Page: offset/limit + 1, Size: limit, Total: total},
	})
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.get")

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		l.Warn("get_product_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		l.Warn("search_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Products: items})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.create")

	var req transport.CreateProductRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return err
	}

	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		l.Warn("create_product_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}

	l.Info("product_created", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.patch")

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req transport.PatchProductRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("patch_product_error", "status", 400, "error", err)
		return err
	}

	p, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		l.Warn("patch_product_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.delete")

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		l.Warn("delete_product_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) DeleteImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.delete_image")

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req transport.DeleteImageRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	p, err := h.Svc.DeleteImage(ctx, id, req.Image)
	if err != nil {
		l.Warn("delete_image_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}
