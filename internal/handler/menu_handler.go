package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// MenuHandler handles navigation menu HTTP requests
type MenuHandler struct {
	menuService service.MenuService
}

// NewMenuHandler creates a new MenuHandler
func NewMenuHandler(menuService service.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// List retrieves the site's menus
// GET /api/v1/sites/:site_id/menus
func (h *MenuHandler) List(c *gin.Context) {
	menus, err := h.menuService.List(c.Request.Context(), c.Param("site_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(menus))
}

// GetByID retrieves a menu by ID
// GET /api/v1/sites/:site_id/menus/:menu_id
func (h *MenuHandler) GetByID(c *gin.Context) {
	m, err := h.menuService.GetByID(c.Request.Context(), c.Param("site_id"), c.Param("menu_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(m))
}

// Create creates a menu
// POST /api/v1/sites/:site_id/menus
func (h *MenuHandler) Create(c *gin.Context) {
	var req dto.CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	m, err := h.menuService.Create(c.Request.Context(), principalFrom(c), c.Param("site_id"), service.CreateMenuInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Location: req.Location,
		Meta:     req.Meta,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(m))
}

// Update updates a menu
// PUT /api/v1/sites/:site_id/menus/:menu_id
func (h *MenuHandler) Update(c *gin.Context) {
	var req dto.UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	m, err := h.menuService.Update(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("menu_id"), service.UpdateMenuInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Location: req.Location,
		Meta:     req.Meta,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(m))
}

// Delete removes a menu and all of its items
// DELETE /api/v1/sites/:site_id/menus/:menu_id
func (h *MenuHandler) Delete(c *gin.Context) {
	if err := h.menuService.Delete(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("menu_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Menu deleted"}))
}

// ListItems retrieves a menu's items as a flat, ordered list
// GET /api/v1/sites/:site_id/menus/:menu_id/items
func (h *MenuHandler) ListItems(c *gin.Context) {
	items, err := h.menuService.ListItems(c.Request.Context(), c.Param("site_id"), c.Param("menu_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewMenuItemResponses(items)))
}

// AddItem appends an item to a menu
// POST /api/v1/sites/:site_id/menus/:menu_id/items
func (h *MenuHandler) AddItem(c *gin.Context) {
	var req dto.CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	ref, err := req.Ref.ToRef()
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.menuService.AddItem(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("menu_id"), service.CreateMenuItemInput{
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		Label:     req.Label,
		Ref:       ref,
		Target:    req.Target,
		CSSClass:  req.CSSClass,
		Meta:      req.Meta,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(dto.NewMenuItemResponse(*item)))
}

// UpdateItem updates a menu item
// PUT /api/v1/sites/:site_id/menus/:menu_id/items/:item_id
func (h *MenuHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	var ref domain.MenuItemRef
	if req.Ref != nil {
		converted, err := req.Ref.ToRef()
		if err != nil {
			respondError(c, err)
			return
		}
		ref = converted
	}

	item, err := h.menuService.UpdateItem(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("menu_id"), c.Param("item_id"), service.UpdateMenuItemInput{
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		Label:     req.Label,
		Ref:       ref,
		Target:    req.Target,
		CSSClass:  req.CSSClass,
		Meta:      req.Meta,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewMenuItemResponse(*item)))
}

// DeleteItem removes a menu item
// DELETE /api/v1/sites/:site_id/menus/:menu_id/items/:item_id
func (h *MenuHandler) DeleteItem(c *gin.Context) {
	if err := h.menuService.DeleteItem(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("menu_id"), c.Param("item_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Menu item deleted"}))
}

// Tree builds the menu's hierarchy with resolved labels
// GET /api/v1/sites/:site_id/menus/:menu_id/tree
func (h *MenuHandler) Tree(c *gin.Context) {
	nodes, err := h.menuService.Tree(c.Request.Context(), c.Param("site_id"), c.Param("menu_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewMenuTreeResponse(nodes)))
}

// Reorder applies a batch of order and parent changes
// PUT /api/v1/sites/:site_id/menus/:menu_id/reorder
func (h *MenuHandler) Reorder(c *gin.Context) {
	var req dto.ReorderMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	report, err := h.menuService.Reorder(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("menu_id"), req.Changes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(report))
}
