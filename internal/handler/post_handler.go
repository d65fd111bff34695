package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/apperr"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// childExpansionLimit caps how many children the include=children expansion
// loads per post.
const childExpansionLimit = 100

// PostHandler handles post management HTTP requests. All routes are scoped
// by post type, so pages and custom types share the same code path.
type PostHandler struct {
	postService service.PostService
	userService service.UserService
	termService service.TermService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService service.PostService, userService service.UserService, termService service.TermService) *PostHandler {
	return &PostHandler{postService: postService, userService: userService, termService: termService}
}

// expand resolves the requested include expansions for one post. A referenced
// object that no longer exists is simply absent from the result.
func (h *PostHandler) expand(c *gin.Context, post *domain.Post, include map[string]bool) (*dto.PostResponse, error) {
	resp := &dto.PostResponse{Post: post}
	ctx := c.Request.Context()

	if include["author"] && post.AuthorID != "" {
		user, err := h.userService.GetByID(ctx, post.AuthorID)
		switch {
		case err == nil:
			author := dto.NewUserResponse(user)
			resp.Author = &author
		case apperr.KindOf(err) != apperr.KindNotFound:
			return nil, err
		}
	}

	if include["categories"] && len(post.Terms) > 0 {
		resp.Categories = make(map[string][]*domain.Term, len(post.Terms))
		for taxonomy, ids := range post.Terms {
			for _, id := range ids {
				term, err := h.termService.GetByID(ctx, c.Param("site_id"), taxonomy, id)
				if err != nil {
					if apperr.KindOf(err) == apperr.KindNotFound {
						continue
					}
					return nil, err
				}
				resp.Categories[taxonomy] = append(resp.Categories[taxonomy], term)
			}
		}
	}

	if include["children"] {
		children, _, err := h.postService.List(ctx, c.Param("site_id"), post.Type, 1, childExpansionLimit,
			service.ListPostsFilter{ParentID: post.ID})
		if err != nil {
			return nil, err
		}
		resp.Children = children
	}

	return resp, nil
}

// List retrieves posts of a post type
// GET /api/v1/sites/:site_id/content/:type
func (h *PostHandler) List(c *gin.Context) {
	var query dto.ListPostsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	query.SetDefaults()

	posts, total, err := h.postService.List(c.Request.Context(), c.Param("site_id"), c.Param("type"), query.Page, query.Limit, service.ListPostsFilter{
		Status: domain.PostStatus(query.Status),
		Author: query.Author,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if include := dto.ParseInclude(query.Include); len(include) > 0 {
		expanded := make([]*dto.PostResponse, 0, len(posts))
		for _, post := range posts {
			resp, err := h.expand(c, post, include)
			if err != nil {
				respondError(c, err)
				return
			}
			expanded = append(expanded, resp)
		}
		c.JSON(http.StatusOK, response.Paginated(expanded, query.Page, query.Limit, len(expanded), total))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(posts, query.Page, query.Limit, len(posts), total))
}

// GetByID retrieves a post by ID
// GET /api/v1/sites/:site_id/content/:type/:id
func (h *PostHandler) GetByID(c *gin.Context) {
	post, err := h.postService.GetByID(c.Request.Context(), c.Param("site_id"), c.Param("type"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if include := dto.ParseInclude(c.Query("include")); len(include) > 0 {
		resp, err := h.expand(c, post, include)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(resp))
		return
	}

	c.JSON(http.StatusOK, response.Success(post))
}

// Create creates a post of the routed type
// POST /api/v1/sites/:site_id/content/:type
func (h *PostHandler) Create(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	post, err := h.postService.Create(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("type"), service.CreatePostInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		Status:          req.Status,
		ParentID:        req.ParentID,
		Visibility:      req.Visibility,
		Password:        req.Password,
		FeaturedImageID: req.FeaturedImageID,
		Fields:          req.Fields,
		Terms:           req.Terms,
		ScheduledAt:     req.ScheduledAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(post))
}

// Update updates a post
// PUT /api/v1/sites/:site_id/content/:type/:id
func (h *PostHandler) Update(c *gin.Context) {
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	post, err := h.postService.Update(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("type"), c.Param("id"), service.UpdatePostInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		Status:          req.Status,
		ParentID:        req.ParentID,
		Visibility:      req.Visibility,
		Password:        req.Password,
		FeaturedImageID: req.FeaturedImageID,
		Fields:          req.Fields,
		Terms:           req.Terms,
		ScheduledAt:     req.ScheduledAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(post))
}

// Delete permanently removes a post
// DELETE /api/v1/sites/:site_id/content/:type/:id
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("type"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Post deleted"}))
}
