package server

import (
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Failure 404 {object} map[string]string
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	page := parsePagination(c)
	posts, err := s.postService.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondLookupError(c, err, "nopostsfound", "No Posts Found")
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:post_id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param post_id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} map[string]string
// @Router /posts/{post_id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.Get(c.UserContext(), c.Params("post_id"))
	if err != nil {
		return respondLookupError(c, err, "nopostfound", "No Post Found with that ID")
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description name and avatar default to the caller's token claims.
// @Tags posts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param request body service.PostInput true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} map[string]string
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.PostInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.Create(c.UserContext(), identity(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:post_id
// @Summary Delete one of the caller's posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post_id path string true "Post ID"
// @Success 200 {object} object{success=bool}
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /posts/{post_id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.Delete(c.UserContext(), identity(c).ID, c.Params("post_id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// LikePost handles POST /api/posts/like/:post_id
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post_id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /posts/like/{post_id} [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	post, err := s.postService.Like(c.UserContext(), identity(c).ID, c.Params("post_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// UnlikePost handles POST /api/posts/unlike/:post_id
// @Summary Remove the caller's like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post_id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /posts/unlike/{post_id} [post]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	post, err := s.postService.Unlike(c.UserContext(), identity(c).ID, c.Params("post_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// AddComment handles POST /api/posts/comment/:post_id
// @Summary Comment on a post
// @Tags posts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param post_id path string true "Post ID"
// @Param request body service.PostInput true "Comment"
// @Success 200 {object} models.Post
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /posts/comment/{post_id} [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	var in service.PostInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.AddComment(c.UserContext(), identity(c), c.Params("post_id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// RemoveComment handles DELETE /api/posts/comment/:post_id/:comment_id
// @Summary Remove a comment
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post_id path string true "Post ID"
// @Param comment_id path string true "Comment ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} map[string]string
// @Router /posts/comment/{post_id}/{comment_id} [delete]
func (s *Server) RemoveComment(c *fiber.Ctx) error {
	post, err := s.postService.RemoveComment(c.UserContext(), c.Params("post_id"), c.Params("comment_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}
