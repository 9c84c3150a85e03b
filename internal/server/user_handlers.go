package server

import (
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/users/register
// @Summary Register a user
// @Description Create an account. The avatar is derived from the email's Gravatar.
// @Tags users
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body service.RegisterInput true "Registration form"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	user, err := s.userService.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// Login handles POST /api/users/login
// @Summary Log in
// @Description Check credentials and return a bearer token
// @Tags users
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body service.LoginInput true "Credentials"
// @Success 200 {object} service.LoginResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	res, err := s.userService.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// Current handles GET /api/users/current
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{id=string,name=string,email=string,avatar=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/current [get]
func (s *Server) Current(c *fiber.Ctx) error {
	user, err := s.userService.Current(c.UserContext(), identity(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":     user.ID,
		"name":   user.Name,
		"email":  user.Email,
		"avatar": user.Avatar,
	})
}

// Logout handles POST /api/users/logout
// @Summary Log out
// @Description Revoke the presented token until it expires
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool}
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.userService.Logout(c.UserContext(), identity(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
