package server

import (
	"log/slog"

	"devconnector/internal/middleware"
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetOwnProfile handles GET /api/profile
// @Summary Current user's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 404 {object} map[string]string
// @Router /profile [get]
func (s *Server) GetOwnProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetOwn(c.UserContext(), identity(c).ID)
	if err != nil {
		return respondLookupError(c, err, "noprofile", "No Profile Found for this user")
	}
	return c.JSON(profile)
}

// ListProfiles handles GET /api/profile/all
// @Summary List profiles
// @Tags profile
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Profile
// @Failure 404 {object} map[string]string
// @Router /profile/all [get]
func (s *Server) ListProfiles(c *fiber.Ctx) error {
	page := parsePagination(c)
	profiles, err := s.profileService.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondLookupError(c, err, "profile", "No Profiles Found")
	}
	return c.JSON(profiles)
}

// GetProfileByHandle handles GET /api/profile/handle/:handle
// @Summary Profile by handle
// @Tags profile
// @Produce json
// @Param handle path string true "Profile handle"
// @Success 200 {object} models.Profile
// @Failure 404 {object} map[string]string
// @Router /profile/handle/{handle} [get]
func (s *Server) GetProfileByHandle(c *fiber.Ctx) error {
	profile, err := s.profileService.GetByHandle(c.UserContext(), c.Params("handle"))
	if err != nil {
		return respondLookupError(c, err, "noprofile", "No Profile for this handle")
	}
	return c.JSON(profile)
}

// GetProfileByUser handles GET /api/profile/user/:user_id
// @Summary Profile by user id
// @Tags profile
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} map[string]string
// @Router /profile/user/{user_id} [get]
func (s *Server) GetProfileByUser(c *fiber.Ctx) error {
	profile, err := s.profileService.GetByUser(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return respondLookupError(c, err, "noprofile", "No Profile for this userID")
	}
	return c.JSON(profile)
}

// UpsertProfile handles POST /api/profile
// @Summary Create or update the current user's profile
// @Description skills is a comma separated list. Omitted optional fields keep their stored value.
// @Tags profile
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param request body service.UpsertProfileInput true "Profile fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} map[string]string
// @Router /profile [post]
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	var in service.UpsertProfileInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	profile, err := s.profileService.Upsert(c.UserContext(), identity(c).ID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// AddExperience handles POST /api/profile/experience
// @Summary Add an experience entry
// @Tags profile
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param request body service.ExperienceInput true "Experience"
// @Success 200 {object} models.Profile
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /profile/experience [post]
func (s *Server) AddExperience(c *fiber.Ctx) error {
	var in service.ExperienceInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	profile, err := s.profileService.AddExperience(c.UserContext(), identity(c).ID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// RemoveExperience handles DELETE /api/profile/experience/:exp_id
// @Summary Remove an experience entry
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param exp_id path string true "Experience ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} map[string]string
// @Router /profile/experience/{exp_id} [delete]
func (s *Server) RemoveExperience(c *fiber.Ctx) error {
	profile, err := s.profileService.RemoveExperience(c.UserContext(), identity(c).ID, c.Params("exp_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// AddEducation handles POST /api/profile/education
// @Summary Add an education entry
// @Tags profile
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param request body service.EducationInput true "Education"
// @Success 200 {object} models.Profile
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /profile/education [post]
func (s *Server) AddEducation(c *fiber.Ctx) error {
	var in service.EducationInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	profile, err := s.profileService.AddEducation(c.UserContext(), identity(c).ID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// RemoveEducation handles DELETE /api/profile/education/:edu_id
// @Summary Remove an education entry
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param edu_id path string true "Education ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} map[string]string
// @Router /profile/education/{edu_id} [delete]
func (s *Server) RemoveEducation(c *fiber.Ctx) error {
	profile, err := s.profileService.RemoveEducation(c.UserContext(), identity(c).ID, c.Params("edu_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/profile
// @Summary Delete the current user and their profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool}
// @Router /profile [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	id := identity(c)
	if err := s.profileService.DeleteAccount(c.UserContext(), id.ID); err != nil {
		return respondError(c, err)
	}
	// AuthRequired rejects the token once the account is gone; revoking it
	// as well saves the lookup.
	if s.revocations.Enabled() {
		if err := s.revocations.Revoke(c.UserContext(), id.TokenID, id.ExpiresAt); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "token revocation failed", slog.String("error", err.Error()))
		}
	}
	return c.JSON(fiber.Map{"success": true})
}
