package server

import (
	"hrdesk/internal/models"
	"hrdesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListProfiles godoc
// @Summary List the profile catalog
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Profile
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Router /profiles [get]
func (s *Server) ListProfiles(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	profiles, err := s.profileService.List(ctx)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profiles)
}

// GetProfile godoc
// @Summary Get a profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.APIError
// @Router /profiles/{id} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := s.profileService.Get(ctx, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// CreateProfile godoc
// @Summary Create a profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProfileInput true "Profile definition"
// @Success 201 {object} models.Profile
// @Failure 422 {object} models.APIError
// @Router /profiles [post]
func (s *Server) CreateProfile(c *fiber.Ctx) error {
	var in service.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, models.NewBadRequestError("Invalid request body"))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := s.profileService.Create(ctx, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// UpdateProfile godoc
// @Summary Replace a profile definition
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Param request body service.ProfileInput true "Profile definition"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Router /profiles/{id} [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, models.NewBadRequestError("Invalid request body"))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := s.profileService.Update(ctx, id, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// DeleteProfile godoc
// @Summary Delete a profile and every stored value of it
// @Tags profiles
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Router /profiles/{id} [delete]
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.profileService.Delete(ctx, id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddProfileOption godoc
// @Summary Add an option to a select profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Param request body service.OptionInput true "Option"
// @Success 201 {object} models.SelectOption
// @Failure 404 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Router /profiles/{id}/options [post]
func (s *Server) AddProfileOption(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.OptionInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, models.NewBadRequestError("Invalid request body"))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	option, err := s.profileService.AddOption(ctx, id, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(option)
}

// DeleteProfileOption godoc
// @Summary Remove an option from a select profile
// @Tags profiles
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Param optionId path int true "Option ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Router /profiles/{id}/options/{optionId} [delete]
func (s *Server) DeleteProfileOption(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	optionID, err := s.parseID(c, "optionId")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.profileService.DeleteOption(ctx, id, optionID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
