package server

import (
	"hrdesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUser godoc
// @Summary Get a user
// @Description Returns the user with one attribute per catalog profile, null when unset
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := s.userService.GetUser(ctx, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(p)
}

// CreateUser godoc
// @Summary Create a user
// @Description Validates login, password and every catalog profile, then stores the user
// @Tags users
// @Accept json,x-www-form-urlencoded,mpfd
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	in, err := parseSubmission(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := s.userService.Create(ctx, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(p)
}

// UpdateUser godoc
// @Summary Update a user
// @Description Writes supplied profile values and deletes the values of omitted profiles
// @Tags users
// @Accept json,x-www-form-urlencoded,mpfd
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in, err := parseSubmission(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := s.userService.Update(ctx, id, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(p)
}
