package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rahmatrdn/go-query-insight/entity"
)

type ConnectionService interface {
	CreateConnection(ctx context.Context, conn *entity.CHConnection) error
	UpdateConnection(ctx context.Context, id int64, conn *entity.CHConnection) error
	GetAllConnections(ctx context.Context) ([]*entity.CHConnection, error)
	GetConnection(ctx context.Context, id int64) (*entity.CHConnection, error)
	GetConnectionStatus(ctx context.Context, id int64) (string, error)
	DeleteConnection(ctx context.Context, id int64) error
}

type ConnectionHandler struct {
	connectionUsecase ConnectionService
}

func NewConnectionHandler(connectionUsecase ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionUsecase: connectionUsecase}
}

func (h *ConnectionHandler) Register(app *fiber.App) {
	group := app.Group("/connections")
	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Get("/:id", h.Get)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	group.Get("/:id/status", h.Status)
}

// List godoc
// @Summary  List connections
// @Tags     connections
// @Produce  json
// @Success  200 {object} handler.connectionListResponse
// @Router   /connections [get]
func (h *ConnectionHandler) List(c *fiber.Ctx) error {
	conns, err := h.connectionUsecase.GetAllConnections(c.Context())
	if err != nil {
		return err
	}

	out := make([]*entity.CHConnection, 0, len(conns))
	for _, conn := range conns {
		out = append(out, withoutPassword(conn))
	}
	return c.JSON(connectionListResponse{Data: out})
}

// Get godoc
// @Summary  Get a connection
// @Tags     connections
// @Produce  json
// @Param    id path int true "Connection ID"
// @Success  200 {object} handler.connectionResponse
// @Failure  404 {object} handler.errorResponse
// @Router   /connections/{id} [get]
func (h *ConnectionHandler) Get(c *fiber.Ctx) error {
	id, err := connectionID(c)
	if err != nil {
		return err
	}

	conn, err := h.connectionUsecase.GetConnection(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(connectionResponse{Data: withoutPassword(conn)})
}

// Create godoc
// @Summary      Register a connection
// @Description  Pings the server before the connection is stored.
// @Tags         connections
// @Accept       json
// @Produce      json
// @Param        connection body entity.CHConnection true "Connection"
// @Success      201 {object} handler.connectionResponse
// @Failure      400 {object} handler.errorResponse
// @Failure      502 {object} handler.errorResponse
// @Router       /connections [post]
func (h *ConnectionHandler) Create(c *fiber.Ctx) error {
	var conn entity.CHConnection
	if err := c.BodyParser(&conn); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	conn.ID = 0

	if err := h.connectionUsecase.CreateConnection(c.Context(), &conn); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(connectionResponse{Data: withoutPassword(&conn)})
}

// Update godoc
// @Summary      Update a connection
// @Description  A blank password keeps the stored one.
// @Tags         connections
// @Accept       json
// @Produce      json
// @Param        id path int true "Connection ID"
// @Param        connection body entity.CHConnection true "Connection"
// @Success      200 {object} handler.connectionResponse
// @Failure      400 {object} handler.errorResponse
// @Failure      404 {object} handler.errorResponse
// @Failure      502 {object} handler.errorResponse
// @Router       /connections/{id} [put]
func (h *ConnectionHandler) Update(c *fiber.Ctx) error {
	id, err := connectionID(c)
	if err != nil {
		return err
	}

	var conn entity.CHConnection
	if err := c.BodyParser(&conn); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.connectionUsecase.UpdateConnection(c.Context(), id, &conn); err != nil {
		return err
	}
	return c.JSON(connectionResponse{Data: withoutPassword(&conn)})
}

// Delete godoc
// @Summary  Delete a connection and its report
// @Tags     connections
// @Param    id path int true "Connection ID"
// @Success  204
// @Failure  404 {object} handler.errorResponse
// @Router   /connections/{id} [delete]
func (h *ConnectionHandler) Delete(c *fiber.Ctx) error {
	id, err := connectionID(c)
	if err != nil {
		return err
	}

	if err := h.connectionUsecase.DeleteConnection(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Status godoc
// @Summary  Ping a connection
// @Tags     connections
// @Produce  json
// @Param    id path int true "Connection ID"
// @Success  200 {object} handler.statusResponse
// @Router   /connections/{id}/status [get]
func (h *ConnectionHandler) Status(c *fiber.Ctx) error {
	id, err := connectionID(c)
	if err != nil {
		return err
	}

	status, err := h.connectionUsecase.GetConnectionStatus(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(statusResponse{Status: status})
}

func connectionID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid connection id")
	}
	return id, nil
}

func withoutPassword(conn *entity.CHConnection) *entity.CHConnection {
	out := *conn
	out.Password = ""
	return &out
}
