package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/pea/internal/api/protocol"
	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/service"
)

// PortraitService is the subset of service.PortraitService the handler drives.
type PortraitService interface {
	Store(ctx context.Context, token string, photo []byte) error
	Retrieve(ctx context.Context, photo []byte) (*service.RetrieveResult, error)
	Transfer(ctx context.Context, token string, styleID int) (*service.TransferResult, error)
	Delete(ctx context.Context, token string) (bool, error)
}

// PortraitHandler serves the single-endpoint photo protocol.
type PortraitHandler struct {
	service PortraitService
	logger  *slog.Logger
}

func NewPortraitHandler(service PortraitService, logger *slog.Logger) *PortraitHandler {
	return &PortraitHandler{
		service: service,
		logger:  logger,
	}
}

// Handle POST / - dispatch on the Operation header
func (h *PortraitHandler) Handle(c *fiber.Ctx) error {
	req, err := protocol.Decode(headerGetter(c), c.Body())
	if err != nil {
		return err
	}
	return h.dispatch(c, req)
}

// Delete DELETE / - the Delete operation without an Operation header
func (h *PortraitHandler) Delete(c *fiber.Ctx) error {
	req, err := protocol.DecodeOperation(protocol.OpDelete, headerGetter(c), nil)
	if err != nil {
		return err
	}
	return h.dispatch(c, req)
}

func (h *PortraitHandler) dispatch(c *fiber.Ctx, req protocol.Request) error {
	switch r := req.(type) {
	case *protocol.StoreRequest:
		return h.store(c, r)
	case *protocol.RetrieveRequest:
		return h.retrieve(c, r)
	case *protocol.TransferRequest:
		return h.transfer(c, r)
	case *protocol.DeleteRequest:
		return h.delete(c, r)
	default:
		return domain.ErrInternal.WithError(fmt.Errorf("unhandled request %T", req))
	}
}

func (h *PortraitHandler) store(c *fiber.Ctx, r *protocol.StoreRequest) error {
	if err := h.service.Store(c.UserContext(), r.Token, r.Photo); err != nil {
		return err
	}
	c.Status(fiber.StatusOK)
	return nil
}

func (h *PortraitHandler) retrieve(c *fiber.Ctx, r *protocol.RetrieveRequest) error {
	result, err := h.service.Retrieve(c.UserContext(), r.Photo)
	if err != nil {
		return err
	}

	body, info, err := protocol.EncodeRetrieve(result.Candidates)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	c.Set(protocol.HeaderImageInfo, info)
	c.Set(protocol.HeaderEmotion, result.Emotion.String())
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Status(fiber.StatusOK).Send(body)
}

func (h *PortraitHandler) transfer(c *fiber.Ctx, r *protocol.TransferRequest) error {
	result, err := h.service.Transfer(c.UserContext(), r.Token, r.StyleID)
	if err != nil {
		return err
	}

	c.Set(protocol.HeaderStyleName, result.Style.Name)
	c.Set(protocol.HeaderStyleID, strconv.Itoa(result.Style.ID))
	c.Set(fiber.HeaderContentType, result.ContentType)
	return c.Status(fiber.StatusOK).Send(result.Image)
}

func (h *PortraitHandler) delete(c *fiber.Ctx, r *protocol.DeleteRequest) error {
	removed, err := h.service.Delete(c.UserContext(), r.Token)
	if err != nil {
		return err
	}

	status := protocol.DeleteStatusAbsent
	if removed {
		status = protocol.DeleteStatusRemoved
	}
	c.Set(protocol.HeaderDeleteStatus, status)
	c.Status(fiber.StatusOK)
	return nil
}

func headerGetter(c *fiber.Ctx) func(string) string {
	return func(key string) string {
		return c.Get(key)
	}
}
