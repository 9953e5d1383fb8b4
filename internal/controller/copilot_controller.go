package controller

import (
	"errors"

	"sales-copilot-be/internal/constant"
	"sales-copilot-be/internal/dto"
	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/mapper"
	"sales-copilot-be/internal/pkg/serverutils"
	"sales-copilot-be/internal/service"
	"sales-copilot-be/pkg/voice"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICopilotController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	State(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	ResumeSession(ctx *fiber.Ctx) error
	LoadSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	ProvideFeedback(ctx *fiber.Ctx) error
	SetRating(ctx *fiber.Ctx) error
	QuickAction(ctx *fiber.Ctx) error
	SetPendingInput(ctx *fiber.Ctx) error
	ToggleVoice(ctx *fiber.Ctx) error
	SetLiveSpeech(ctx *fiber.Ctx) error
}

type copilotController struct {
	engine    service.IChatEngine
	directory service.ISessionDirectory
	mapper    *mapper.CopilotDtoMapper
}

func NewCopilotController(engine service.IChatEngine, directory service.ISessionDirectory) ICopilotController {
	return &copilotController{
		engine:    engine,
		directory: directory,
		mapper:    mapper.NewCopilotDtoMapper(),
	}
}

func (c *copilotController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/copilot/v1", jwtMiddleware)
	h.Get("/state", c.State)

	h.Get("/sessions", c.ListSessions)
	h.Post("/sessions", c.CreateSession)
	h.Post("/sessions/resume", c.ResumeSession)
	h.Post("/sessions/:id/load", c.LoadSession)
	h.Delete("/sessions/:id", c.DeleteSession)

	h.Post("/messages", c.SendMessage)
	h.Put("/messages/:id/feedback", c.ProvideFeedback)
	h.Put("/messages/:id/rating", c.SetRating)

	h.Post("/quick-actions", c.QuickAction)
	h.Put("/input", c.SetPendingInput)
	h.Post("/voice/toggle", c.ToggleVoice)
	h.Put("/live-speech", c.SetLiveSpeech)
}

func (c *copilotController) State(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get state", c.engine.Snapshot().ToResponse()))
}

func (c *copilotController) ListSessions(ctx *fiber.Ctx) error {
	if err := c.engine.RefreshSessions(ctx.UserContext()); err != nil {
		return toHttpError(err)
	}

	res := c.engine.Snapshot().ToResponse().Sessions
	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *copilotController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := bodyIfPresent(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	session := c.engine.StartNewSession(ctx.UserContext(), req.Title)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", c.mapper.SessionToDetailResponse(session)))
}

func (c *copilotController) ResumeSession(ctx *fiber.Ctx) error {
	var req dto.ResumeSessionRequest
	if err := bodyIfPresent(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.DefaultTitle == "" {
		req.DefaultTitle = constant.DefaultSessionTitle
	}

	session := c.engine.Resume(ctx.UserContext(), req.DefaultTitle)
	return ctx.JSON(serverutils.SuccessResponse("Success resume session", c.mapper.SessionToDetailResponse(session)))
}

func (c *copilotController) LoadSession(ctx *fiber.Ctx) error {
	session, err := c.findSession(ctx)
	if err != nil {
		return err
	}

	c.engine.LoadSession(session)
	return ctx.JSON(serverutils.SuccessResponse("Success load session", c.engine.Snapshot().ToResponse()))
}

func (c *copilotController) DeleteSession(ctx *fiber.Ctx) error {
	session, err := c.findSession(ctx)
	if err != nil {
		return err
	}

	if err := c.engine.DeleteSession(ctx.UserContext(), session); err != nil {
		return toHttpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete session", c.engine.Snapshot().ToResponse()))
}

func (c *copilotController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	c.engine.SendMessage(ctx.UserContext(), req.Text)
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Message accepted", c.engine.Snapshot().ToResponse()))
}

func (c *copilotController) ProvideFeedback(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid message id")
	}

	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.engine.ProvideFeedback(ctx.UserContext(), id, entity.Feedback(req.Feedback)); err != nil {
		return toHttpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success give feedback", c.engine.Snapshot().ToResponse()))
}

func (c *copilotController) SetRating(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid message id")
	}

	var req dto.RatingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.engine.SetRating(ctx.UserContext(), id, req.Stars); err != nil {
		return toHttpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success set rating", c.engine.Snapshot().ToResponse()))
}

func (c *copilotController) QuickAction(ctx *fiber.Ctx) error {
	var req dto.QuickActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	c.engine.PerformQuickAction(ctx.UserContext(), req.Label)
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Quick action accepted", c.engine.Snapshot().ToResponse()))
}

func (c *copilotController) SetPendingInput(ctx *fiber.Ctx) error {
	var req dto.PendingInputRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	c.engine.SetPendingInput(req.Text)
	return ctx.JSON(serverutils.SuccessResponse("Success set input", c.engine.Snapshot().ToResponse()))
}

func (c *copilotController) ToggleVoice(ctx *fiber.Ctx) error {
	if err := c.engine.ToggleVoiceCapture(ctx.UserContext()); err != nil {
		return toHttpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success toggle voice capture", c.engine.Snapshot().ToResponse()))
}

func (c *copilotController) SetLiveSpeech(ctx *fiber.Ctx) error {
	var req dto.LiveSpeechRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	c.engine.SetLiveSpeech(req.Enabled)
	return ctx.JSON(serverutils.SuccessResponse("Success set live speech", c.engine.Snapshot().ToResponse()))
}

func (c *copilotController) findSession(ctx *fiber.Ctx) (*entity.ChatSession, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	session, err := c.directory.Find(ctx.UserContext(), id)
	if err != nil {
		return nil, toHttpError(err)
	}
	return session, nil
}

// bodyIfPresent allows optional JSON bodies on endpoints where every field has a default.
func bodyIfPresent(ctx *fiber.Ctx, out any) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func toHttpError(err error) error {
	var storageErr *service.StorageError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrMessageNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrInvalidRating), errors.Is(err, entity.ErrInvalidFeedback):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, voice.ErrAdapterUnavailable), errors.As(err, &storageErr):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return err
}
