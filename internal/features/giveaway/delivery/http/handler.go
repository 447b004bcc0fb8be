package http

import (
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"giveaway-entry-backend/internal/common/clock"
	"giveaway-entry-backend/internal/common/errors"
	"giveaway-entry-backend/internal/common/middleware"
	"giveaway-entry-backend/internal/features/giveaway/models"
	"giveaway-entry-backend/internal/features/giveaway/models/dto"
	giveawayservice "giveaway-entry-backend/internal/features/giveaway/service"
)

// TickSource feeds live countdown streams.
type TickSource interface {
	Subscribe() (<-chan time.Time, func())
}

type GiveawayHandler struct {
	service giveawayservice.EntryService
	ticks   TickSource
	clock   clock.Clock
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
	logger  zerolog.Logger
}

func NewGiveawayHandler(service giveawayservice.EntryService, ticks TickSource, clk clock.Clock, logger zerolog.Logger) *GiveawayHandler {
	return &GiveawayHandler{
		service: service,
		ticks:   ticks,
		clock:   clk,
		wrap:    middleware.HandleErrorWrapper(logger),
		logger:  logger,
	}
}

// RegisterRoutes mounts the entry API on an authenticated group. shareLimit
// throttles share actions and admin guards the finish action; either may be nil.
func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup, shareLimit, admin gin.HandlerFunc) {
	w := h.wrap
	limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if shareLimit == nil {
			return []gin.HandlerFunc{w(handler)}
		}
		return []gin.HandlerFunc{shareLimit, w(handler)}
	}

	router.GET("/channels", w(h.listChannels))

	giveaways := router.Group("/giveaways")
	{
		giveaways.GET("", w(h.list))
		giveaways.GET("/:id", w(h.getByID))
		giveaways.GET("/:id/countdown", w(h.countdown))
		giveaways.GET("/:id/countdown/stream", w(h.countdownStream))
		giveaways.GET("/:id/shares", w(h.shareHistory))
		giveaways.GET("/:id/shares/:channel", w(h.canShare))
		giveaways.POST("/:id/share-sessions", limited(h.openSession)...)
	}

	sessions := router.Group("/share-sessions")
	{
		sessions.GET("/:sid", w(h.getSession))
		sessions.POST("/:sid/channels/:channel", limited(h.shareOnChannel)...)
		sessions.POST("/:sid/confirm", limited(h.confirmSession)...)
		sessions.DELETE("/:sid", w(h.cancelSession))
	}

	adminGroup := router.Group("/admin")
	if admin != nil {
		adminGroup.Use(admin)
	}
	adminGroup.POST("/giveaways/:id/finish", w(h.finish))
}

// @Summary List giveaways
// @Description Returns every giveaway with its effective status, countdown and the caller's entries
// @Tags giveaways
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} dto.ListResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /giveaways [get]
func (h *GiveawayHandler) list(c *gin.Context) {
	views, err := h.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(toAppError(err, ""))
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Giveaways: views, Total: len(views)})
}

// @Summary Get giveaway
// @Description Effective status, countdown, the caller's entries and rank, and per-channel cooldowns
// @Tags giveaways
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Success 200 {object} models.GiveawayView
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id} [get]
func (h *GiveawayHandler) getByID(c *gin.Context) {
	id := c.Param("id")
	view, err := h.service.View(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		_ = c.Error(toAppError(err, id))
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Get countdown
// @Tags giveaways
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Success 200 {object} dto.CountdownResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/countdown [get]
func (h *GiveawayHandler) countdown(c *gin.Context) {
	id := c.Param("id")
	frame, err := h.countdownFrame(c, id)
	if err != nil {
		_ = c.Error(toAppError(err, id))
		return
	}
	c.JSON(http.StatusOK, frame)
}

// @Summary Stream countdown
// @Description Server-sent events, one "countdown" event per tick until the giveaway leaves the running phase
// @Tags giveaways
// @Produce text/event-stream
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Success 200 {object} dto.CountdownResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/countdown/stream [get]
func (h *GiveawayHandler) countdownStream(c *gin.Context) {
	id := c.Param("id")
	first, err := h.countdownFrame(c, id)
	if err != nil {
		_ = c.Error(toAppError(err, id))
		return
	}

	ticks, unsubscribe := h.ticks.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("countdown", first)
	if first.Status != models.PhaseRunning || first.Countdown.IsEnded {
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case _, ok := <-ticks:
			if !ok {
				return false
			}
			frame, err := h.countdownFrame(c, id)
			if err != nil {
				h.logger.Warn().Err(err).Str("giveaway_id", id).Msg("Countdown stream stopped")
				return false
			}
			c.SSEvent("countdown", frame)
			return frame.Status == models.PhaseRunning && !frame.Countdown.IsEnded
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *GiveawayHandler) countdownFrame(c *gin.Context, id string) (dto.CountdownResponse, error) {
	cd, status, err := h.service.Countdown(c.Request.Context(), id)
	if err != nil {
		return dto.CountdownResponse{}, err
	}
	return dto.CountdownResponse{
		GiveawayID: id,
		Status:     status,
		Countdown:  cd,
		ServerTime: h.clock.Now(),
	}, nil
}

// @Summary Check share cooldown
// @Description Whether the caller may share the giveaway on a channel now, and the hours left if not
// @Tags shares
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Param channel path string true "Channel" Enums(twitter, facebook, linkedin, reddit, telegram, whatsapp, discord, email)
// @Success 200 {object} models.CooldownStatus
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/shares/{channel} [get]
func (h *GiveawayHandler) canShare(c *gin.Context) {
	id := c.Param("id")
	channel, ok := models.ParseChannel(c.Param("channel"))
	if !ok {
		_ = c.Error(unknownChannel(c.Param("channel")))
		return
	}
	status, err := h.service.CanShare(c.Request.Context(), id, middleware.UserID(c), channel)
	if err != nil {
		_ = c.Error(toAppError(err, id))
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Share history
// @Tags shares
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Success 200 {object} dto.HistoryResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/shares [get]
func (h *GiveawayHandler) shareHistory(c *gin.Context) {
	id := c.Param("id")
	events, err := h.service.ShareHistory(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		_ = c.Error(toAppError(err, id))
		return
	}
	if events == nil {
		events = []models.ShareEvent{}
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{GiveawayID: id, Shares: events})
}

// @Summary Open share session
// @Description Starts a share flow. Shares asserted in it earn entries only after confirmation.
// @Tags share-sessions
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Success 201 {object} models.SessionSnapshot
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 410 {object} middleware.ErrorResponse "Giveaway is not running"
// @Failure 429 {object} middleware.ErrorResponse
// @Router /giveaways/{id}/share-sessions [post]
func (h *GiveawayHandler) openSession(c *gin.Context) {
	id := c.Param("id")
	snap, err := h.service.OpenSession(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		_ = c.Error(toAppError(err, id))
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// @Summary Get share session
// @Tags share-sessions
// @Produce json
// @Security TelegramInitData
// @Param sid path string true "Session ID"
// @Success 200 {object} models.SessionSnapshot
// @Failure 404 {object} middleware.ErrorResponse
// @Router /share-sessions/{sid} [get]
func (h *GiveawayHandler) getSession(c *gin.Context) {
	snap, err := h.service.GetSession(c.Request.Context(), c.Param("sid"), middleware.UserID(c))
	if err != nil {
		_ = c.Error(toAppError(err, ""))
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary Share on channel
// @Description Asserts a share on a channel. A channel still cooling down is answered with allowed=false and the hours remaining.
// @Tags share-sessions
// @Produce json
// @Security TelegramInitData
// @Param sid path string true "Session ID"
// @Param channel path string true "Channel"
// @Success 200 {object} dto.ShareResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Router /share-sessions/{sid}/channels/{channel} [post]
func (h *GiveawayHandler) shareOnChannel(c *gin.Context) {
	channel, ok := models.ParseChannel(c.Param("channel"))
	if !ok {
		_ = c.Error(unknownChannel(c.Param("channel")))
		return
	}
	status, snap, err := h.service.ShareOnChannel(c.Request.Context(), c.Param("sid"), middleware.UserID(c), channel)
	if err != nil {
		_ = c.Error(toAppError(err, ""))
		return
	}
	c.JSON(http.StatusOK, dto.ShareResponse{Cooldown: status, Session: snap})
}

// @Summary Confirm shares
// @Description Awards one entry per pending channel. Confirming again right after a commit is a no-op.
// @Tags share-sessions
// @Produce json
// @Security TelegramInitData
// @Param sid path string true "Session ID"
// @Success 200 {object} models.Confirmation
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Nothing to confirm"
// @Failure 410 {object} middleware.ErrorResponse "Giveaway is not running"
// @Router /share-sessions/{sid}/confirm [post]
func (h *GiveawayHandler) confirmSession(c *gin.Context) {
	conf, err := h.service.ConfirmSession(c.Request.Context(), c.Param("sid"), middleware.UserID(c))
	if err != nil {
		_ = c.Error(toAppError(err, ""))
		return
	}
	c.JSON(http.StatusOK, conf)
}

// @Summary Cancel share session
// @Description Discards pending shares without awarding entries
// @Tags share-sessions
// @Security TelegramInitData
// @Param sid path string true "Session ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /share-sessions/{sid} [delete]
func (h *GiveawayHandler) cancelSession(c *gin.Context) {
	if err := h.service.CancelSession(c.Request.Context(), c.Param("sid"), middleware.UserID(c)); err != nil {
		_ = c.Error(toAppError(err, ""))
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Finish giveaway
// @Description Records the winner and moves the giveaway to finished. Admins only.
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Giveaway ID"
// @Param input body dto.FinishRequest true "Winner"
// @Success 200 {object} models.Giveaway
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Already finished"
// @Router /admin/giveaways/{id}/finish [post]
func (h *GiveawayHandler) finish(c *gin.Context) {
	id := c.Param("id")
	var input dto.FinishRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	g, err := h.service.Finish(c.Request.Context(), id, input.Winner())
	if err != nil {
		_ = c.Error(toAppError(err, id))
		return
	}
	c.JSON(http.StatusOK, g)
}

// @Summary List share channels
// @Tags shares
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} dto.ChannelsResponse
// @Router /channels [get]
func (h *GiveawayHandler) listChannels(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ChannelsResponse{Channels: h.service.Channels()})
}

// bindError reports the first failed field of a request body.
func bindError(err error) *errors.AppError {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		return errors.NewValidationError(verrs[0].Field(), verrs[0].Tag())
	}
	return errors.Wrap(err, errors.ErrCodeBadRequest, "Malformed request body")
}

func unknownChannel(raw string) *errors.AppError {
	return errors.New(errors.ErrCodeUnknownChannel, "Unknown share channel").
		WithDetail("channel", raw).
		WithDetail("supported", models.Channels)
}

// toAppError maps engine errors to API error codes.
func toAppError(err error, giveawayID string) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case stderrors.Is(err, giveawayservice.ErrGiveawayNotFound):
		return errors.NewGiveawayNotFoundError(giveawayID)
	case stderrors.Is(err, giveawayservice.ErrGiveawayClosed):
		return errors.Wrapf(err, errors.ErrCodeGiveawayClosed, "Giveaway %s is not accepting entries", giveawayID)
	case stderrors.Is(err, giveawayservice.ErrAlreadyFinished):
		return errors.Wrapf(err, errors.ErrCodeAlreadyFinished, "Giveaway %s is already finished", giveawayID)
	case stderrors.Is(err, giveawayservice.ErrUnknownChannel):
		return errors.Wrap(err, errors.ErrCodeUnknownChannel, "Unknown share channel")
	case stderrors.Is(err, giveawayservice.ErrCooldownActive):
		return errors.Wrap(err, errors.ErrCodeCooldownActive, "Channel is still cooling down")
	case stderrors.Is(err, giveawayservice.ErrNothingToConfirm):
		return errors.Wrap(err, errors.ErrCodeNothingToConfirm, "No shares to confirm")
	case stderrors.Is(err, giveawayservice.ErrSessionNotFound):
		return errors.Wrap(err, errors.ErrCodeSessionNotFound, "Share session not found")
	default:
		return errors.NewStorageError("giveaway", err)
	}
}
