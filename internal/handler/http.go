package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/cache"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type CommandProcessor interface {
	Process(ctx context.Context, cmd entities.Command) (entities.Outcome, error)
}

type ProjectionReader interface {
	GetProjection(ctx context.Context, orderID string) (entities.Projection, error)
	Rebuild(ctx context.Context, orderID string) (entities.Projection, error)
}

type CacheStatusProvider interface {
	Status() cache.Status
}

type HTTPHandler struct {
	logger     *slog.Logger
	validate   *validator.Validate
	processor  CommandProcessor
	orders     ProjectionReader
	cacheState CacheStatusProvider
}

func NewHTTPHandler(logger *slog.Logger, processor CommandProcessor, orders ProjectionReader, cacheState CacheStatusProvider) *HTTPHandler {
	return &HTTPHandler{
		logger:     logger.With(slog.String("handler", "http")),
		validate:   validator.New(),
		processor:  processor,
		orders:     orders,
		cacheState: cacheState,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Post("/commands", h.SubmitCommand)

	r.Route("/orders/{order_id}", func(r chi.Router) {
		r.Get("/", h.GetOrder)
		r.Get("/status", h.GetOrderStatus)
		r.Post("/rebuild", h.RebuildOrder)
	})

	r.Get("/cache/status", h.CacheStatus)
}

// SubmitCommand принимает команду и возвращает результат её обработки.
// @Summary      Отправить команду
// @Description  Проводит команду через конвейер обработки. Повторная отправка с тем же commandId возвращает исходный результат
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        command  body      Command  true  "Команда"
// @Success      200  {object}  Outcome "Команда принята"
// @Failure      400  {object}  Outcome "Ошибка валидации"
// @Failure      404  {object}  Outcome "Заказ не найден"
// @Failure      409  {object}  Outcome "Недопустимый переход"
// @Failure      503  {object}  Outcome "Обработка отложена, повторите после Retry-After"
// @Router       /commands [post]
func (h *HTTPHandler) SubmitCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req Command
	if err := utils.DecodeBody(r, &req); err != nil {
		commandRequests.WithLabelValues("malformed").Inc()
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		commandRequests.WithLabelValues("invalid").Inc()
		utils.WriteValidationError(w, err)
		return
	}

	out, err := h.processor.Process(ctx, CommandJSONToEntity(req))
	if err != nil {
		h.logger.WarnContext(ctx, "command interrupted", slog.String("command_id", req.CommandID), slog.Any("error", err))
		utils.WriteError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	commandRequests.WithLabelValues(string(out.Status)).Inc()
	commandRequestDuration.Observe(time.Since(start).Seconds())

	if out.Status == entities.OutcomeDeferred {
		utils.SetRetryAfter(w, out.RetryAfter)
	}
	utils.WriteJSON(w, OutcomeEntityToJSON(out), outcomeStatusCode(out))
}

func outcomeStatusCode(out entities.Outcome) int {
	switch out.Status {
	case entities.OutcomeAccepted:
		return http.StatusOK
	case entities.OutcomeDeferred:
		return http.StatusServiceUnavailable
	}

	switch out.Reason {
	case entities.ReasonOrderNotFound:
		return http.StatusNotFound
	case entities.ReasonInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// GetOrder возвращает заказ по ID.
// @Summary      Получить заказ
// @Description  Возвращает проекцию заказа. Если проекции нет, она восстанавливается из журнала событий
// @Tags         orders
// @Produce      json
// @Param        order_id   path      string  true  "Идентификатор заказа"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ValidationErrorResponse "Ошибка валидации"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      503  {object}  utils.ErrorResponse "Хранилище недоступно"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /orders/{order_id} [get]
func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := h.projection(w, r, h.orders.GetProjection)
	if !ok {
		return
	}
	utils.WriteJSON(w, ProjectionEntityToJSON(p), http.StatusOK)
}

// GetOrderStatus возвращает текущий статус заказа.
// @Summary      Статус заказа
// @Tags         orders
// @Produce      json
// @Param        order_id   path      string  true  "Идентификатор заказа"
// @Success      200  {object}  OrderStatus
// @Failure      400  {object}  utils.ValidationErrorResponse "Ошибка валидации"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      503  {object}  utils.ErrorResponse "Хранилище недоступно"
// @Router       /orders/{order_id}/status [get]
func (h *HTTPHandler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := h.projection(w, r, h.orders.GetProjection)
	if !ok {
		return
	}
	utils.WriteJSON(w, ProjectionEntityToStatus(p), http.StatusOK)
}

// RebuildOrder пересобирает проекцию заказа из журнала событий.
// @Summary      Пересобрать проекцию
// @Tags         orders
// @Produce      json
// @Param        order_id   path      string  true  "Идентификатор заказа"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      503  {object}  utils.ErrorResponse "Хранилище недоступно"
// @Router       /orders/{order_id}/rebuild [post]
func (h *HTTPHandler) RebuildOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := h.projection(w, r, h.orders.Rebuild)
	if !ok {
		return
	}
	utils.WriteJSON(w, ProjectionEntityToJSON(p), http.StatusOK)
}

func (h *HTTPHandler) projection(
	w http.ResponseWriter,
	r *http.Request,
	get func(ctx context.Context, orderID string) (entities.Projection, error),
) (entities.Projection, bool) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	if err := h.validate.Var(orderID, "required,max=128"); err != nil {
		utils.WriteValidationError(w, err)
		return entities.Projection{}, false
	}

	p, err := get(ctx, orderID)
	switch {
	case err == nil:
		return p, true
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrTransportUnavailable):
		h.logger.WarnContext(ctx, "projection store unavailable", slog.Any("error", err), slog.String("order_id", orderID))
		utils.WriteError(w, "service unavailable", http.StatusServiceUnavailable)
	default:
		h.logger.ErrorContext(ctx, "failed to get order", slog.Any("error", err), slog.String("order_id", orderID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
	return entities.Projection{}, false
}

// CacheStatus возвращает состояние кэша.
// @Summary      Состояние кэша
// @Description  Режим работы кэша (redis или локальный) и число локальных записей, ожидающих синхронизации
// @Tags         cache
// @Produce      json
// @Success      200  {object}  cache.Status
// @Router       /cache/status [get]
func (h *HTTPHandler) CacheStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.cacheState.Status(), http.StatusOK)
}
