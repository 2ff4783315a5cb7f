// FILE: internal/server/http/handler.go
package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"golf/internal/server/core"
	"golf/internal/server/processor"
	"golf/internal/server/service"
)

const rateLimitRate = 10 // req/sec

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options configures the HTTP application
type Options struct {
	DevMode bool
	// Gatherer backs /metrics; nil disables the route
	Gatherer prometheus.Gatherer
	// AccessLog toggles the Fiber request logger
	AccessLog bool
	// RateLimit overrides the per-client requests per second
	RateLimit int
}

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, opts Options) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    8 * 1024 * 1024,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health and metrics (no rate limit)
	app.Get("/health", h.Health)
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if opts.RateLimit > 0 {
		maxReq = opts.RateLimit
	} else if opts.DevMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	// Content-Type validation for POST requests
	api.Use(contentTypeValidator)

	// Body parsing and validation
	api.Use(validationMiddleware)

	api.Get("/instances", h.ListInstances)
	api.Post("/instances", h.CreateInstance)
	api.Get("/instances/:name", h.GetInstance)
	api.Get("/instances/:name/bounds", h.ListBounds)
	api.Post("/instances/:name/bounds", h.SubmitBound)
	api.Post("/instances/:name/solutions", h.SubmitSolution)
	api.Get("/instances/:name/solution", h.GetSolution)
	api.Get("/instances/:name/history.png", h.GetHistoryChart)
	api.Get("/table.xlsx", h.GetTable)
	api.Post("/constructions/run", h.RunConstructions)
	api.Get("/constructions/jobs/:jobId", h.GetJob)

	return app
}

// contentTypeValidator ensures POST requests carry JSON
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message

		// Map HTTP status to error codes
		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrInvalidRequest
			response.Details = "no such route"
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps processor error codes onto HTTP status codes
func statusFor(code string) int {
	switch code {
	case core.ErrInstanceNotFound, core.ErrJobNotFound, core.ErrNoSolution:
		return fiber.StatusNotFound
	case core.ErrValidationFailed:
		return fiber.StatusUnprocessableEntity
	case core.ErrInvalidScheduleFormat, core.ErrInvalidRequest:
		return fiber.StatusBadRequest
	case core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respond writes a processor response as JSON with the given success status
func respond(c *fiber.Ctx, resp processor.ProcessorResponse, status int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.Status(status).JSON(resp.Data)
}

func bypass(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: err.Error(),
		Code:  core.ErrInternalError,
	})
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(core.HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Unix(),
		Storage: h.svc.Health(),
	})
}

// ListInstances returns every instance with its resolved bounds
func (h *HTTPHandler) ListInstances(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewListInstancesCommand())
	return respond(c, resp, fiber.StatusOK)
}

// CreateInstance creates an instance or returns the existing one
func (h *HTTPHandler) CreateInstance(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateInstanceRequest](c)
	if err != nil {
		return bypass(c, err)
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewCreateInstanceCommand(req))
	return respond(c, resp, fiber.StatusCreated)
}

// GetInstance returns the resolved state of one instance
func (h *HTTPHandler) GetInstance(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewGetInstanceCommand(c.Params("name")))
	return respond(c, resp, fiber.StatusOK)
}

// ListBounds returns every bound recorded for an instance
func (h *HTTPHandler) ListBounds(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewListBoundsCommand(c.Params("name")))
	return respond(c, resp, fiber.StatusOK)
}

// SubmitBound records an upper or lower bound
func (h *HTTPHandler) SubmitBound(c *fiber.Ctx) error {
	req, err := validatedBody[core.SubmitBoundRequest](c)
	if err != nil {
		return bypass(c, err)
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewSubmitBoundCommand(c.Params("name"), req))
	return respond(c, resp, fiber.StatusCreated)
}

// SubmitSolution validates and records a schedule
func (h *HTTPHandler) SubmitSolution(c *fiber.Ctx) error {
	req, err := validatedBody[core.SubmitSolutionRequest](c)
	if err != nil {
		return bypass(c, err)
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewSubmitSolutionCommand(c.Params("name"), req))
	return respond(c, resp, fiber.StatusCreated)
}

// GetSolution returns the best solution in its stored text form
func (h *HTTPHandler) GetSolution(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewGetSolutionCommand(c.Params("name")))
	if !resp.Success {
		return respond(c, resp, fiber.StatusOK)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(resp.Data.(string))
}

// GetHistoryChart renders the bound history of an instance as PNG
func (h *HTTPHandler) GetHistoryChart(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewRenderHistoryCommand(c.Params("name")))
	if !resp.Success {
		return respond(c, resp, fiber.StatusOK)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(resp.Data.([]byte))
}

// GetTable exports the bound table as an XLSX workbook
func (h *HTTPHandler) GetTable(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewExportTableCommand())
	if !resp.Success {
		return respond(c, resp, fiber.StatusOK)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="golf-bounds.xlsx"`)
	return c.Send(resp.Data.([]byte))
}

// RunConstructions queues a construction sweep
func (h *HTTPHandler) RunConstructions(c *fiber.Ctx) error {
	req, err := validatedBody[core.RunConstructionsRequest](c)
	if err != nil {
		return bypass(c, err)
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewRunConstructionsCommand(req))
	return respond(c, resp, fiber.StatusAccepted)
}

// GetJob reports the state of a construction sweep
func (h *HTTPHandler) GetJob(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewGetJobCommand(c.Params("jobId")))
	return respond(c, resp, fiber.StatusOK)
}
