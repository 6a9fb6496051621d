package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	cv2pdf "github.com/alnah/go-cv2pdf"
	"github.com/alnah/go-cv2pdf/internal/schema"
)

type server struct {
	app *fiber.App
	svc *cv2pdf.Service
	log *slog.Logger
}

func newServer(svc *cv2pdf.Service, log *slog.Logger) *server {
	s := &server{svc: svc, log: log}

	s.app = fiber.New(fiber.Config{
		AppName:               "cv2pdfd",
		DisableStartupMessage: true,
		BodyLimit:             1 << 20, // profiles are small; reject anything bigger
		ReadTimeout:           10 * time.Second,
	})

	s.app.Post("/render/pdf", s.handleRender)
	s.app.Post("/preview", s.handlePreview)
	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/templates", s.handleTemplates)

	return s
}

// renderPayload is the wire form of a render request. The profile stays
// raw until it passes schema validation.
type renderPayload struct {
	Profile  json.RawMessage    `json:"profile"`
	Template string             `json:"template"`
	Region   string             `json:"region"`
	Locale   string             `json:"locale"`
	Genes    *cv2pdf.GeneConfig `json:"genes,omitempty"`
}

func (s *server) parseRequest(c *fiber.Ctx) (*cv2pdf.RenderRequest, error) {
	var payload renderPayload
	if err := c.BodyParser(&payload); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if len(payload.Profile) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "missing profile")
	}
	if err := schema.ValidateProfile(payload.Profile); err != nil {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	req := cv2pdf.RenderRequest{
		Template: payload.Template,
		Region:   payload.Region,
		Locale:   payload.Locale,
		Genes:    payload.Genes,
	}
	if err := json.Unmarshal(payload.Profile, &req.Profile); err != nil {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "profile: "+err.Error())
	}
	return &req, nil
}

func (s *server) handleRender(c *fiber.Ctx) error {
	req, err := s.parseRequest(c)
	if err != nil {
		return err
	}

	result, err := s.svc.Render(c.UserContext(), *req)
	if err != nil {
		return s.renderError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set("X-Page-Count", itoa(result.Pages))
	return c.Send(result.PDF)
}

func (s *server) handlePreview(c *fiber.Ctx) error {
	req, err := s.parseRequest(c)
	if err != nil {
		return err
	}

	result, err := s.svc.Preview(*req)
	if err != nil {
		return s.renderError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set("X-Page-Count", itoa(result.Pages))
	return c.SendString(result.HTML)
}

func (s *server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"pool":   s.svc.Stats(),
	})
}

func (s *server) handleTemplates(c *fiber.Ctx) error {
	templates, err := cv2pdf.Templates()
	if err != nil {
		return s.renderError(c, err)
	}
	regions, err := cv2pdf.Regions()
	if err != nil {
		return s.renderError(c, err)
	}
	locales, err := cv2pdf.Locales()
	if err != nil {
		return s.renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"templates": templates,
		"regions":   regions,
		"locales":   locales,
	})
}

// renderError maps pipeline errors to HTTP statuses: configuration
// lookups are the client's fault, saturation asks the client to back
// off, and a timeout is reported distinctly from a crash.
func (s *server) renderError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, cv2pdf.ErrUnknownTemplate),
		errors.Is(err, cv2pdf.ErrUnknownGene),
		errors.Is(err, cv2pdf.ErrUnknownRegion),
		errors.Is(err, cv2pdf.ErrUnknownLocale):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, cv2pdf.ErrQueueSaturated):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, cv2pdf.ErrRenderTimeout):
		status = fiber.StatusGatewayTimeout
	}

	if status == fiber.StatusInternalServerError {
		s.log.Error("render failed", "error", err)
	} else {
		s.log.Warn("render rejected", "status", status, "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
