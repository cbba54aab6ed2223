package server

import (
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"secure-rag/internal/auth"
	"secure-rag/internal/config"
	"secure-rag/internal/helper"
	"secure-rag/internal/models"
	"secure-rag/internal/rag"
)

//go:embed ui.html
var uiPage string

// Asker is the question answering service behind the HTTP surface.
type Asker interface {
	Authenticate(ctx context.Context, creds auth.Credentials) (models.AccessTier, error)
	AskAs(ctx context.Context, role models.AccessTier, question string) (*rag.Answer, error)
}

type Server struct {
	app     *fiber.App
	svc     Asker
	addr    string
	timeout time.Duration
}

const (
	localRole      = "role"
	localRequestID = "request_id"
)

func New(svc Asker, cfg config.ServerConfig) *Server {
	s := &Server{
		app:     fiber.New(),
		svc:     svc,
		addr:    cfg.Addr,
		timeout: cfg.RequestTimeout,
	}

	s.app.Use(requestLogger(), recoverer())

	s.app.Get("/health", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	s.app.Get("/ui", func(c fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(uiPage)
	})
	s.app.Get("/hello", s.authenticate, s.hello)
	s.app.Post("/chat", s.authenticate, s.chat)
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen() error {
	log.Info().Str("addr", s.addr).Msg("Starting server")
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func writeError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":      message,
		"request_id": c.Locals(localRequestID),
	})
}

// parseBasicAuth decodes an "Authorization: Basic" header value.
func parseBasicAuth(header string) (auth.Credentials, bool) {
	const prefix = "basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return auth.Credentials{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return auth.Credentials{}, false
	}
	login, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return auth.Credentials{}, false
	}
	return auth.Credentials{Login: login, Password: password}, true
}

func (s *Server) authenticate(c fiber.Ctx) error {
	creds, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
	if !ok {
		c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="rag"`)
		return writeError(c, fiber.StatusUnauthorized, "Wrong login or password")
	}

	role, err := s.svc.Authenticate(c.Context(), creds)
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="rag"`)
		return writeError(c, fiber.StatusUnauthorized, "Wrong login or password")
	case err != nil:
		log.Error().Err(err).Str("login", creds.Login).Msg("Authentication failed")
		return writeError(c, fiber.StatusInternalServerError, "authentication unavailable")
	}

	c.Locals(localRole, role)
	return c.Next()
}

func roleOf(c fiber.Ctx) models.AccessTier {
	role, _ := c.Locals(localRole).(models.AccessTier)
	return role
}

func (s *Server) hello(c fiber.Ctx) error {
	return c.SendString(string(roleOf(c)))
}

func (s *Server) chat(c fiber.Ctx) error {
	question := strings.TrimSpace(c.Query("question"))
	if question == "" {
		return writeError(c, fiber.StatusBadRequest, "question is empty")
	}

	ctx := c.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	role := roleOf(c)
	answer, err := s.svc.AskAs(ctx, role, question)
	if err != nil {
		log.Error().Err(err).Str("role", string(role)).Interface("request_id", c.Locals(localRequestID)).Msg("Chat failed")
		switch {
		case errors.Is(err, models.ErrInvalidQuestion):
			return writeError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, models.ErrUnauthorized):
			return writeError(c, fiber.StatusUnauthorized, "Wrong login or password")
		case errors.Is(err, context.DeadlineExceeded):
			return writeError(c, fiber.StatusGatewayTimeout, "request timed out")
		case errors.Is(err, models.ErrSearch), errors.Is(err, models.ErrGeneration):
			return writeError(c, fiber.StatusBadGateway, "upstream service failure")
		default:
			return writeError(c, fiber.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(answer)
}

func requestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			if generated, err := helper.GenerateUUID(); err == nil {
				id = generated
			}
		}
		c.Locals(localRequestID, id)
		c.Set("X-Request-ID", id)

		start := time.Now()
		err := c.Next()
		log.Info().
			Str("request_id", id).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("Request")
		return err
	}
}

func recoverer() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Path()).Msg("Panic recovered")
				err = writeError(c, fiber.StatusInternalServerError, "internal error")
			}
		}()
		return c.Next()
	}
}
