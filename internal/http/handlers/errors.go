package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/api"
	applog "bazaar/internal/log"
	"bazaar/internal/poll"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

// PageError is rendered as a full error page by ErrorHandler. Retry, when
// set, is offered as a link so the user can re-issue the failed load.
type PageError struct {
	Status  int
	Message string
	Retry   string
	Err     error
}

func (e *PageError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PageError) Unwrap() error { return e.Err }

// loadFailed maps a failed initial load to the error the ErrorHandler
// renders. Backend messages are shown verbatim; fallback covers the rest.
func loadFailed(c *fiber.Ctx, err error, fallback string) error {
	var ae *api.Error
	var pe *PageError
	switch {
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, services.ErrLoginRequired), errors.As(err, &pe):
		return err
	case errors.Is(err, services.ErrForbidden):
		return &PageError{Status: fiber.StatusForbidden, Message: "Access denied", Err: err}
	case errors.Is(err, services.ErrInvalidID):
		return &PageError{Status: fiber.StatusNotFound, Message: fallback, Err: err}
	case errors.As(err, &ae) && ae.Status < 500:
		return &PageError{Status: ae.Status, Message: api.UserMessage(err, fallback), Err: err}
	}
	retry := ""
	if c.Method() == fiber.MethodGet {
		retry = c.OriginalURL()
	}
	return &PageError{Status: fiber.StatusBadGateway, Message: api.UserMessage(err, fallback), Retry: retry, Err: err}
}

// ErrorHandler is the app-wide error surface. A rejected bearer token ends
// the browser session and sends the user to the login page.
func ErrorHandler(auth *services.AuthService) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			if sid := c.Cookies("sid"); sid != "" && auth != nil {
				_ = auth.Logout(sid)
			}
			clearSID(c)
			applog.Security(c, "auth.session.rejected", nil)
			return c.Redirect("/login?notice=session-lost")
		case errors.Is(err, services.ErrLoginRequired):
			return c.Redirect("/login")
		}

		status := fiber.StatusInternalServerError
		msg := "Something went wrong. Please try again."
		retry := ""
		var pe *PageError
		var fe *fiber.Error
		switch {
		case errors.As(err, &pe):
			status, msg, retry = pe.Status, pe.Message, pe.Retry
		case errors.As(err, &fe) && fe.Code < 500:
			status = fe.Code
			msg = http.StatusText(fe.Code)
			if fe.Code == fiber.StatusNotFound {
				msg = "Page not found"
			}
		}
		if status >= 500 {
			applog.Error(c, "server.error", err, nil)
		}
		c.Status(status)
		if rerr := render(c, "error", fiber.Map{"Message": msg, "Retry": retry}); rerr != nil {
			return c.Status(status).SendString(msg)
		}
		return nil
	}
}

func clearSID(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

// messageFor turns an action failure into the text shown to the user.
func messageFor(err error, fallback string) string {
	var fe *services.FieldError
	var se *services.InsufficientStockError
	switch {
	case errors.As(err, &fe):
		return fe.Message
	case errors.As(err, &se):
		return fmt.Sprintf("Not enough stock for %s: %d requested, %d available.", se.Name, se.Requested, se.Available)
	case errors.Is(err, poll.ErrEmptyMessage):
		return "Message cannot be empty."
	case errors.Is(err, poll.ErrMessageTooLong):
		return fmt.Sprintf("Messages are limited to %d characters.", validate.MaxMessageLen)
	case errors.Is(err, services.ErrEmptyCart), errors.Is(err, services.ErrAddressRequired),
		errors.Is(err, services.ErrInvalidCard), errors.Is(err, services.ErrInvalidQuery),
		errors.Is(err, services.ErrInvalidID), errors.Is(err, services.ErrForbidden):
		msg := err.Error()
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	}
	return api.UserMessage(err, fallback)
}

// actionFailed handles a failed form action: session errors go to the
// ErrorHandler, everything else is flashed on the page at to.
func actionFailed(c *fiber.Ctx, action string, err error, to, fallback string) error {
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, services.ErrLoginRequired) {
		return err
	}
	var fe *services.FieldError
	var ae *api.Error
	switch {
	case errors.As(err, &fe), errors.Is(err, services.ErrInvalidID), errors.Is(err, services.ErrForbidden):
		applog.Security(c, action+".rejected", map[string]any{"reason": err.Error()})
	case errors.As(err, &ae) && ae.Status < 500:
		applog.Info(c, action+".declined", map[string]any{"status": ae.Status, "message": ae.Message})
	default:
		applog.Error(c, action+".fail", err, nil)
	}
	return back(c, to, messageFor(err, fallback))
}

func isClientError(err error) bool {
	var fe *services.FieldError
	var ae *api.Error
	switch {
	case errors.As(err, &fe), errors.Is(err, poll.ErrEmptyMessage), errors.Is(err, poll.ErrMessageTooLong),
		errors.Is(err, services.ErrInvalidID), errors.Is(err, services.ErrForbidden):
		return true
	case errors.As(err, &ae):
		return ae.Status < 500
	}
	return false
}
