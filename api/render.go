package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/wricardo/mcp-training/shortestmaze/game/config"
	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/wricardo/mcp-training/shortestmaze/game/service"
	"github.com/wricardo/mcp-training/shortestmaze/game/session"
)

// ErrResponse is the JSON body of every failed request
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	ErrorText     string   `json:"error,omitempty"` // application-level error message
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErrResponse(status int, err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     statusText(status),
		ErrorText:      err.Error(),
	}
}

func statusText(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Invalid request."
	case http.StatusNotFound:
		return "Resource not found."
	case http.StatusConflict:
		return "Resource conflict."
	case http.StatusUnprocessableEntity:
		return "Request cannot be processed."
	case http.StatusInternalServerError:
		return "Internal server error."
	default:
		return "Error."
	}
}

// ErrInvalidRequest reports a malformed request body
func ErrInvalidRequest(err error) render.Renderer {
	return newErrResponse(http.StatusBadRequest, err)
}

// ErrValidation reports field-level validation failures
func ErrValidation(err error, errV []error) render.Renderer {
	resp := newErrResponse(http.StatusBadRequest, err)
	for _, v := range errV {
		resp.ErrValidation = append(resp.ErrValidation, v.Error())
	}
	return resp
}

// ErrService maps an error returned by the game service to an HTTP status
func ErrService(err error) render.Renderer {
	return newErrResponse(serviceStatus(err), err)
}

func serviceStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, config.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, pathfind.ErrInvalidArgument),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, service.ErrConfigUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionAlreadyExists),
		errors.Is(err, engine.ErrSolutionHidden),
		errors.Is(err, engine.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNoRoute):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requestValidator checks bound request bodies and translates failures to English
type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return &requestValidator{validate: validate, trans: trans}
}

// Check returns nil, or a renderer describing every invalid field
func (v *requestValidator) Check(data interface{}) render.Renderer {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrInvalidRequest(err)
	}
	translated := make([]error, 0, len(verrs))
	for _, e := range verrs {
		translated = append(translated, errors.New(e.Translate(v.trans)))
	}
	return ErrValidation(err, translated)
}

// bindOptional decodes an optional JSON body; an empty body leaves data untouched
func bindOptional(r *http.Request, data render.Binder) error {
	err := render.Bind(r, data)
	if errors.Is(err, io.EOF) {
		return data.Bind(r)
	}
	return err
}

// CreateSessionRequest selects the configuration of a new session
type CreateSessionRequest struct {
	ConfigID   string `json:"config_id,omitempty" validate:"omitempty,max=64"`
	ConfigName string `json:"config_name,omitempty" validate:"omitempty,max=64"` // Deprecated, use config_id
}

func (req *CreateSessionRequest) Bind(r *http.Request) error {
	// Support both parameter names, but prefer config_id
	if req.ConfigID == "" {
		req.ConfigID = req.ConfigName
	}
	return nil
}

// MoveRequest asks for a single step
type MoveRequest struct {
	Direction string `json:"direction" validate:"required,max=16"`
	Reset     bool   `json:"reset,omitempty"`
}

func (req *MoveRequest) Bind(r *http.Request) error {
	req.Direction = strings.TrimSpace(req.Direction)
	return nil
}

// BulkMoveRequest asks for a sequence of steps
type BulkMoveRequest struct {
	Moves []string `json:"moves" validate:"required,min=1,dive,required,max=16"`
	Reset bool     `json:"reset,omitempty"`
}

func (req *BulkMoveRequest) Bind(r *http.Request) error {
	for i, move := range req.Moves {
		req.Moves[i] = strings.TrimSpace(move)
	}
	return nil
}

// PathRequest asks for a shortest path on a caller-described grid
type PathRequest service.PathRequest

func (req *PathRequest) Bind(r *http.Request) error {
	if req.Start.Row < 1 || req.Start.Column < 1 || req.Destination.Row < 1 || req.Destination.Column < 1 {
		return fmt.Errorf("start and destination must be 1-based positions")
	}
	return nil
}

// ConfigRequest stores a game configuration. ConfigID names the file and
// defaults to the display name.
type ConfigRequest struct {
	ConfigID string `json:"config_id,omitempty" validate:"omitempty,max=64,excludesall=/\\"`
	engine.GameConfig
}

func (req *ConfigRequest) Bind(r *http.Request) error {
	if req.Name == "" {
		return fmt.Errorf("config name is required")
	}
	if req.ConfigID == "" {
		req.ConfigID = req.Name
	}
	return nil
}
