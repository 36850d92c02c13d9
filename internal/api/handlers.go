package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/impactwatch/internal/models"
	"github.com/spacesedan/impactwatch/internal/sentiment"
)

func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, models.StatusResponse{Status: STATUS_ONLINE})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:         "ok",
		ModelsLoaded:   true,
		VocabularySize: s.analyzer.VocabularySize(),
		CacheEnabled:   s.analyzer.CacheEnabled(),
	})
}

func (s *Server) analyze(c echo.Context) error {
	text, err := bindText(c)
	if err != nil {
		return err
	}

	res, err := s.analyzer.Analyze(c.Request().Context(), text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) polarity(c echo.Context) error {
	text, err := bindText(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sentiment.Polarity(text))
}

// bindText decodes {"text": string}. Any string is accepted, including "".
// The body is decoded regardless of Content-Type, must hold exactly one JSON
// object, and the field name is matched exactly.
func bindText(c echo.Context) (string, error) {
	dec := json.NewDecoder(c.Request().Body)

	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return "", decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body: unexpected data after the JSON object")
		}
		return "", decodeError(err)
	}

	var req models.AnalysisRequest
	if raw, ok := fields["text"]; ok {
		if err := json.Unmarshal(raw, &req.Text); err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, `field "text" must be a string`)
		}
	}
	if req.Text == nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, `missing required field "text"`)
	}
	return *req.Text, nil
}

func decodeError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
		return echo.ErrStatusRequestEntityTooLarge
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body: "+err.Error())
}
