// Package speech forwards read-aloud requests to an external text-to-speech
// endpoint. Speech is best effort: when it is disabled, failing, or tripped,
// callers get no audio and carry on.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/health-navigator/internal/config"
	"github.com/jwalitptl/health-navigator/internal/i18n"
	"github.com/jwalitptl/health-navigator/pkg/circuitbreaker"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

type Request struct {
	Text     string `json:"text" validate:"required,max=2000"`
	Language string `json:"language" validate:"omitempty,max=16"`
}

type Audio struct {
	ContentType string
	Data        []byte
}

type ttsRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

type Service struct {
	enabled   bool
	url       string
	http      *resty.Client
	breaker   *circuitbreaker.CircuitBreaker
	validator validator.Validator
	metrics   *metrics.Metrics
}

func NewService(cfg config.SpeechConfig, v validator.Validator, m *metrics.Metrics) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		enabled: cfg.Enabled && cfg.URL != "",
		url:     cfg.URL,
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "speech",
			MaxFailures: 3,
			Timeout:     30 * time.Second,
		}),
		validator: v,
		metrics:   m,
	}
}

// Speak returns synthesized audio, or nil when no audio is available.
// Only an invalid request is an error.
func (s *Service) Speak(ctx context.Context, req *Request) (*Audio, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.AsAppError(err)
	}
	if !s.enabled {
		s.observe("disabled")
		return nil, nil
	}

	var audio *Audio
	err := s.breaker.Execute(func() error {
		a, err := s.synthesize(ctx, req)
		audio = a
		return err
	})
	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		s.observe("rejected")
		return nil, nil
	case err != nil:
		s.observe("failed")
		log.Warn().Err(err).Msg("speech synthesis failed")
		return nil, nil
	}
	s.observe("ok")
	return audio, nil
}

func (s *Service) synthesize(ctx context.Context, req *Request) (*Audio, error) {
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(ttsRequest{Text: req.Text, Locale: i18n.SpeechLocale(req.Language)}).
		Post(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to call speech endpoint: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("speech endpoint returned %d", resp.StatusCode())
	}
	if len(resp.Body()) == 0 {
		return nil, errors.New("speech endpoint returned no audio")
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return &Audio{ContentType: contentType, Data: resp.Body()}, nil
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.SpeechRequests.WithLabelValues(outcome).Inc()
	}
}
