package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/config"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

func TestSpeak_ForwardsLocale(t *testing.T) {
	var got ttsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/ogg")
		_, _ = w.Write([]byte("OggS"))
	}))
	defer srv.Close()

	svc := NewService(config.SpeechConfig{Enabled: true, URL: srv.URL, Timeout: time.Second}, validator.New(), nil)
	audio, err := svc.Speak(context.Background(), &Request{Text: " வணக்கம் ", Language: "ta"})
	require.NoError(t, err)
	require.NotNil(t, audio)
	assert.Equal(t, "audio/ogg", audio.ContentType)
	assert.Equal(t, []byte("OggS"), audio.Data)
	assert.Equal(t, "ta-IN", got.Locale)
	assert.Equal(t, "வணக்கம்", got.Text)
}

func TestSpeak_DisabledReturnsNoAudio(t *testing.T) {
	svc := NewService(config.SpeechConfig{Enabled: false, URL: "http://unused"}, validator.New(), nil)
	audio, err := svc.Speak(context.Background(), &Request{Text: "hello"})
	assert.NoError(t, err)
	assert.Nil(t, audio)
}

func TestSpeak_FailuresAreSwallowedAndTripBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewService(config.SpeechConfig{Enabled: true, URL: srv.URL, Timeout: time.Second}, validator.New(), nil)
	for i := 0; i < 5; i++ {
		audio, err := svc.Speak(context.Background(), &Request{Text: "hello"})
		assert.NoError(t, err)
		assert.Nil(t, audio)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestSpeak_InvalidRequest(t *testing.T) {
	svc := NewService(config.SpeechConfig{}, validator.New(), nil)
	_, err := svc.Speak(context.Background(), &Request{Text: "   "})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
}
