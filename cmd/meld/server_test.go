package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/meld/internal/meld"
	"github.com/23skdu/meld/internal/text"
)

type mockTranslator struct {
	mock.Mock
}

func (m *mockTranslator) Translate(ctx context.Context, s, lang string) (string, error) {
	args := m.Called(ctx, s, lang)
	return args.String(0), args.Error(1)
}

func postMeld(t *testing.T, srv *Server, target string, req MeldRequest) *httptest.ResponseRecorder {
	t.Helper()
	data, err := cbor.Marshal(req)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, r)
	return rr
}

func TestServer_Meld(t *testing.T) {
	mt := &mockTranslator{}
	srv := NewServer(mt, text.NewTruecaser("iPhone"), text.Config{}, 1000)

	t.Run("Example", func(t *testing.T) {
		rr := postMeld(t, srv, "/meld", MeldRequest{
			Source:     []string{"Esto es una prueba"},
			Reference:  []string{"This is a test"},
			Hypotheses: [][]string{{"This is a test"}, {"That was a dog"}, {"This is a test"}},
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "application/cbor", rr.Header().Get("Content-Type"))

		var got []meld.Sentence
		require.NoError(t, cbor.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.True(t, got[0].Hypotheses[0].Match)
		assert.False(t, got[0].Hypotheses[1].Match)
		assert.True(t, got[0].Hypotheses[2].Match)
	})

	t.Run("TruecaseAndTranslate", func(t *testing.T) {
		mt.On("Translate", mock.Anything, "mi iPhone", "en").Return("my iphone", nil).Once()
		rr := postMeld(t, srv, "/meld", MeldRequest{
			Source:     []string{"mi iphone"},
			Reference:  []string{"my iPhone"},
			Hypotheses: [][]string{{"my IPHONE"}},
			Translate:  "en",
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var got []meld.Sentence
		require.NoError(t, cbor.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got[0].Hypotheses, 2)
		assert.Equal(t, "my iPhone", got[0].Hypotheses[0].Text)
		assert.True(t, got[0].Hypotheses[0].Match)
		assert.Equal(t, "my iphone", got[0].Hypotheses[1].Text, "service output is not truecased")
		assert.False(t, got[0].Hypotheses[1].Match)
		mt.AssertExpectations(t)
	})

	t.Run("Head", func(t *testing.T) {
		lines := []string{"a", "b", "c"}
		rr := postMeld(t, srv, "/meld", MeldRequest{
			Source: lines, Reference: lines, Hypotheses: [][]string{lines}, Head: 2,
		})
		require.Equal(t, http.StatusOK, rr.Code)
		var got []meld.Sentence
		require.NoError(t, cbor.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("Arrow", func(t *testing.T) {
		rr := postMeld(t, srv, "/meld?format=arrow", MeldRequest{
			Source:     []string{"a", "b"},
			Reference:  []string{"x", "y"},
			Hypotheses: [][]string{{"x", "y"}},
		})
		require.Equal(t, http.StatusOK, rr.Code)

		reader, err := ipc.NewReader(rr.Body)
		require.NoError(t, err)
		defer reader.Release()
		require.True(t, reader.Next())
		assert.Equal(t, int64(2), reader.Record().NumRows())
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		rr := postMeld(t, srv, "/meld", MeldRequest{
			Source:     []string{"a", "b"},
			Reference:  []string{"x"},
			Hypotheses: [][]string{{"x", "y"}},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "reference has 1 lines")
	})

	t.Run("InvalidLanguage", func(t *testing.T) {
		rr := postMeld(t, srv, "/meld", MeldRequest{
			Source: []string{"a"}, Reference: []string{"a"}, Translate: "not a language",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("TranslationFailure", func(t *testing.T) {
		mt.On("Translate", mock.Anything, "boom", "fr").Return("", errors.New("unreachable")).Once()
		rr := postMeld(t, srv, "/meld", MeldRequest{
			Source: []string{"boom"}, Reference: []string{"x"}, Translate: "fr",
		})
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("BadBody", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/meld", bytes.NewReader([]byte{0xff, 0x00}))
		rr := httptest.NewRecorder()
		srv.routes().ServeHTTP(rr, r)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/meld", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})

	t.Run("TooLarge", func(t *testing.T) {
		small := NewServer(mt, nil, text.Config{}, 2)
		lines := []string{"a", "b", "c"}
		rr := postMeld(t, small, "/meld", MeldRequest{Source: lines, Reference: lines})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("BodyTooLarge", func(t *testing.T) {
		capped := NewServer(mt, nil, text.Config{}, 1000)
		capped.maxBody = 16
		long := strings.Repeat("word ", 20)
		rr := postMeld(t, capped, "/meld", MeldRequest{
			Source: []string{long}, Reference: []string{long},
		})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Contains(t, rr.Body.String(), "body too large")
	})
}

func boolPtr(b bool) *bool { return &b }

func TestServer_DefaultTransforms(t *testing.T) {
	srv := NewServer(nil, nil, text.Config{Lowercase: true, StripBPE: true, Unescape: true}, 10)
	base := MeldRequest{
		Source:     []string{"x"},
		Reference:  []string{"Don&apos;t test"},
		Hypotheses: [][]string{{"don't te@@ st"}},
	}

	t.Run("Inherited", func(t *testing.T) {
		rr := postMeld(t, srv, "/meld", base)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var got []meld.Sentence
		require.NoError(t, cbor.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "don't test", got[0].Reference)
		assert.True(t, got[0].Hypotheses[0].Match)
	})

	t.Run("Overridden", func(t *testing.T) {
		req := base
		req.Lowercase = boolPtr(false)
		rr := postMeld(t, srv, "/meld", req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var got []meld.Sentence
		require.NoError(t, cbor.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Don't test", got[0].Reference)
		assert.False(t, got[0].Hypotheses[0].Match)
	})

	t.Run("Normalize", func(t *testing.T) {
		rr := postMeld(t, srv, "/meld", MeldRequest{
			Source:     []string{"x"},
			Reference:  []string{"caf\u00e9"},
			Hypotheses: [][]string{{"cafe\u0301"}},
			Normalize:  boolPtr(true),
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var got []meld.Sentence
		require.NoError(t, cbor.Unmarshal(rr.Body.Bytes(), &got))
		assert.True(t, got[0].Hypotheses[0].Match)
	})
}

func TestServer_Health(t *testing.T) {
	srv := NewServer(nil, nil, text.Config{}, 1)
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestListFlag(t *testing.T) {
	var l listFlag
	require.NoError(t, l.Set("a.txt, b.txt"))
	require.NoError(t, l.Set("c.txt"))
	assert.Equal(t, listFlag{"a.txt", "b.txt", "c.txt"}, l)
	assert.Equal(t, "a.txt,b.txt,c.txt", l.String())
}
