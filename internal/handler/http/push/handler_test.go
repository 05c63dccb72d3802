package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conquest-backend/pkg/push"
)

type memTokenRepo struct {
	tokens map[string]*push.Token
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]*push.Token)}
}

func (r *memTokenRepo) Store(ctx context.Context, token *push.Token) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *memTokenRepo) GetByParticipantID(ctx context.Context, participantID uuid.UUID) ([]*push.Token, error) {
	var out []*push.Token
	for _, t := range r.tokens {
		if t.ParticipantID == participantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTokenRepo) GetByToken(ctx context.Context, token string) (*push.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, fmt.Errorf("token not found")
	}
	return t, nil
}

func (r *memTokenRepo) Update(ctx context.Context, token *push.Token) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *memTokenRepo) DeleteByParticipantID(ctx context.Context, participantID uuid.UUID) error {
	for key, t := range r.tokens {
		if t.ParticipantID == participantID {
			delete(r.tokens, key)
		}
	}
	return nil
}

func (r *memTokenRepo) MarkInactive(ctx context.Context, tokenStr string) error {
	if t, ok := r.tokens[tokenStr]; ok {
		t.Active = false
	}
	return nil
}

func setupRouter(repo *memTokenRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(push.NewService(&push.MockProvider{}, repo))

	r := gin.New()
	r.POST("/v1/push/tokens", handler.RegisterToken)
	r.DELETE("/v1/push/tokens/:participant_id", handler.UnregisterAllTokens)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterTokenStoresActiveToken(t *testing.T) {
	repo := newMemTokenRepo()
	r := setupRouter(repo)

	participantID := uuid.New()
	w := postJSON(t, r, "/v1/push/tokens", gin.H{
		"participant_id": participantID,
		"token":          "device-token-1",
		"type":           "fcm",
		"platform":       "android",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := repo.GetByToken(context.Background(), "device-token-1")
	require.NoError(t, err)
	assert.Equal(t, participantID, stored.ParticipantID)
	assert.Equal(t, push.TokenTypeFCM, stored.Type)
	assert.True(t, stored.Active)
}

func TestRegisterTokenValidation(t *testing.T) {
	r := setupRouter(newMemTokenRepo())

	// Missing token
	w := postJSON(t, r, "/v1/push/tokens", gin.H{
		"participant_id": uuid.New(),
		"type":           "fcm",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unsupported type
	w = postJSON(t, r, "/v1/push/tokens", gin.H{
		"participant_id": uuid.New(),
		"token":          "tok",
		"type":           "web",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unsupported platform
	w = postJSON(t, r, "/v1/push/tokens", gin.H{
		"participant_id": uuid.New(),
		"token":          "tok",
		"type":           "apns",
		"platform":       "windows",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnregisterAllTokens(t *testing.T) {
	repo := newMemTokenRepo()
	r := setupRouter(repo)

	participantID := uuid.New()
	repo.Store(context.Background(), &push.Token{
		ParticipantID: participantID, Token: "tok-a", Type: push.TokenTypeFCM, Active: true,
	})
	repo.Store(context.Background(), &push.Token{
		ParticipantID: participantID, Token: "tok-b", Type: push.TokenTypeAPNs, Active: true,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/push/tokens/"+participantID.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	remaining, err := repo.GetByParticipantID(context.Background(), participantID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestUnregisterAllTokensInvalidID(t *testing.T) {
	r := setupRouter(newMemTokenRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/push/tokens/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
