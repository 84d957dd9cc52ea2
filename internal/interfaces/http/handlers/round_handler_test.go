package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/usecases"
)

type roundServiceStub struct {
	generateFn func(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID, input *entities.GenerateRoundsInput) ([]*entities.Round, error)
	listFn     func(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID) ([]*entities.Round, error)
	reorderFn  func(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID, input *entities.ReorderWinnersInput) ([]*entities.Round, error)
	forceFn    func(ctx context.Context, actor usecases.Actor, roundID uuid.UUID, input *entities.ForceCompleteRoundInput) (*entities.Round, error)
}

func (s *roundServiceStub) GenerateRounds(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID, input *entities.GenerateRoundsInput) ([]*entities.Round, error) {
	return s.generateFn(ctx, actor, tontineID, input)
}
func (s *roundServiceStub) ListRounds(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID) ([]*entities.Round, error) {
	return s.listFn(ctx, actor, tontineID)
}
func (s *roundServiceStub) ReorderWinners(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID, input *entities.ReorderWinnersInput) ([]*entities.Round, error) {
	return s.reorderFn(ctx, actor, tontineID, input)
}
func (s *roundServiceStub) ForceCompleteRound(ctx context.Context, actor usecases.Actor, roundID uuid.UUID, input *entities.ForceCompleteRoundInput) (*entities.Round, error) {
	return s.forceFn(ctx, actor, roundID, input)
}

func roundsFor(tontineID uuid.UUID, n int) []*entities.Round {
	out := make([]*entities.Round, n)
	for i := range out {
		out[i] = &entities.Round{ID: uuid.New(), TontineID: tontineID, Number: i + 1}
	}
	return out
}

func TestRoundHandler_GenerateRounds(t *testing.T) {
	tontineID := uuid.New()
	var gotCount int
	svc := &roundServiceStub{
		generateFn: func(_ context.Context, _ usecases.Actor, id uuid.UUID, input *entities.GenerateRoundsInput) ([]*entities.Round, error) {
			gotCount = input.RoundCount
			if input.RoundCount == 99 {
				return nil, domainerrors.StateConflict("rounds already generated")
			}
			return roundsFor(id, 3), nil
		},
	}
	r := newTestRouter()
	r.POST("/tontines/:id/rounds/generate", asAccount(uuid.New(), entities.AccountRoleUser), NewRoundHandler(svc).GenerateRounds)
	path := "/tontines/" + tontineID.String() + "/rounds/generate"

	w := doRequest(r, http.MethodPost, path, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Zero(t, gotCount)
	assert.Len(t, decodeBody(t, w)["rounds"], 3)

	w = doRequest(r, http.MethodPost, path, `{"roundCount":4}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 4, gotCount)

	assertErrorCode(t, doRequest(r, http.MethodPost, path, `{"roundCount":1}`), http.StatusBadRequest, domainerrors.CodeValidation)
	assertErrorCode(t, doRequest(r, http.MethodPost, path, `{"roundCount":100000000}`), http.StatusBadRequest, domainerrors.CodeValidation)
	assert.Equal(t, 4, gotCount)
	assertErrorCode(t, doRequest(r, http.MethodPost, path, `{"roundCount":99}`), http.StatusConflict, domainerrors.CodeStateConflict)
}

func TestRoundHandler_ListAndReorder(t *testing.T) {
	tontineID := uuid.New()
	var gotIDs []string
	svc := &roundServiceStub{
		listFn: func(_ context.Context, _ usecases.Actor, id uuid.UUID) ([]*entities.Round, error) {
			return roundsFor(id, 2), nil
		},
		reorderFn: func(_ context.Context, _ usecases.Actor, id uuid.UUID, input *entities.ReorderWinnersInput) ([]*entities.Round, error) {
			gotIDs = input.ParticipationIDs
			if len(input.ParticipationIDs) == 1 {
				return nil, domainerrors.Validation("order must list every remaining winner")
			}
			return roundsFor(id, 2), nil
		},
	}
	h := NewRoundHandler(svc)
	r := newTestRouter()
	auth := asAccount(uuid.New(), entities.AccountRoleUser)
	r.GET("/tontines/:id/rounds", auth, h.ListRounds)
	r.PUT("/tontines/:id/winners/order", auth, h.ReorderWinners)

	w := doRequest(r, http.MethodGet, "/tontines/"+tontineID.String()+"/rounds", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["rounds"], 2)

	a, b := uuid.NewString(), uuid.NewString()
	w = doRequest(r, http.MethodPut, "/tontines/"+tontineID.String()+"/winners/order", `{"participationIds":["`+a+`","`+b+`"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{a, b}, gotIDs)

	assertErrorCode(t, doRequest(r, http.MethodPut, "/tontines/"+tontineID.String()+"/winners/order", `{"participationIds":["`+a+`"]}`), http.StatusBadRequest, domainerrors.CodeValidation)
	assertErrorCode(t, doRequest(r, http.MethodPut, "/tontines/"+tontineID.String()+"/winners/order", `{"participationIds":[]}`), http.StatusBadRequest, domainerrors.CodeValidation)
}

func TestRoundHandler_ForceCompleteRound(t *testing.T) {
	roundID := uuid.New()
	svc := &roundServiceStub{
		forceFn: func(_ context.Context, actor usecases.Actor, id uuid.UUID, input *entities.ForceCompleteRoundInput) (*entities.Round, error) {
			if !actor.IsAdmin() {
				return nil, domainerrors.Forbidden("admin only")
			}
			return &entities.Round{ID: id, Status: entities.RoundStatusCompleted}, nil
		},
	}
	h := NewRoundHandler(svc)
	r := newTestRouter()
	r.POST("/admin/rounds/:id/force-complete", asAccount(uuid.New(), entities.AccountRoleAdmin), h.ForceCompleteRound)
	r.POST("/user/rounds/:id/force-complete", asAccount(uuid.New(), entities.AccountRoleUser), h.ForceCompleteRound)

	w := doRequest(r, http.MethodPost, "/admin/rounds/"+roundID.String()+"/force-complete", `{"reason":"winner paid in cash"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMPLETED", decodeBody(t, w)["round"].(map[string]any)["status"])

	assertErrorCode(t, doRequest(r, http.MethodPost, "/admin/rounds/"+roundID.String()+"/force-complete", `{}`), http.StatusBadRequest, domainerrors.CodeValidation)
	assertErrorCode(t, doRequest(r, http.MethodPost, "/user/rounds/"+roundID.String()+"/force-complete", `{"reason":"please"}`), http.StatusForbidden, domainerrors.CodeForbidden)
}
