package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

func TestEnsureUser_BackfillsAndIsIdempotent(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo, 3)

	user, err := svc.EnsureUser(context.Background(), "usr_1", "a@example.com", strPtr("Kim"))
	require.NoError(t, err)
	assert.Equal(t, db_models.PlanFree, user.Plan)
	assert.Equal(t, 3, user.TestsRemaining)

	// A second call returns the existing row untouched, even after the
	// trial counter moved.
	userRepo.get("usr_1").TestsRemaining = 1
	again, err := svc.EnsureUser(context.Background(), "usr_1", "changed@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, again.TestsRemaining)
	assert.Equal(t, "a@example.com", again.Email)
}

func identityBody(eventType, data string) []byte {
	return []byte(`{"type":"` + eventType + `","data":` + data + `}`)
}

func TestHandleIdentityEvent_UserCreated(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo, 3)

	body := identityBody("user.created", `{
		"id": "usr_1",
		"first_name": "길동",
		"last_name": "홍",
		"primary_email_address_id": "em_2",
		"email_addresses": [
			{"id": "em_1", "email_address": "old@example.com"},
			{"id": "em_2", "email_address": "primary@example.com"}
		]
	}`)
	require.NoError(t, svc.HandleIdentityEvent(context.Background(), body))

	u := userRepo.get("usr_1")
	require.NotNil(t, u)
	assert.Equal(t, "primary@example.com", u.Email)
	require.NotNil(t, u.Name)
	assert.Equal(t, "길동 홍", *u.Name)
	assert.Equal(t, 3, u.TestsRemaining)

	// Redelivery does not reset an existing account.
	userRepo.get("usr_1").TestsRemaining = 0
	require.NoError(t, svc.HandleIdentityEvent(context.Background(), body))
	assert.Equal(t, 0, userRepo.get("usr_1").TestsRemaining)
}

func TestHandleIdentityEvent_UserUpdated(t *testing.T) {
	userRepo := newFakeUserRepo(&db_models.User{ID: "usr_1", Email: "old@example.com", Plan: db_models.PlanFree})
	svc := NewUserService(userRepo, 3)

	body := identityBody("user.updated", `{
		"id": "usr_1",
		"first_name": "새이름",
		"primary_email_address_id": "em_1",
		"email_addresses": [{"id": "em_1", "email_address": "new@example.com"}]
	}`)
	require.NoError(t, svc.HandleIdentityEvent(context.Background(), body))

	u := userRepo.get("usr_1")
	assert.Equal(t, "new@example.com", u.Email)
	require.NotNil(t, u.Name)
	assert.Equal(t, "새이름", *u.Name)
}

func TestHandleIdentityEvent_UserDeleted(t *testing.T) {
	userRepo := newFakeUserRepo(&db_models.User{ID: "usr_1", Plan: db_models.PlanFree})
	svc := NewUserService(userRepo, 3)

	require.NoError(t, svc.HandleIdentityEvent(context.Background(), identityBody("user.deleted", `{"id":"usr_1"}`)))
	assert.Nil(t, userRepo.get("usr_1"))
}

func TestHandleIdentityEvent_UnknownTypeIsNoOp(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo, 3)
	require.NoError(t, svc.HandleIdentityEvent(context.Background(), identityBody("session.created", `{"id":"sess_1"}`)))
	assert.Empty(t, userRepo.users)
}

func TestHandleIdentityEvent_MalformedPayload(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), 3)

	err := svc.HandleIdentityEvent(context.Background(), []byte("not json"))
	assert.ErrorIs(t, err, utils.ErrValidation)

	err = svc.HandleIdentityEvent(context.Background(), identityBody("user.created", `{"email_addresses":[]}`))
	assert.ErrorIs(t, err, utils.ErrValidation)
}
