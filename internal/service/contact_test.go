package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContact() ContactRequest {
	return ContactRequest{
		Name:    "Sam",
		Email:   "sam@x.com",
		Subject: "Membership",
		Message: "Do you offer student rates?",
	}
}

func TestContactService_Submit(t *testing.T) {
	n := &fakeNotifier{}
	pub := &recordingPublisher{}
	svc := &ContactService{Repo: newTestRepo(t), Notifier: n, Events: pub}
	ctx := context.Background()

	msg, err := svc.Submit(ctx, validContact())
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)

	require.Len(t, n.sent, 1)
	assert.Equal(t, msg.ID, n.sent[0].ID)
	assert.Equal(t, []string{"contact_submitted"}, pub.types())

	total, items, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Membership", items[0].Subject)
}

func TestContactService_Submit_PersistsWhenEmailFails(t *testing.T) {
	svc := &ContactService{Repo: newTestRepo(t), Notifier: &fakeNotifier{err: errBoom}}
	ctx := context.Background()

	msg, err := svc.Submit(ctx, validContact())
	require.NoError(t, err)
	require.NotNil(t, msg)

	total, items, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, msg.ID, items[0].ID)
}

func TestContactService_Submit_Validation(t *testing.T) {
	svc := &ContactService{Repo: newTestRepo(t)}

	tests := []struct {
		name   string
		mutate func(*ContactRequest)
	}{
		{name: "missing name", mutate: func(r *ContactRequest) { r.Name = "  " }},
		{name: "missing subject", mutate: func(r *ContactRequest) { r.Subject = "" }},
		{name: "bad email", mutate: func(r *ContactRequest) { r.Email = "sam" }},
		{name: "message too long", mutate: func(r *ContactRequest) { r.Message = strings.Repeat("a", maxMessageLen+1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validContact()
			tt.mutate(&req)
			msg, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, msg)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	total, _, err := svc.List(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}
