package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

func TestVerifier_IssueAndVerify(t *testing.T) {
	v := NewVerifier(testSecret, "vocabuddy")
	in := Identity{UserID: "u-1", Name: "Ana", Email: "ana@example.com", Picture: "https://img/ana.png"}

	token, err := v.Issue(in, time.Hour)
	require.NoError(t, err)

	out, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestVerifier_RejectsExpired(t *testing.T) {
	v := NewVerifier(testSecret, "vocabuddy")
	token, err := v.Issue(Identity{UserID: "u-1"}, time.Minute)
	require.NoError(t, err)

	v.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_RejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("another-secret-value", "vocabuddy").Issue(Identity{UserID: "u-1"}, time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, "vocabuddy").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_RejectsWrongIssuer(t *testing.T) {
	token, err := NewVerifier(testSecret, "someone-else").Issue(Identity{UserID: "u-1"}, time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, "vocabuddy").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_RejectsMissingSubject(t *testing.T) {
	v := NewVerifier(testSecret, "vocabuddy")
	token, err := v.Issue(Identity{}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "u-1",
		Issuer:    "vocabuddy",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, "vocabuddy").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "bearer   abc.def ", want: "abc.def"},
		{header: "", wantErr: true},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvents_FanOut(t *testing.T) {
	events := NewEvents()
	a, cancelA := events.Subscribe(1)
	b, cancelB := events.Subscribe(1)
	defer cancelB()

	ev := Event{Kind: SignedIn, Identity: Identity{UserID: "u-1"}}
	require.NoError(t, events.Publish(context.Background(), ev))
	assert.Equal(t, ev, <-a)
	assert.Equal(t, ev, <-b)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)

	require.NoError(t, events.Publish(context.Background(), Event{Kind: SignedOut}))
	assert.Equal(t, SignedOut, (<-b).Kind)
}

func TestEvents_PublishHonorsContext(t *testing.T) {
	events := NewEvents()
	_, cancel := events.Subscribe(0)
	defer cancel()

	ctx, stop := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer stop()
	err := events.Publish(ctx, Event{Kind: SignedOut})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEvents_CancelDoesNotWaitForBlockedPublish(t *testing.T) {
	events := NewEvents()
	_, cancel := events.Subscribe(0)

	published := make(chan error, 1)
	go func() {
		published <- events.Publish(context.Background(), Event{Kind: SignedOut})
	}()
	time.Sleep(10 * time.Millisecond)

	cancelled := make(chan struct{})
	go func() {
		cancel()
		close(cancelled)
	}()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("cancel blocked behind publish")
	}
	select {
	case err := <-published:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish did not return after subscriber left")
	}
}
