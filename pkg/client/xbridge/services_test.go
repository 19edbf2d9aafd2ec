package xbridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceFactories(t *testing.T) {
	// 每个注册的服务类型必须构造出自报一致类型的句柄
	tr := newTransport("https://ws.example.org", http.DefaultClient, nil)
	for serviceType, factory := range serviceFactories {
		svc := factory(tr)
		if svc.Type() != serviceType {
			t.Errorf("factory for %q built a %q handle", serviceType, svc.Type())
		}
	}
}

func TestAuthenticationService_SignIn(t *testing.T) {
	server := newBridgeServer(t)
	p := testProvider(t, server.URL(), WithLogger(quietLogger()))
	ctx := context.Background()

	t.Run("session decoded with raw payload", func(t *testing.T) {
		sess, err := p.Authentication().SignIn(ctx, SignInRequest{Study: "s", Email: "e@x.y", Password: "pw"})
		require.NoError(t, err)

		assert.True(t, sess.Valid())
		assert.Equal(t, "account-1", sess.ID)
		assert.True(t, sess.Authenticated)
		assert.False(t, sess.ObtainedAt.IsZero())

		// 原始负载保留给上层
		var payload map[string]any
		require.NoError(t, json.Unmarshal(sess.Raw, &payload))
		assert.Equal(t, sess.Token, payload["sessionToken"])
	})

	t.Run("sign-in request shape", func(t *testing.T) {
		reqs := server.requestsTo(pathSignIn)
		require.NotEmpty(t, reqs)

		var body map[string]string
		require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
		assert.Equal(t, "s", body["study"])
		assert.Equal(t, "e@x.y", body["email"])
		assert.Equal(t, "pw", body["password"])
	})

	t.Run("sign-in does not carry a session", func(t *testing.T) {
		reqs := server.requestsTo(pathSignIn)
		require.NotEmpty(t, reqs)
		assert.Empty(t, reqs[0].Authorization)
	})
}

func TestDomainServices(t *testing.T) {
	server := newBridgeServer(t)
	p := testProvider(t, server.URL(), WithLogger(quietLogger()))
	cred := testCredential(t)
	ctx := context.Background()

	t.Run("studies", func(t *testing.T) {
		svc, err := As[*StudyService](p.ClientFor(ServiceStudies, cred))
		require.NoError(t, err)

		_, err = svc.List(ctx)
		require.NoError(t, err)

		_, err = svc.Get(ctx, "study-1")
		require.NoError(t, err)
		reqs := server.requestsTo(pathStudies + "/study-1")
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodGet, reqs[0].Method)

		_, err = svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("schedules", func(t *testing.T) {
		svc, err := As[*ScheduleService](p.ClientFor(ServiceSchedules, cred))
		require.NoError(t, err)
		_, err = svc.Timeline(ctx)
		require.NoError(t, err)
	})

	t.Run("uploads", func(t *testing.T) {
		svc, err := As[*UploadService](p.ClientFor(ServiceUploads, cred))
		require.NoError(t, err)

		_, err = svc.Request(ctx, map[string]any{"name": "data.zip", "contentLength": 1024})
		require.NoError(t, err)

		require.NoError(t, svc.Complete(ctx, "upload-9"))
		reqs := server.requestsTo(pathUploads + "/upload-9/complete")
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodPost, reqs[0].Method)

		assert.ErrorIs(t, svc.Complete(ctx, ""), ErrInvalidConfiguration)
	})

	t.Run("surveys", func(t *testing.T) {
		svc, err := As[*SurveyService](p.ClientFor(ServiceSurveys, cred))
		require.NoError(t, err)

		_, err = svc.List(ctx)
		require.NoError(t, err)
		_, err = svc.Get(ctx, "guid-1")
		require.NoError(t, err)
		_, err = svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("participants not found classified", func(t *testing.T) {
		server.protectedHandler = func(w http.ResponseWriter, r *http.Request) {
			writeAPIError(w, http.StatusNotFound, "account withdrawn", nil)
		}
		t.Cleanup(func() { server.protectedHandler = nil })

		svc, err := As[*ParticipantService](p.ClientFor(ServiceParticipants, cred))
		require.NoError(t, err)
		_, err = svc.Self(ctx)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, expected ErrNotFound", err)
		}
	})
}
