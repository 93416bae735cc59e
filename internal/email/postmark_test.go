package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/gym_site/internal/models"
)

var testMessage = models.ContactMessage{
	Name:    "Sam <script>",
	Email:   "sam@x.com",
	Subject: "Membership",
	Message: "Do you offer student rates?",
}

func TestClient_Configured(t *testing.T) {
	assert.False(t, NewClient("", "from@gym.com", "to@gym.com").Configured())
	assert.False(t, NewClient("tok", "", "to@gym.com").Configured())
	assert.True(t, NewClient("tok", "from@gym.com", "to@gym.com").Configured())
}

func TestSendContactNotification_NotConfigured(t *testing.T) {
	err := NewClient("", "", "").SendContactNotification(context.Background(), testMessage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSendContactNotification_Success(t *testing.T) {
	var got postmarkEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "tok", r.Header.Get("X-Postmark-Server-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("tok", "from@gym.com", "staff@gym.com", WithAPIURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, c.SendContactNotification(context.Background(), testMessage))

	assert.Equal(t, "from@gym.com", got.From)
	assert.Equal(t, "staff@gym.com", got.To)
	assert.Equal(t, "sam@x.com", got.ReplyTo)
	assert.Equal(t, "New contact message: Membership", got.Subject)
	assert.Contains(t, got.TextBody, "student rates")
	assert.Contains(t, got.HtmlBody, "Sam &lt;script&gt;")
}

func TestSendContactNotification_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient("tok", "from@gym.com", "staff@gym.com", WithAPIURL(srv.URL))
	err := c.SendContactNotification(context.Background(), testMessage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
}
