package slackweb_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-kit/marquee/pkg/adapters/slackweb"
)

type recordedCall struct {
	path string
	auth string
	body map[string]any
}

func newTestServer(t *testing.T, reply string) (*slackweb.Client, *[]recordedCall) {
	t.Helper()
	calls := &[]recordedCall{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		*calls = append(*calls, recordedCall{
			path: r.URL.Path,
			auth: r.Header.Get("Authorization"),
			body: body,
		})
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	return slackweb.New("xoxb-test", slackweb.WithBaseURL(srv.URL)), calls
}

func TestClient_PostMessage(t *testing.T) {
	client, calls := newTestServer(t, `{"ok":true,"channel":"C1","ts":"1000.0001"}`)

	doc := json.RawMessage(`{"text":"hello","blocks":[]}`)
	ref, err := client.PostMessage(context.Background(), doc, "C1")
	require.NoError(t, err)
	assert.Equal(t, "C1", ref.ChannelID)
	assert.Equal(t, "1000.0001", ref.TS)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/chat.postMessage", call.path)
	assert.Equal(t, "Bearer xoxb-test", call.auth)
	assert.Equal(t, "C1", call.body["channel"])
	assert.Equal(t, "hello", call.body["text"])
}

func TestClient_UpdateMessage(t *testing.T) {
	client, calls := newTestServer(t, `{"ok":true}`)

	err := client.UpdateMessage(context.Background(), json.RawMessage(`{"text":"v2"}`), "C1", "1000.0001")
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, "/chat.update", call.path)
	assert.Equal(t, "1000.0001", call.body["ts"])
	assert.Equal(t, "v2", call.body["text"])
}

func TestClient_OpenView(t *testing.T) {
	client, calls := newTestServer(t, `{"ok":true,"view":{"id":"V99"}}`)

	viewID, err := client.OpenView(context.Background(), json.RawMessage(`{"type":"modal"}`), "trigger-1")
	require.NoError(t, err)
	assert.Equal(t, "V99", viewID)

	call := (*calls)[0]
	assert.Equal(t, "/views.open", call.path)
	assert.Equal(t, "trigger-1", call.body["trigger_id"])
	view := call.body["view"].(map[string]any)
	assert.Equal(t, "modal", view["type"])
}

func TestClient_PublishHome(t *testing.T) {
	client, calls := newTestServer(t, `{"ok":true,"view":{"id":"VH7"}}`)

	viewID, err := client.PublishHome(context.Background(), json.RawMessage(`{"type":"home"}`), "U1")
	require.NoError(t, err)
	assert.Equal(t, "VH7", viewID)

	call := (*calls)[0]
	assert.Equal(t, "/views.publish", call.path)
	assert.Equal(t, "U1", call.body["user_id"])
}

func TestClient_PlatformError(t *testing.T) {
	client, _ := newTestServer(t, `{"ok":false,"error":"channel_not_found"}`)

	_, err := client.PostMessage(context.Background(), json.RawMessage(`{"text":"x"}`), "C404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}
