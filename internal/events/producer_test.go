package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	err := p.Publish(context.Background(), TopicUser, "user-1", map[string]any{
		"type":   "user_registered",
		"userID": "user-1",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, TopicUser, msg.Topic)
	assert.Equal(t, []byte("user-1"), msg.Key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "user_registered", body["type"])
}

func TestProducer_Publish_Errors(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}}
	err := p.Publish(context.Background(), TopicUser, "k", map[string]any{"type": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")

	err = p.Publish(context.Background(), TopicUser, "k", map[string]any{"bad": func() {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json.Marshal")
}

type recordingPublisher struct {
	calls int
	err   error
}

func (r *recordingPublisher) Publish(context.Context, string, string, any) error {
	r.calls++
	return r.err
}

func TestEmit_SwallowsErrors(t *testing.T) {
	rp := &recordingPublisher{err: errors.New("nope")}
	Emit(context.Background(), rp, TopicContact, "1", map[string]any{"type": "contact_submitted"})
	assert.Equal(t, 1, rp.calls)

	Emit(context.Background(), nil, TopicContact, "1", map[string]any{"type": "contact_submitted"})
	assert.NoError(t, Noop{}.Publish(context.Background(), TopicContact, "1", nil))
}

func TestNewProducer_WriterConfig(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	t.Cleanup(func() { _ = p.Close() })

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.False(t, w.Async)
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	assert.Less(t, w.BatchTimeout, publishTimeout)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
}
