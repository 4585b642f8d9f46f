package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = Message{
	Kind: "recap",
	Date: "2026-03-10",
	Text: "🌙 **RÉCAP DE LA JOURNÉE**",
	Sent: time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Notify(context.Background(), sample))
	assert.Equal(t, sample.Text+"\n\n", buf.String())
}

func TestMulti(t *testing.T) {
	var got []string
	record := Func(func(_ context.Context, m Message) error {
		got = append(got, m.Kind)
		return nil
	})
	failing := Func(func(context.Context, Message) error { return errors.New("down") })

	err := Multi{record, failing, record, Nop{}}.Notify(context.Background(), sample)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, []string{"recap", "recap"}, got, "a failing sink does not stop the others")

	assert.NoError(t, Multi{}.Notify(context.Background(), sample))
}

func TestMessageJSON(t *testing.T) {
	data, err := sample.ToJSON()
	require.NoError(t, err)

	back, err := MessageFromJSON(data)
	require.NoError(t, err)
	assert.True(t, sample.Sent.Equal(back.Sent))
	assert.Equal(t, sample.Text, back.Text)

	_, err = MessageFromJSON([]byte("{"))
	assert.Error(t, err)
}

type fakeChannel struct {
	exchange, key string
	msg           amqp091.Publishing
	err           error
	closed        bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Notify(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "nutri", routingKey: "nutri.reminder"}

	require.NoError(t, p.Notify(context.Background(), sample))
	assert.Equal(t, "nutri", ch.exchange)
	assert.Equal(t, "nutri.reminder.recap", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)

	decoded, err := MessageFromJSON(ch.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", decoded.Date)

	ch.err = errors.New("channel closed")
	assert.ErrorContains(t, p.Notify(context.Background(), sample), "publish message")

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
