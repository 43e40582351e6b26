package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfdestaques/internal/config"
	"rfdestaques/internal/messaging"
	"rfdestaques/internal/presentation"
	"rfdestaques/internal/shared/testutil"
)

type recordingSender struct {
	mu     sync.Mutex
	byDest map[string][]string
	fail   string
}

func (s *recordingSender) Send(_ context.Context, destination, text string, _ messaging.SendOptions) (messaging.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if destination == s.fail {
		return messaging.SendResult{}, &messaging.HTTPError{StatusCode: 500, Body: "down"}
	}
	if s.byDest == nil {
		s.byDest = map[string][]string{}
	}
	s.byDest[destination] = append(s.byDest[destination], text)
	return messaging.SendResult{MessageID: "m"}, nil
}

func messagingConfig(groups map[string]string) config.MessagingConfig {
	cfg := config.Default().Messaging
	cfg.PauseBetween = 0
	cfg.Groups = groups
	return cfg
}

func TestDispatchService_Send(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	sender := &recordingSender{fail: "id-b"}
	svc := NewDispatchService(messagingConfig(map[string]string{"b": "id-b", "a": "id-a"}), sender, nil, nil, logger)

	set := presentation.MessageSet{PostCDI: "pos", Pre: "pre", IPCA: "ipca", Public: "ntnb", Combined: "all"}
	summary, err := svc.Send(context.Background(), set)
	require.NoError(t, err)

	require.Len(t, summary.Groups, 2)
	assert.Equal(t, "a", summary.Groups[0].Group)
	assert.Equal(t, 4, summary.Sent)
	assert.Equal(t, 4, summary.Failed)
	assert.Equal(t, []string{"pos", "pre", "ipca", "ntnb"}, sender.byDest["id-a"], "combined text is not sent")
}

func TestDispatchService_NotConfigured(t *testing.T) {
	var nilSvc *DispatchService
	_, err := nilSvc.Send(context.Background(), presentation.MessageSet{PostCDI: "x"})
	assert.True(t, errors.Is(err, ErrMessagingNotConfigured))
	assert.Empty(t, nilSvc.Destinations())

	svc := NewDispatchService(messagingConfig(nil), &recordingSender{}, nil, nil, nil)
	_, err = svc.Send(context.Background(), presentation.MessageSet{PostCDI: "x"})
	assert.True(t, errors.Is(err, ErrMessagingNotConfigured))

	_, err = NewZAPIDispatchService(messagingConfig(map[string]string{"a": "1"}), nil, nil)
	assert.True(t, errors.Is(err, ErrMessagingNotConfigured), "credentials missing")
}

func TestNewZAPIDispatchService(t *testing.T) {
	cfg := messagingConfig(map[string]string{"clientes": "1-group"})
	cfg.InstanceID, cfg.InstanceToken, cfg.ClientToken = "i", "t", "c"
	cfg.MentionsEnabled = true

	svc, err := NewZAPIDispatchService(cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []messaging.Destination{{Name: "clientes", ID: "1-group"}}, svc.Destinations())
}
