// Package messaging delivers the day's messages to WhatsApp groups through
// Z-API.
//
// ZAPIClient implements Sender and ParticipantSource over HTTPS.
// ParticipantCache puts a TTL cache in front of the member lookup, and
// Dispatcher fans a message list out to every configured destination with
// bounded concurrency, a fixed pause between messages of one destination
// and optional @-mentions of every member.
//
// Example:
//
//	client, err := messaging.NewZAPIClient(messaging.ZAPIConfig{
//	    InstanceID: id, InstanceToken: token, ClientToken: clientToken,
//	}, logger)
//	d := messaging.NewDispatcher(client, messaging.NewParticipantCache(client, 0), nil, cfg, logger)
//	results := d.Dispatch(ctx, messaging.DestinationsFromMap(groups), set.Outbound())
package messaging
