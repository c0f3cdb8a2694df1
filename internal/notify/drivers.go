package notify

import (
	"context"
	"fmt"
	"log"
)

// Driver defines the interface for sending notifications via different channels.
type Driver interface {
	Send(ctx context.Context, recipient, title, body string, data map[string]string) error
	Channel() Channel
}

// PushGateway sends a single push message to a device token.
// Satisfied by push.Client.
type PushGateway interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}

// TokenSource resolves a user's active device tokens.
// Satisfied by push.TokenRepository.
type TokenSource interface {
	TokensByUser(ctx context.Context, userID string) ([]string, error)
}

// PushDriver fans a push notification out to every active device of a user.
// The recipient is the user id; token resolution happens here so workers
// never deal with device tokens directly.
type PushDriver struct {
	gateway PushGateway
	tokens  TokenSource
}

func NewPushDriver(gateway PushGateway, tokens TokenSource) *PushDriver {
	return &PushDriver{gateway: gateway, tokens: tokens}
}

func (d *PushDriver) Channel() Channel {
	return Push
}

func (d *PushDriver) Send(ctx context.Context, recipient, title, body string, data map[string]string) error {
	tokens, err := d.tokens.TokensByUser(ctx, recipient)
	if err != nil {
		return fmt.Errorf("resolve tokens for user %s: %w", recipient, err)
	}
	if len(tokens) == 0 {
		log.Printf("User %s has no active device tokens, skipping push", recipient)
		return nil
	}

	var lastErr error
	sent := 0
	for _, token := range tokens {
		if err := d.gateway.SendPush(ctx, token, title, body, data); err != nil {
			log.Printf("Failed to push to device of user %s: %v", recipient, err)
			lastErr = err
			continue
		}
		sent++
	}
	if sent == 0 && lastErr != nil {
		return fmt.Errorf("push to all devices of user %s failed: %w", recipient, lastErr)
	}
	return nil
}

// DriverRegistry holds all available notification drivers.
type DriverRegistry struct {
	drivers map[Channel]Driver
}

func NewDriverRegistry() *DriverRegistry {
	return &DriverRegistry{
		drivers: make(map[Channel]Driver),
	}
}

func (r *DriverRegistry) Register(driver Driver) {
	r.drivers[driver.Channel()] = driver
}

func (r *DriverRegistry) Get(channel Channel) (Driver, error) {
	driver, ok := r.drivers[channel]
	if !ok {
		return nil, fmt.Errorf("no driver registered for channel: %s", channel)
	}
	return driver, nil
}
