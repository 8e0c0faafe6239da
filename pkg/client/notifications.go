package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/advancepark/parkterm/pkg/domain"
)

// Notifications fetches one page of the notification feed, newest first.
// typ filters by notification type; empty means all types.
func (c *Client) Notifications(ctx context.Context, page int, typ string) (*domain.NotificationPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if typ != "" {
		params.Set("type", typ)
	}

	var result domain.NotificationPage
	if err := c.get(ctx, "/notifications/notifications/?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("client.Notifications: %w", err)
	}
	return &result, nil
}

// MarkNotificationRead flags one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	body := map[string]bool{"is_read": true}
	if err := c.patch(ctx, "/notifications/notifications/"+strconv.FormatInt(id, 10)+"/read/", body, nil); err != nil {
		return fmt.Errorf("client.MarkNotificationRead: %w", err)
	}
	return nil
}

// MarkNotificationUnread flags one notification back to unread.
func (c *Client) MarkNotificationUnread(ctx context.Context, id int64) error {
	body := map[string]bool{"is_read": false}
	if err := c.patch(ctx, "/notifications/notifications/"+strconv.FormatInt(id, 10)+"/read/", body, nil); err != nil {
		return fmt.Errorf("client.MarkNotificationUnread: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead flags the whole feed as read in one call.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	if err := c.post(ctx, "/notifications/notifications/mark_all_read/", nil, nil); err != nil {
		return fmt.Errorf("client.MarkAllNotificationsRead: %w", err)
	}
	return nil
}

// UnreadNotifications returns the authoritative unread count.
func (c *Client) UnreadNotifications(ctx context.Context) (int, error) {
	var count domain.UnreadCount
	if err := c.get(ctx, "/notifications/notifications/unread_count/", &count); err != nil {
		return 0, fmt.Errorf("client.UnreadNotifications: %w", err)
	}
	return count.Unread, nil
}

// NotificationTypes lists the type values the feed can be filtered by.
func (c *Client) NotificationTypes(ctx context.Context) ([]string, error) {
	var types []string
	if err := c.get(ctx, "/notifications/notifications/types/", &types); err != nil {
		return nil, fmt.Errorf("client.NotificationTypes: %w", err)
	}
	return types, nil
}

// NotificationHistory returns delivered notifications beyond the live feed.
func (c *Client) NotificationHistory(ctx context.Context, page int) (*domain.NotificationPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var result domain.NotificationPage
	if err := c.get(ctx, "/notifications/history/?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("client.NotificationHistory: %w", err)
	}
	return &result, nil
}

// PushSubscriptions lists the account's registered push endpoints.
func (c *Client) PushSubscriptions(ctx context.Context) ([]domain.PushSubscription, error) {
	var subs []domain.PushSubscription
	if err := c.get(ctx, "/notifications/subscriptions/", &subs); err != nil {
		return nil, fmt.Errorf("client.PushSubscriptions: %w", err)
	}
	return subs, nil
}

// PushSubscriptionParams registers a new push endpoint.
type PushSubscriptionParams struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// CreatePushSubscription registers a push endpoint for the account.
func (c *Client) CreatePushSubscription(ctx context.Context, params PushSubscriptionParams) (*domain.PushSubscription, error) {
	var sub domain.PushSubscription
	if err := c.post(ctx, "/notifications/subscribe/", params, &sub); err != nil {
		return nil, fmt.Errorf("client.CreatePushSubscription: %w", err)
	}
	return &sub, nil
}

// Unsubscribe removes a push endpoint.
func (c *Client) Unsubscribe(ctx context.Context, endpoint string) error {
	body := map[string]string{"endpoint": endpoint}
	if err := c.post(ctx, "/notifications/unsubscribe/", body, nil); err != nil {
		return fmt.Errorf("client.Unsubscribe: %w", err)
	}
	return nil
}

// UpdateEmailPreference toggles email delivery of notifications.
func (c *Client) UpdateEmailPreference(ctx context.Context, receiveEmails bool) error {
	body := map[string]bool{"email_notifications": receiveEmails}
	if err := c.patch(ctx, "/notifications/email-preference/", body, nil); err != nil {
		return fmt.Errorf("client.UpdateEmailPreference: %w", err)
	}
	return nil
}
