package infra

import (
	"context"
	"fmt"
	"os"

	"github.com/pyama86/device-query/domain/model"
	"github.com/slack-go/slack"
)

//go:generate mockgen -source=slack.go -destination=mock_slack.go -package=infra SlackAPI Notifier

type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier tells someone a new query arrived.
type Notifier interface {
	NotifyQuery(context.Context, *model.Query) error
}

type SlackNotifier struct {
	client  SlackAPI
	channel string
}

// NewSlackNotifier returns nil when SLACK_BOT_TOKEN or SLACK_CHANNEL is not set.
func NewSlackNotifier() Notifier {
	token := os.Getenv("SLACK_BOT_TOKEN")
	channel := os.Getenv("SLACK_CHANNEL")
	if token == "" || channel == "" {
		return nil
	}
	return NewSlackNotifierWithClient(slack.New(token), channel)
}

func NewSlackNotifierWithClient(client SlackAPI, channel string) *SlackNotifier {
	return &SlackNotifier{client: client, channel: channel}
}

func (n *SlackNotifier) NotifyQuery(ctx context.Context, q *model.Query) error {
	header := slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf(":iphone: *新しい問い合わせ #%d*", q.ID), false, false)
	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Name*\n"+q.Name, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Email*\n"+q.Email, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Device*\n"+q.Device, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Received*\n"+q.CreatedAt, false, false),
	}
	message := slack.NewTextBlockObject(slack.PlainTextType, q.Message, false, false)

	if _, _, err := n.client.PostMessageContext(
		ctx,
		n.channel,
		slack.MsgOptionText(fmt.Sprintf("New device query #%d from %s", q.ID, q.Name), false),
		slack.MsgOptionBlocks(
			slack.NewSectionBlock(header, fields, nil),
			slack.NewSectionBlock(message, nil, nil),
		),
	); err != nil {
		return fmt.Errorf("PostMessage failed: %w", err)
	}
	return nil
}
