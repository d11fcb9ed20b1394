package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/internal/projector"
	"go.uber.org/zap"
)

// codeMessageGone is returned by the Lark OpenAPI when the target message
// has been recalled or deleted.
const codeMessageGone = 230011

var actionLabels = map[task.Action]string{
	task.ActionTake:   "Take",
	task.ActionFinish: "✅ Finish",
	task.ActionCancel: "❌ Cancel",
}

// Messenger implements the projector gateway over Lark interactive cards.
// A rendering is one card message; grouped attachments are sent as
// follower media messages ahead of the card, so the card is always the
// lead item and the only one ever edited.
type Messenger struct {
	client *Client
	logger *zap.Logger
}

// NewMessenger creates a new messenger
func NewMessenger(client *Client, logger *zap.Logger) *Messenger {
	return &Messenger{client: client, logger: logger}
}

var _ projector.Gateway = (*Messenger)(nil)

// SendRendering pushes a task rendering into a chat and returns the lead
// message id
func (m *Messenger) SendRendering(ctx context.Context, chatID string, p projector.Payload) (string, error) {
	for _, att := range p.Attachments {
		if err := m.sendAttachment(ctx, chatID, att); err != nil {
			// Follower items are decoration; the card still goes out.
			m.logger.Warn("Failed to send attachment",
				zap.String("chat_id", chatID),
				zap.String("file_ref", att.FileRef),
				zap.Error(err))
		}
	}

	content, err := cardContent(p)
	if err != nil {
		return "", err
	}
	return m.send(ctx, chatID, "interactive", content)
}

// EditRendering patches the card at (chatID, messageID) with the new
// rendering
func (m *Messenger) EditRendering(ctx context.Context, chatID, messageID string, p projector.Payload) (projector.EditResult, error) {
	content, err := cardContent(p)
	if err != nil {
		return projector.EditOK, err
	}

	req := larkim.NewPatchMessageReqBuilder().
		MessageId(messageID).
		Body(larkim.NewPatchMessageReqBodyBuilder().
			Content(content).
			Build()).
		Build()

	resp, err := m.client.client.Im.Message.Patch(ctx, req)
	if err != nil {
		return projector.EditOK, fmt.Errorf("failed to patch message %s: %w", messageID, err)
	}
	if !resp.Success() {
		if resp.Code == codeMessageGone {
			return projector.EditNotFound, nil
		}
		return projector.EditOK, fmt.Errorf("patch API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}
	return projector.EditOK, nil
}

// SendNotice pushes a short plain-text message
func (m *Messenger) SendNotice(ctx context.Context, chatID, text string) error {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	_, err = m.send(ctx, chatID, "text", string(content))
	return err
}

func (m *Messenger) send(ctx context.Context, chatID, msgType, content string) (string, error) {
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("chat_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := m.client.client.Im.Message.Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.Success() {
		return "", fmt.Errorf("send API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}
	return messageID, nil
}

func (m *Messenger) sendAttachment(ctx context.Context, chatID string, att task.Attachment) error {
	var msgType string
	var content map[string]string
	switch att.Kind {
	case task.AttachmentPhoto:
		msgType = "image"
		content = map[string]string{"image_key": att.FileRef}
	case task.AttachmentAudio, task.AttachmentVoice:
		msgType = "audio"
		content = map[string]string{"file_key": att.FileRef}
	case task.AttachmentVideo:
		msgType = "media"
		content = map[string]string{"file_key": att.FileRef}
	default:
		msgType = "file"
		content = map[string]string{"file_key": att.FileRef}
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return err
	}
	_, err = m.send(ctx, chatID, msgType, string(raw))
	return err
}

// cardContent builds the interactive-card JSON for a rendering. Action
// buttons carry the string callback payload decoded by ParseCallback.
func cardContent(p projector.Payload) (string, error) {
	elements := []any{
		map[string]any{
			"tag":  "div",
			"text": map[string]any{"tag": "lark_md", "content": p.Text},
		},
	}

	if len(p.Actions) > 0 {
		buttons := make([]any, 0, len(p.Actions))
		for _, a := range p.Actions {
			buttons = append(buttons, map[string]any{
				"tag":  "button",
				"text": map[string]any{"tag": "plain_text", "content": actionLabels[a]},
				"type": "default",
				"value": map[string]any{
					"callback": FormatCallback(a, p.TaskID),
				},
			})
		}
		elements = append(elements, map[string]any{
			"tag":     "action",
			"actions": buttons,
		})
	}

	card := map[string]any{
		"config":   map[string]any{"wide_screen_mode": true},
		"elements": elements,
	}
	raw, err := json.Marshal(card)
	if err != nil {
		return "", fmt.Errorf("failed to marshal card: %w", err)
	}
	return string(raw), nil
}
