// Package messages stores channel and direct messages, serves their history
// and hands new channel messages to the realtime hub.
package messages

import (
	"context"
	"errors"
	"sync"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/models"
	"github.com/nikhil/teamchat/internal/realtime"
	"github.com/nikhil/teamchat/internal/service/access"
	"github.com/nikhil/teamchat/internal/store"
	"github.com/nikhil/teamchat/internal/validator"
)

// Store is the persistence the message service needs.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetChannel(ctx context.Context, id int64) (*models.Channel, error)
	PrivateChannelMemberIDs(ctx context.Context, channelID int64) ([]int64, error)
	InsertMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, channelID int64, before *store.Position, limit int) ([]models.Message, error)
	InsertDirectMessage(ctx context.Context, dm *models.DirectMessage) error
	ListDirectMessages(ctx context.Context, teamID, userID, partnerID int64, before *store.Position, limit int) ([]models.DirectMessage, error)
}

// Publisher fans a stored message out to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, channelID int64, audience realtime.Audience, payload interface{}) (int, error)
}

const lockStripes = 64

// MessageService handles message-related operations
type MessageService struct {
	Store     Store
	Access    *access.Engine
	Publisher Publisher
	Log       *logger.Logger

	// insert and publish of one channel happen under the same stripe
	locks [lockStripes]sync.Mutex
}

// FileRef points at an already uploaded attachment.
type FileRef struct {
	URL      string `json:"url" validate:"required,url"`
	FileType string `json:"filetype" validate:"required,max=100"`
}

// CreateMessageRequest is the body of a new channel message.
type CreateMessageRequest struct {
	ChannelID int64    `json:"channelId" validate:"gt=0"`
	Text      string   `json:"text" validate:"max=5000"`
	File      *FileRef `json:"file"`
}

// NewMessageService creates a message service
func NewMessageService(store Store, engine *access.Engine, publisher Publisher, log *logger.Logger) *MessageService {
	return &MessageService{
		Store:     store,
		Access:    engine,
		Publisher: publisher,
		Log:       log,
	}
}

// CreateMessage stores a message in a channel the user can access and
// publishes it to the channel's subscribers.
func (ms *MessageService) CreateMessage(ctx context.Context, userID int64, req CreateMessageRequest) models.MessageResult {
	log := ms.Log.WithContext(ctx).WithUser(userID)

	if err := validator.Validate(req); err != nil {
		return models.MessageResult{MutationResult: models.Failed(err)}
	}
	if req.Text == "" && req.File == nil {
		return models.MessageResult{MutationResult: models.Failed(apperrors.Validation("text", "Message text or a file is required"))}
	}

	ch, err := ms.Store.GetChannel(ctx, req.ChannelID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		log.Error("Failed to load channel", "channel_id", req.ChannelID, "error", err)
		return models.MessageResult{MutationResult: models.Failed(err)}
	}
	if ch == nil || !ms.Access.CanAccessChannel(ctx, userID, ch) {
		log.Warn("Message to inaccessible channel", "channel_id", req.ChannelID)
		return models.MessageResult{MutationResult: models.Failed(apperrors.NotFound("channelId", "Channel not found", nil))}
	}

	user, err := ms.Store.GetUser(ctx, userID)
	if err != nil {
		log.Error("Failed to load author", "error", err)
		return models.MessageResult{MutationResult: models.Failed(err)}
	}

	msg := &models.Message{
		ChannelID: ch.ID,
		Text:      req.Text,
		User:      models.UserSummary{ID: user.ID, Username: user.Username},
	}
	if req.File != nil {
		msg.URL, msg.FileType = req.File.URL, req.File.FileType
	}

	lock := &ms.locks[uint64(ch.ID)%lockStripes]
	lock.Lock()
	defer lock.Unlock()

	if err := ms.Store.InsertMessage(ctx, msg); err != nil {
		log.Error("Failed to insert message", "channel_id", ch.ID, "error", err)
		return models.MessageResult{MutationResult: models.Failed(err)}
	}

	ms.publish(ctx, ch, msg, log)
	return models.MessageResult{MutationResult: models.Succeeded(), Message: msg}
}

// publish is best effort: the message is already stored and can be recovered
// from history.
func (ms *MessageService) publish(ctx context.Context, ch *models.Channel, msg *models.Message, log *logger.Logger) {
	var audience realtime.Audience
	if !ch.Public {
		ids, err := ms.Store.PrivateChannelMemberIDs(ctx, ch.ID)
		if err != nil {
			log.Error("Failed to resolve channel audience, not publishing", "channel_id", ch.ID, "error", err)
			return
		}
		audience = realtime.Users(ids...)
	}

	n, err := ms.Publisher.Publish(context.WithoutCancel(ctx), ch.ID, audience, msg)
	if err != nil {
		log.Warn("Failed to publish message", "channel_id", ch.ID, "message_id", msg.ID, "error", err)
		return
	}
	log.Debug("Message published", "channel_id", ch.ID, "message_id", msg.ID, "subscribers", n)
}

// ListMessages returns one page of a channel's history, newest first. Users
// who cannot access the channel get an empty page.
func (ms *MessageService) ListMessages(ctx context.Context, userID, channelID int64, cursor string, limit int) (models.MessagePage[models.Message], error) {
	page := models.MessagePage[models.Message]{Items: []models.Message{}}

	before, err := DecodeCursor(cursor)
	if err != nil {
		return page, err
	}

	ch, err := ms.Store.GetChannel(ctx, channelID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return page, nil
		}
		ms.Log.WithContext(ctx).Error("Failed to load channel", "channel_id", channelID, "error", err)
		return page, err
	}
	if !ms.Access.CanAccessChannel(ctx, userID, ch) {
		return page, nil
	}

	size := pageSize(limit)
	items, err := ms.Store.ListMessages(ctx, channelID, before, size+1)
	if err != nil {
		ms.Log.WithContext(ctx).Error("Failed to list messages", "channel_id", channelID, "error", err)
		return page, err
	}

	if len(items) > size {
		items = items[:size]
		last := items[size-1]
		page.NextCursor = EncodeCursor(store.Position{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	page.Items = items
	return page, nil
}
