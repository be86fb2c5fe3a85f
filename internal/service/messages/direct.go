package messages

import (
	"context"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/models"
	"github.com/nikhil/teamchat/internal/store"
	"github.com/nikhil/teamchat/internal/validator"
)

// CreateDirectMessageRequest is the body of a new direct message.
type CreateDirectMessageRequest struct {
	TeamID     int64  `json:"teamId" validate:"gt=0"`
	ReceiverID int64  `json:"receiverId" validate:"gt=0"`
	Text       string `json:"text" validate:"required,max=5000"`
}

// CreateDirectMessage stores a message between two members of a team.
func (ms *MessageService) CreateDirectMessage(ctx context.Context, senderID int64, req CreateDirectMessageRequest) models.DirectMessageResult {
	log := ms.Log.WithContext(ctx).WithUser(senderID)

	if err := validator.Validate(req); err != nil {
		return models.DirectMessageResult{MutationResult: models.Failed(err)}
	}
	if req.ReceiverID == senderID {
		return models.DirectMessageResult{MutationResult: models.Failed(apperrors.Validation("receiverId", "You cannot message yourself"))}
	}

	if !ms.Access.IsTeamMember(ctx, req.TeamID, senderID) {
		return models.DirectMessageResult{MutationResult: models.Failed(apperrors.Authorization("teamId", "You are not a member of this team"))}
	}
	if !ms.Access.IsTeamMember(ctx, req.TeamID, req.ReceiverID) {
		return models.DirectMessageResult{MutationResult: models.Failed(apperrors.NotFound("receiverId", "Could not find this user in the team", nil))}
	}

	sender, err := ms.Store.GetUser(ctx, senderID)
	if err != nil {
		log.Error("Failed to load sender", "error", err)
		return models.DirectMessageResult{MutationResult: models.Failed(err)}
	}

	dm := &models.DirectMessage{
		TeamID:     req.TeamID,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		Sender:     models.UserSummary{ID: sender.ID, Username: sender.Username},
	}
	if err := ms.Store.InsertDirectMessage(ctx, dm); err != nil {
		log.Error("Failed to insert direct message", "team_id", req.TeamID, "error", err)
		return models.DirectMessageResult{MutationResult: models.Failed(err)}
	}

	return models.DirectMessageResult{MutationResult: models.Succeeded(), Message: dm}
}

// ListDirectMessages returns one page of the conversation between userID and
// partnerID, newest first. Without an existing thread the page is empty.
func (ms *MessageService) ListDirectMessages(ctx context.Context, userID, teamID, partnerID int64, cursor string, limit int) (models.MessagePage[models.DirectMessage], error) {
	page := models.MessagePage[models.DirectMessage]{Items: []models.DirectMessage{}}

	before, err := DecodeCursor(cursor)
	if err != nil {
		return page, err
	}
	if !ms.Access.IsTeamMember(ctx, teamID, userID) || !ms.Access.CanViewThread(ctx, teamID, userID, partnerID) {
		return page, nil
	}

	size := pageSize(limit)
	items, err := ms.Store.ListDirectMessages(ctx, teamID, userID, partnerID, before, size+1)
	if err != nil {
		ms.Log.WithContext(ctx).Error("Failed to list direct messages", "team_id", teamID, "error", err)
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
