// internal/event/decoder.go

// Package event decodes raw queue message bodies into typed activity
// events. The `type` field selects the variant; the rest of the payload
// is validated against that variant's JSON schema before decoding.
package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"activity-notifier/internal/models"
)

// ErrUnknownType marks a well-formed payload whose discriminant is not
// in the closed event set. The consumer drops these silently instead of
// treating them as decode failures.
var ErrUnknownType = errors.New("unknown event type")

var schemas = map[models.EventType]*gojsonschema.Schema{
	models.EventFollow: mustSchema(`{
		"type": "object",
		"properties": {
			"type": {"type": "string"},
			"actorId": {"type": "string", "minLength": 1},
			"userId": {"type": "string", "minLength": 1}
		},
		"required": ["actorId", "userId"]
	}`),
	models.EventFeedLike: mustSchema(`{
		"type": "object",
		"properties": {
			"type": {"type": "string"},
			"feedId": {"type": "string", "minLength": 1},
			"likeCount": {"type": "integer", "minimum": 0}
		},
		"required": ["feedId", "likeCount"]
	}`),
	models.EventFeedComment: mustSchema(`{
		"type": "object",
		"properties": {
			"type": {"type": "string"},
			"feedId": {"type": "string", "minLength": 1},
			"actorId": {"type": "string", "minLength": 1}
		},
		"required": ["feedId", "actorId"]
	}`),
	models.EventFeedReply: mustSchema(`{
		"type": "object",
		"properties": {
			"type": {"type": "string"},
			"feedId": {"type": "string", "minLength": 1},
			"actorId": {"type": "string", "minLength": 1},
			"parentId": {"type": "string", "minLength": 1}
		},
		"required": ["feedId", "actorId", "parentId"]
	}`),
	models.EventFeedMention: mustSchema(`{
		"type": "object",
		"properties": {
			"type": {"type": "string"},
			"feedId": {"type": "string", "minLength": 1},
			"actorId": {"type": "string", "minLength": 1},
			"mentionedUserId": {"type": "string", "minLength": 1}
		},
		"required": ["feedId", "actorId", "mentionedUserId"]
	}`),
	models.EventPostComment: mustSchema(`{
		"type": "object",
		"properties": {
			"type": {"type": "string"},
			"postId": {"type": "string", "minLength": 1},
			"actorId": {"type": "string", "minLength": 1}
		},
		"required": ["postId", "actorId"]
	}`),
	models.EventPostReply: mustSchema(`{
		"type": "object",
		"properties": {
			"type": {"type": "string"},
			"postId": {"type": "string", "minLength": 1},
			"actorId": {"type": "string", "minLength": 1},
			"parentId": {"type": "string", "minLength": 1}
		},
		"required": ["postId", "actorId", "parentId"]
	}`),
	models.EventPostMention: mustSchema(`{
		"type": "object",
		"properties": {
			"type": {"type": "string"},
			"postId": {"type": "string", "minLength": 1},
			"actorId": {"type": "string", "minLength": 1},
			"mentionedUserId": {"type": "string", "minLength": 1}
		},
		"required": ["postId", "actorId", "mentionedUserId"]
	}`),
	models.EventLike: mustSchema(`{
		"type": "object",
		"properties": {
			"type": {"type": "string"},
			"actorId": {"type": "string", "minLength": 1},
			"feedId": {"type": "string", "minLength": 1}
		},
		"required": ["actorId", "feedId"]
	}`),
	models.EventComment: mustSchema(`{
		"type": "object",
		"properties": {
			"type": {"type": "string"},
			"actorId": {"type": "string", "minLength": 1},
			"feedId": {"type": "string", "minLength": 1},
			"parentCommentId": {"type": "string"}
		},
		"required": ["actorId", "feedId"]
	}`),
}

func mustSchema(raw string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid event schema: %v", err))
	}
	return s
}

// canonical folds legacy discriminant spellings onto current kinds.
func canonical(t models.EventType) models.EventType {
	switch t {
	case models.EventFeedAnswer:
		return models.EventFeedReply
	case models.EventPostAnswer:
		return models.EventPostReply
	default:
		return t
	}
}

// Decode parses one message body into a typed event. It returns
// ErrUnknownType for discriminants outside the closed set and a plain
// decode error for malformed payloads; callers swallow both.
func Decode(body []byte) (models.Event, error) {
	var probe struct {
		Type models.EventType `json:"type"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if probe.Type == "" {
		return nil, fmt.Errorf("decode event: missing type discriminant")
	}

	kind := canonical(probe.Type)
	schema, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, probe.Type)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("validate %s event: %w", kind, err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("decode %s event: %s", kind, result.Errors()[0].String())
	}

	return unmarshalVariant(kind, body)
}

func unmarshalVariant(kind models.EventType, body []byte) (models.Event, error) {
	var (
		ev  models.Event
		err error
	)
	switch kind {
	case models.EventFollow:
		var v models.FollowEvent
		err = json.Unmarshal(body, &v)
		ev = v
	case models.EventFeedLike:
		var v models.FeedLikeEvent
		err = json.Unmarshal(body, &v)
		ev = v
	case models.EventFeedComment:
		var v models.FeedCommentEvent
		err = json.Unmarshal(body, &v)
		ev = v
	case models.EventFeedReply:
		var v models.FeedReplyEvent
		err = json.Unmarshal(body, &v)
		ev = v
	case models.EventFeedMention:
		var v models.FeedMentionEvent
		err = json.Unmarshal(body, &v)
		ev = v
	case models.EventPostComment:
		var v models.PostCommentEvent
		err = json.Unmarshal(body, &v)
		ev = v
	case models.EventPostReply:
		var v models.PostReplyEvent
		err = json.Unmarshal(body, &v)
		ev = v
	case models.EventPostMention:
		var v models.PostMentionEvent
		err = json.Unmarshal(body, &v)
		ev = v
	case models.EventLike:
		var v models.LikeEvent
		err = json.Unmarshal(body, &v)
		ev = v
	case models.EventComment:
		var v models.CommentEvent
		err = json.Unmarshal(body, &v)
		ev = v
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s event: %w", kind, err)
	}
	return ev, nil
}
