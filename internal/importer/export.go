package importer

import "encoding/json"

// Export mirrors the Telegram desktop chat export document. Only the fields
// the importer consumes are declared.
type Export struct {
	Name     string          `json:"name"`
	ID       int64           `json:"id"`
	Messages []ExportMessage `json:"messages"`
}

// ExportMessage is one entry of the export. Text is kept raw because the
// export serializes it either as a plain string or as a list of compound
// fragments.
type ExportMessage struct {
	ID               int64           `json:"id"`
	Type             string          `json:"type"`
	Date             string          `json:"date"`
	From             *string         `json:"from"`
	FromID           string          `json:"from_id"`
	Text             json.RawMessage `json:"text"`
	ReplyToMessageID int64           `json:"reply_to_message_id"`
	ForwardedFrom    *string         `json:"forwarded_from"`

	StickerEmoji *string         `json:"sticker_emoji"`
	MediaType    *string         `json:"media_type"`
	Photo        *string         `json:"photo"`
	File         *string         `json:"file"`
	GameTitle    *string         `json:"game_title"`
	Poll         *ExportPoll     `json:"poll"`
	Location     *ExportLocation `json:"location_information"`
}

// ExportPoll is the poll payload of an export entry.
type ExportPoll struct {
	Question    string             `json:"question"`
	TotalVoters int                `json:"total_voters"`
	Answers     []ExportPollAnswer `json:"answers"`
}

// ExportPollAnswer is one poll option with its vote count.
type ExportPollAnswer struct {
	Text   string `json:"text"`
	Voters int    `json:"voters"`
}

// ExportLocation is the location payload of an export entry.
type ExportLocation struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}
