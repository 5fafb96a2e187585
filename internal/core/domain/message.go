package domain

type Message struct {
	ID               int
	ChatID           int64
	Username         string
	ReplyToMessageID *int
	ImageURL         string
	ImageName        string
	Text             string
}

type Action string

const (
	Typing         Action = "typing"
	UploadDocument Action = "upload_document"
)
