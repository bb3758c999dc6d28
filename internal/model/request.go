package model

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id" binding:"required"`
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type UpdateTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// SelectCitationRequest addresses a citation by the assistant message that
// carries it and its position in that message's citation list.
type SelectCitationRequest struct {
	MessageID string `json:"message_id" binding:"required"`
	Index     *int   `json:"index" binding:"required,min=0"`
}
