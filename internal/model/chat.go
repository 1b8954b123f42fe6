package model

// User identifies a chat participant.
type User struct {
	ID          string
	Username    string // without the leading @
	DisplayName string
}

// Label is the name shown in replies.
func (u User) Label() string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.Username != "":
		return "@" + u.Username
	default:
		return u.ID
	}
}

// Incoming is a message or a button press delivered by the chat transport.
type Incoming struct {
	ChatID string
	From   User
	Text   string

	// Users explicitly pointed at: text mentions, the author of a replied-to message.
	Mentions []User
	// @usernames without a resolved user id.
	MentionNames []string

	CallbackID   string // set for button presses
	CallbackData string
}

// IsCallback reports whether the update is a button press.
func (in Incoming) IsCallback() bool { return in.CallbackID != "" }

// Button is an inline button attached to a reply.
type Button struct {
	Label string
	Data  string
}

// Reply is what the bot renders back to the user.
type Reply struct {
	ChatID  string
	Text    string
	Buttons []Button
	// Toast is shown as the callback answer instead of a chat message.
	Toast string
}
