package xapi

// User is the subset of the user lookup response the adapter needs.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type userResponse struct {
	Data   *User      `json:"data"`
	Errors []apiError `json:"errors"`
}

// Tweet is one timeline entry from the authenticated API.
type Tweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type timelineResponse struct {
	Data   []Tweet    `json:"data"`
	Errors []apiError `json:"errors"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type postTweetRequest struct {
	Text  string     `json:"text"`
	Reply *replyInfo `json:"reply,omitempty"`
}

type replyInfo struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type postTweetResponse struct {
	Data *struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}
