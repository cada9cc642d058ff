package syndication

// timelineDocument mirrors the JSON document embedded in the public
// timeline HTML. Only the fields the adapter reads are declared.
type timelineDocument struct {
	Props struct {
		PageProps struct {
			Timeline struct {
				Entries []timelineEntry `json:"entries"`
			} `json:"timeline"`
		} `json:"pageProps"`
	} `json:"props"`
}

type timelineEntry struct {
	Type    string `json:"type"`
	Content struct {
		Tweet *entryTweet `json:"tweet"`
	} `json:"content"`
}

type entryTweet struct {
	IDStr             string `json:"id_str"`
	FullText          string `json:"full_text"`
	CreatedAt         string `json:"created_at"`
	FavoriteCount     int    `json:"favorite_count"`
	ConversationCount int    `json:"conversation_count"`
	RetweetCount      int    `json:"retweet_count"`
	User              struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"user"`
}
