package webapi

// Envelope is the status block every JSON endpoint returns.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ViewResponse is returned by PathView.
type ViewResponse struct {
	Envelope
	Data *ViewData `json:"data"`
}

type ViewData struct {
	AID   int64  `json:"aid"`
	BVID  string `json:"bvid"`
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

// Page is one part of a multi-part video. Duration is in seconds.
type Page struct {
	Page     int    `json:"page"`
	Part     string `json:"part"`
	CID      int64  `json:"cid"`
	Duration int64  `json:"duration"`
}

// SeasonResponse is returned by PathSeason for both season_id and ep_id lookups.
type SeasonResponse struct {
	Envelope
	Result *SeasonResult `json:"result"`
}

type SeasonResult struct {
	SeasonID int64     `json:"season_id"`
	Title    string    `json:"title"`
	Episodes []Episode `json:"episodes"`
	Section  []Section `json:"section"`
}

type Section struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Episodes []Episode `json:"episodes"`
}

// Episode is one season entry. Duration is in milliseconds.
type Episode struct {
	ID        int64  `json:"id"`
	AID       int64  `json:"aid"`
	CID       int64  `json:"cid"`
	Title     string `json:"title"`
	LongTitle string `json:"long_title"`
	Duration  int64  `json:"duration"`
}

// MediaReviewResponse is returned by PathMediaReview.
type MediaReviewResponse struct {
	Envelope
	Result *struct {
		Media struct {
			MediaID  int64  `json:"media_id"`
			SeasonID int64  `json:"season_id"`
			Title    string `json:"title"`
		} `json:"media"`
	} `json:"result"`
}

// NavResponse is returned by PathNav. Logged-out sessions report a non-zero
// code but still carry the wbi_img block.
type NavResponse struct {
	Envelope
	Data *struct {
		IsLogin bool `json:"isLogin"`
		WbiImg  struct {
			ImgURL string `json:"img_url"`
			SubURL string `json:"sub_url"`
		} `json:"wbi_img"`
	} `json:"data"`
}
