// Package model provides data transfer objects for statistics module.
package model

// StatusCounts breaks reviews down by lifecycle status.
type StatusCounts struct {
	New     int `json:"new"`
	Pending int `json:"pending"`
	Replied int `json:"replied"`
	Ignored int `json:"ignored"`
}

// SendStatusCounts breaks replies down by delivery status.
type SendStatusCounts struct {
	Draft    int `json:"draft"`
	Approved int `json:"approved"`
	Sent     int `json:"sent"`
	Error    int `json:"error"`
}

// RatingHistogram counts reviews per star rating, index 0 holding 1-star.
type RatingHistogram [5]int

// AppStatistics aggregates review and reply figures for a single app.
type AppStatistics struct {
	AppID           string           `json:"app_id"`
	TotalReviews    int              `json:"total_reviews"`
	ByStatus        StatusCounts     `json:"by_status"`
	RatingHistogram RatingHistogram  `json:"rating_histogram"`
	AverageRating   float64          `json:"average_rating"`
	RepliedRate     float64          `json:"replied_rate"`
	Replies         SendStatusCounts `json:"replies"`
}

// AppStatisticsResponse represents response for app statistics.
type AppStatisticsResponse struct {
	Statistics AppStatistics `json:"statistics"`
}
