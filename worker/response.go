package worker

import (
	"net/http"

	"tweetwatch/internal/model"
)

// Response is the structured answer of a single-shot trigger.
type Response struct {
	StatusCode int                  `json:"statusCode"`
	Body       model.DispatchResult `json:"body"`
}

// NewResponse maps a cycle outcome to a 200 or 500 response.
func NewResponse(res model.DispatchResult, err error) Response {
	if err != nil {
		return Response{
			StatusCode: http.StatusInternalServerError,
			Body: model.DispatchResult{
				Success:        false,
				ProcessedCount: res.ProcessedCount,
				Message:        "執行失敗: " + err.Error(),
			},
		}
	}
	return Response{StatusCode: http.StatusOK, Body: res}
}
