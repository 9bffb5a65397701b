package response

import "github.com/gin-gonic/gin"

const (
	CodeSuccess = 0
)

const (
	ErrUnauthorized = 10001
	ErrTokenExpired = 10002
	ErrForbidden    = 10003
)

const (
	ErrRestaurantNotFound = 20001
	ErrInvalidPIN         = 20002
	ErrPINLocked          = 20003
	ErrWeakPIN            = 20004
	ErrEmailTaken         = 20005
	ErrInvalidStamps      = 20006
)

const (
	ErrInvalidQRCode  = 30001
	ErrTokenInvalid   = 30002
	ErrDuplicateScan  = 30003
	ErrClientNotFound = 30004
)

const (
	ErrSelfReferral    = 40001
	ErrCircularChain   = 40002
	ErrUnknownCode     = 40003
	ErrAlreadyReferred = 40004
)

const (
	ErrConflict        = 50001
	ErrTooManyRequests = 50002
)

const (
	ErrReviewNotFound = 60001
	ErrInvalidRating  = 60002
)

const (
	ErrInvalidInput = 90001
	ErrNotFound     = 90002
	ErrInternal     = 99999
)

type Response struct {
	Code       int         `json:"code"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func Success(c *gin.Context, data any) {
	c.JSON(200, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Paginated(c *gin.Context, data any, page, pageSize int, total int64) {
	c.JSON(200, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
		Pagination: &Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

func Fail(c *gin.Context, httpStatus, appCode int, message string) {
	c.JSON(httpStatus, Response{
		Code:    appCode,
		Message: message,
	})
}
