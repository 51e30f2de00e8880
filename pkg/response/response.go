package response

// Envelope is the standard bilingual API response body. Every endpoint
// returns this shape; error and error_ar are only set on failure, message
// and message_ar only on success.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorAr   string      `json:"error_ar,omitempty"`
	Message   string      `json:"message,omitempty"`
	MessageAr string      `json:"message_ar,omitempty"`
}

// OK returns a success envelope wrapping the data.
func OK(data interface{}) Envelope {
	return Envelope{
		Success: true,
		Data:    data,
	}
}

// OKMessage returns a success envelope with a bilingual message and optional data.
func OKMessage(msg, msgAr string, data interface{}) Envelope {
	return Envelope{
		Success:   true,
		Data:      data,
		Message:   msg,
		MessageAr: msgAr,
	}
}

// Fail returns a failure envelope with a bilingual error message.
func Fail(err, errAr string) Envelope {
	return Envelope{
		Success: false,
		Error:   err,
		ErrorAr: errAr,
	}
}

// Pagination is the standard list-response pagination block.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// NewPagination computes totalPages from the given totals.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
