package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPhone = errors.New("invalid phone number")
)

// ErrorCodeTimeBlocked код ответа при срабатывании кулдауна.
const ErrorCodeTimeBlocked = "TIME_BLOCKED"

// ValidationError некорректный запрос, клиенту отдаётся 400 с текстом Msg.
// Сюда же попадают ошибки разрешения позиций корзины.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// TimeBlockedError новый заказ отклонён: предыдущий с этого номера ещё в окне кулдауна.
type TimeBlockedError struct {
	LastOrderNumber string
	WaitHours       int
}

func (e *TimeBlockedError) Error() string {
	return fmt.Sprintf("order %s placed recently, wait %d hours", e.LastOrderNumber, e.WaitHours)
}

// Message локализованный текст для покупателя.
func (e *TimeBlockedError) Message() string {
	return fmt.Sprintf("আপনি সম্প্রতি একটি অর্ডার (%s) করেছেন। অনুগ্রহ করে %d ঘণ্টা পরে আবার চেষ্টা করুন।", e.LastOrderNumber, e.WaitHours)
}
