package models

import "time"

// CodeTypeResetPassword — единственный тип кода на сегодня.
const CodeTypeResetPassword = "RESET_PASSWORD"

// VerificationCode — одноразовый код, отправленный на почту.
// Код живёт ровно одну проверку: при совпадении запись удаляется.
type VerificationCode struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Code      string    `json:"-"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
