package clientservice

// Profile профиль клиента из сервиса клиентов
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ErrorResponse модель ошибки от сервиса клиентов
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
