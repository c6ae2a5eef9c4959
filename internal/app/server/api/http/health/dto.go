package health

const StatusOK = "OK"

type Input struct{}

type Output struct {
	Body Response
}

// Response тело ответа /health. Клиент считает сервер доступным только при 200.
type Response struct {
	Status string `json:"status" example:"OK" doc:"Сервер принимает синхронизацию"`
}
