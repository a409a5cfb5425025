package flow

import "fmt"

// User-facing texts. All conversation messages are in Russian, matching
// the audience of the retail backend this bot fronts.
const (
	msgGreeting = "Привет, %s!\n\n" +
		"Я бот для создания заявок на обслуживание.\n" +
		"Команды:\n" +
		"/newrequest — создать новую заявку\n" +
		"/cancel — отменить создание заявки\n" +
		"/health — проверить связь с сервером"

	msgPermissionDenied = "⛔ У вас нет прав для создания заявок."
	msgChatNotLinked    = "❌ Этот чат не привязан к магазину. Обратитесь к администратору."
	msgLoadFailed       = "❌ Не удалось загрузить список. Попробуйте позже."

	promptShop         = "Выберите магазин:"
	promptContractor   = "Выберите исполнителя:"
	promptWorkCategory = "Выберите категорию работ:"
	promptUrgency      = "Выберите срочность:"
	promptDescription  = "Введите описание заявки:"
	promptCustomDays   = "Введите срок выполнения в днях (от 1 до 365):"

	msgInvalidDays = "Введите целое число от 1 до 365."

	msgSubmitFailed    = "❌ Не удалось создать заявку. Попробуйте позже."
	msgCancelled       = "Создание заявки отменено."
	msgNothingToCancel = "Нет активной заявки."

	msgStaleSelection = "Список устарел, страница обновлена."
	msgSessionExpired = "Сессия не активна. Начните заново: /newrequest"

	msgHealthChecking = "Проверяю связь с сервером..."
)

func selectedMessage(prompt, label string) string {
	return fmt.Sprintf("%s\n✅ %s", prompt, label)
}

func successMessage(requestID int64) string {
	return fmt.Sprintf("✅ Заявка №%d успешно создана!", requestID)
}

// Health texts distinguish the API-key, role and connectivity failure
// modes so an operator can tell them apart from the chat alone.
func healthOKMessage(body string) string {
	return fmt.Sprintf("✅ *Сервер доступен!*\nОтвет: `%s`", body)
}

const (
	msgHealthUnauthorized = "❌ *Ошибка 401: Unauthorized.*\nСервер отклонил запрос. Проверьте правильность `BACKEND_API_KEY`."
	msgHealthForbidden    = "❌ *Ошибка 403: Forbidden.*\nУбедитесь, что роли `BOT` разрешён доступ к эндпоинтам `/api/bot/**`."
)

func healthStatusMessage(code int, body string) string {
	return fmt.Sprintf("❌ *Ошибка сервера.*\nКод ответа: `%d`.\nТело ответа: `%s`", code, body)
}

func healthUnreachableMessage(baseErr string) string {
	return fmt.Sprintf("❌ *Ошибка подключения.*\nНе удалось связаться с сервером: `%s`. Убедитесь, что бэкенд запущен и доступен.", baseErr)
}
