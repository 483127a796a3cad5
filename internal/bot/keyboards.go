package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"napominator/internal/engine"
)

const (
	buttonList    = "Мои уведомления"
	buttonHistory = "📊 История"
	buttonSetCity = "Изменить часовой пояс"
)

var mainMenu = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("+"),
		tgbotapi.NewKeyboardButton(buttonList),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(buttonHistory),
		tgbotapi.NewKeyboardButton(buttonSetCity),
	),
)

// cityTimezones maps the fixed city menu to IANA identifiers, sorted by
// UTC offset descending.
var cityTimezones = []struct {
	Label string
	Zone  string
}{
	{"Петропавловск-Камчатский (MSK+9)", "Asia/Kamchatka"},
	{"Магадан (MSK+8)", "Asia/Magadan"},
	{"Владивосток (MSK+7)", "Asia/Vladivostok"},
	{"Якутск (MSK+6)", "Asia/Yakutsk"},
	{"Иркутск (MSK+5)", "Asia/Irkutsk"},
	{"Красноярск (MSK+4)", "Asia/Krasnoyarsk"},
	{"Новосибирск (MSK+4)", "Asia/Novosibirsk"},
	{"Екатеринбург (MSK+2)", "Asia/Yekaterinburg"},
	{"Самара (MSK+1)", "Europe/Samara"},
	{"Москва (MSK)", "Europe/Moscow"},
	{"Калининград (MSK-1)", "Europe/Kaliningrad"},
}

func cityKeyboard(withCancel bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cityTimezones)+1)
	for i, city := range cityTimezones {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(city.Label, fmt.Sprintf("city_%d", i)),
		))
	}
	if withCancel {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "cancel_city"),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

var quickTemplatesKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏰ Через 1 час", "quick_in_1h"),
		tgbotapi.NewInlineKeyboardButtonData("⏰ Через 2 часа", "quick_in_2h"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🌅 Завтра в 9:00", "quick_tomorrow_9"),
		tgbotapi.NewInlineKeyboardButtonData("🌆 Завтра в 18:00", "quick_tomorrow_18"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📅 Через неделю", "quick_in_1week"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✏️ Создать свое", "custom_reminder"),
	),
)

var popularTimesKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("09:00", "time_09:00"),
		tgbotapi.NewInlineKeyboardButtonData("12:00", "time_12:00"),
		tgbotapi.NewInlineKeyboardButtonData("15:00", "time_15:00"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("18:00", "time_18:00"),
		tgbotapi.NewInlineKeyboardButtonData("21:00", "time_21:00"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✏️ Ввести свое время", "time_custom"),
		tgbotapi.NewInlineKeyboardButtonData("Отмена", "cancel"),
	),
)

var cancelKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Отмена", "cancel"),
	),
)

// noticeKeyboard builds the snooze/done controls under a notice. The done
// button deletes the pending record, except on the terminal notice where
// nothing is left to delete and acknowledging only flips the button.
func noticeKeyboard(controls engine.Controls) tgbotapi.InlineKeyboardMarkup {
	id := controls.TargetID
	done := fmt.Sprintf("delete_%d", id)
	if controls.Terminal {
		done = fmt.Sprintf("last_%d", id)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ +5мин", fmt.Sprintf("snooze_5_%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("⏰ +15мин", fmt.Sprintf("snooze_15_%d", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ +1час", fmt.Sprintf("snooze_60_%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("📅 Завтра", fmt.Sprintf("snooze_tomorrow_%d", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Готово", done),
		),
	)
}

func donedKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("doned ✅", fmt.Sprintf("doned_%d", id)),
		),
	)
}
