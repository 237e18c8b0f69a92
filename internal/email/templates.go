package email

import (
	"fmt"
	"strings"
)

const bodyStyle = `font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;`

// BuildResetCodeBody builds the HTML body for the password reset email
func BuildResetCodeBody(code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="%s">
	<h1 style="font-size: 20px;">Сброс пароля</h1>
	<p>Ваш одноразовый код для сброса пароля:</p>
	<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
		<p style="margin: 0; font-size: 28px; font-weight: bold; font-family: monospace; letter-spacing: 4px;">%s</p>
	</div>
	<p style="font-size: 12px; color: #999;">Код действителен 10 минут. Если вы не запрашивали сброс, просто проигнорируйте это письмо.</p>
</body>
</html>`, bodyStyle, code)
}

// BuildNewOrderBody builds the HTML body for the new order alert
func BuildNewOrderBody(number, customerName string, total, itemCount int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="%s">
	<h1 style="font-size: 20px;">Новый заказ %s</h1>
	<table style="border-collapse: collapse;">
		<tr><td style="padding: 6px 16px 6px 0; color: #666;">Покупатель</td><td style="padding: 6px 0;">%s</td></tr>
		<tr><td style="padding: 6px 16px 6px 0; color: #666;">Позиций</td><td style="padding: 6px 0;">%d</td></tr>
		<tr><td style="padding: 6px 16px 6px 0; color: #666;">Сумма</td><td style="padding: 6px 0; font-weight: bold;">%s ₽</td></tr>
	</table>
</body>
</html>`, bodyStyle, number, customerName, itemCount, formatNumber(total))
}

// BuildCancellationBody builds the HTML body for the cancellation alert
func BuildCancellationBody(number, priorStatus, reason string) string {
	if reason == "" {
		reason = "не указана"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="%s">
	<h1 style="font-size: 20px;">Заказ %s отменён</h1>
	<table style="border-collapse: collapse;">
		<tr><td style="padding: 6px 16px 6px 0; color: #666;">Статус до отмены</td><td style="padding: 6px 0;">%s</td></tr>
		<tr><td style="padding: 6px 16px 6px 0; color: #666;">Причина</td><td style="padding: 6px 0;">%s</td></tr>
	</table>
	<p style="font-size: 12px; color: #999;">Товар возвращён на склад автоматически.</p>
</body>
</html>`, bodyStyle, number, priorStatus, reason)
}

// formatNumber formats a number with comma separators
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	remainder := len(str) % 3
	if remainder > 0 {
		result.WriteString(str[:remainder])
		result.WriteString(",")
	}

	for i := remainder; i < len(str); i += 3 {
		result.WriteString(str[i : i+3])
		if i+3 < len(str) {
			result.WriteString(",")
		}
	}

	return result.String()
}
