package compliance

import (
	"fmt"
	"time"
)

// Rule は暦日で決まる申告期限リマインダーの定義です。
// 当月の日付が [StartDay, DeadlineDay] に入る間だけ有効になります。
type Rule struct {
	Kind             Kind
	Title            string
	Subject          string
	StartDay         int
	DeadlineDay      int
	Month            time.Month // 0 の場合は毎月
	DeadlinePriority Priority
	EarlyPriority    Priority
}

// f29_no_movement だけは期限前の優先度が Low になります。
var calendarRules = []Rule{
	{
		Kind:             KindContributionDeclaration,
		Title:            "Declaración de cotizaciones previsionales",
		Subject:          "declarar las cotizaciones previsionales",
		StartDay:         8,
		DeadlineDay:      10,
		DeadlinePriority: PriorityHigh,
		EarlyPriority:    PriorityMedium,
	},
	{
		Kind:             KindContributionPayment,
		Title:            "Pago de cotizaciones previsionales",
		Subject:          "pagar las cotizaciones previsionales",
		StartDay:         11,
		DeadlineDay:      13,
		DeadlinePriority: PriorityHigh,
		EarlyPriority:    PriorityMedium,
	},
	{
		Kind:             KindF29NonElectronic,
		Title:            "F29 contribuyentes no facturadores electrónicos",
		Subject:          "presentar el F29 de contribuyentes sin factura electrónica",
		StartDay:         10,
		DeadlineDay:      12,
		DeadlinePriority: PriorityHigh,
		EarlyPriority:    PriorityMedium,
	},
	{
		Kind:             KindF29Electronic,
		Title:            "F29 facturadores electrónicos",
		Subject:          "presentar el F29 de facturadores electrónicos",
		StartDay:         18,
		DeadlineDay:      20,
		DeadlinePriority: PriorityHigh,
		EarlyPriority:    PriorityMedium,
	},
	{
		Kind:             KindF29NoMovement,
		Title:            "F29 sin movimiento",
		Subject:          "presentar el F29 sin movimiento",
		StartDay:         26,
		DeadlineDay:      28,
		DeadlinePriority: PriorityHigh,
		EarlyPriority:    PriorityLow,
	},
	{
		Kind:             KindAnnualAffidavits,
		Title:            "Declaraciones Juradas 1887, 1879 y 1835",
		Subject:          "presentar las DJ 1887, 1879 y 1835 de la Operación Renta",
		StartDay:         13,
		DeadlineDay:      15,
		Month:            time.March,
		DeadlinePriority: PriorityHigh,
		EarlyPriority:    PriorityMedium,
	},
	{
		Kind:             KindAnnualIncomeAffidavits,
		Title:            "Declaraciones Juradas 1847 y 1926",
		Subject:          "presentar las DJ 1847 y 1926 de balance y renta líquida",
		StartDay:         27,
		DeadlineDay:      29,
		Month:            time.March,
		DeadlinePriority: PriorityHigh,
		EarlyPriority:    PriorityMedium,
	},
}

// CalendarRules は固定の申告期限ルール表の複製を返します。
func CalendarRules() []Rule {
	out := make([]Rule, len(calendarRules))
	copy(out, calendarRules)
	return out
}

// Active は指定日にルールが有効かどうかを返します。
func (r Rule) Active(now time.Time) bool {
	if r.Month != 0 && now.Month() != r.Month {
		return false
	}
	day := now.Day()
	return day >= r.StartDay && day <= r.DeadlineDay
}

// Notification は有効なルールから通知を生成します。Active の確認は呼び出し側の責務です。
func (r Rule) Notification(now time.Time) Notification {
	remaining := r.DeadlineDay - now.Day()
	deadline := time.Date(now.Year(), now.Month(), r.DeadlineDay, 0, 0, 0, 0, now.Location())

	n := Notification{
		Kind:     r.Kind,
		Title:    r.Title,
		Date:     deadline,
		Priority: r.EarlyPriority,
	}
	if remaining == 0 {
		n.Priority = r.DeadlinePriority
		n.Message = fmt.Sprintf("HOY vence el plazo para %s (día %d).", r.Subject, r.DeadlineDay)
		return n
	}
	n.Message = fmt.Sprintf("El plazo para %s vence en %d días (día %d).", r.Subject, remaining, r.DeadlineDay)
	return n
}
