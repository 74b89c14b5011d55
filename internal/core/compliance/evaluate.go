package compliance

import (
	"fmt"
	"sort"
	"time"
)

const (
	// DefaultLookAheadDays は期限間近とみなす契約終了日までの日数です。
	DefaultLookAheadDays = 30
	// urgentContractDays 以下の残日数の契約は High になります。
	urgentContractDays = 7
)

// Evaluate は現在日時と契約一覧から通知を導出し、優先度と日付の昇順で返します。
// 同じ優先度・日付の通知は生成順を保持します。
func Evaluate(now time.Time, expired, expiring []ContractRecord) []Notification {
	today := civilDate(now)
	notifications := make([]Notification, 0, len(expired)+len(expiring)+2)

	for _, rec := range expired {
		if rec.EndDate == nil {
			continue
		}
		notifications = append(notifications, expiredNotification(today, now.Location(), rec))
	}

	for _, rec := range expiring {
		if rec.EndDate == nil {
			continue
		}
		notifications = append(notifications, expiringNotification(today, now.Location(), rec))
	}

	for _, rule := range calendarRules {
		if rule.Active(now) {
			notifications = append(notifications, rule.Notification(now))
		}
	}

	sortNotifications(notifications)
	return notifications
}

// ClassifyContracts は契約を期限切れ (end < today) と期限間近 (today <= end <= today+lookAheadDays) に分類します。
// 終了日のない契約はどちらにも含まれません。
func ClassifyContracts(today time.Time, records []ContractRecord, lookAheadDays int) (expired, expiring []ContractRecord) {
	if lookAheadDays < 0 {
		lookAheadDays = 0
	}
	day := civilDate(today)
	for _, rec := range records {
		if rec.EndDate == nil {
			continue
		}
		diff := daysBetween(day, civilDate(*rec.EndDate))
		switch {
		case diff < 0:
			expired = append(expired, rec)
		case diff <= lookAheadDays:
			expiring = append(expiring, rec)
		}
	}
	return expired, expiring
}

func expiredNotification(today time.Time, loc *time.Location, rec ContractRecord) Notification {
	end := civilDate(*rec.EndDate)
	elapsed := daysBetween(end, today)
	return Notification{
		Kind:     KindContractExpired,
		Title:    "Contrato vencido",
		Message:  fmt.Sprintf("El contrato de %s (%s) venció hace %d días.", rec.WorkerName, rec.ClientName, elapsed),
		Date:     dateIn(end, loc),
		Priority: PriorityHigh,
	}
}

func expiringNotification(today time.Time, loc *time.Location, rec ContractRecord) Notification {
	end := civilDate(*rec.EndDate)
	remaining := daysBetween(today, end)

	priority := PriorityMedium
	if remaining <= urgentContractDays {
		priority = PriorityHigh
	}

	message := fmt.Sprintf("El contrato de %s (%s) vence en %d días.", rec.WorkerName, rec.ClientName, remaining)
	if remaining == 0 {
		message = fmt.Sprintf("El contrato de %s (%s) vence HOY.", rec.WorkerName, rec.ClientName)
	}

	return Notification{
		Kind:     KindContractExpiring,
		Title:    "Contrato por vencer",
		Message:  message,
		Date:     dateIn(end, loc),
		Priority: priority,
	}
}

func sortNotifications(ns []Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		if ns[i].Priority != ns[j].Priority {
			return ns[i].Priority < ns[j].Priority
		}
		return ns[i].Date.Before(ns[j].Date)
	})
}

// civilDate は日時の暦日を UTC 0 時として返します。
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
