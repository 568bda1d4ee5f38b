// Пакет fees — расчёт штрафов за просрочку возврата книг.
//
// Клиентский расчёт — предварительная оценка "сколько должен прямо
// сейчас"; окончательная сумма фиксируется сервером в момент возврата
// (FeeApplied) и после возврата всегда имеет приоритет над оценкой.
package fees

import (
	"time"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

const (
	// BaseFee — базовый штраф, начисляемый при любой просрочке.
	BaseFee = 5.0
	// HourlyRate — доплата за каждый полный час просрочки.
	HourlyRate = 1.0
)

// HoursOverdue возвращает количество ПОЛНЫХ часов между dueDate и asOf.
// Неполный час не считается: 59 минут просрочки — 0 часов, 61 минута — 1.
// Значение не бывает отрицательным; asOf == dueDate → 0.
func HoursOverdue(dueDate, asOf time.Time) int {
	if !asOf.After(dueDate) {
		return 0
	}
	return int(asOf.Sub(dueDate) / time.Hour)
}

// CurrentFee — текущая оценка штрафа: база плюс почасовая доплата.
// Определена для asOf >= dueDate (вызывающий код обращается к ней только
// для просроченных займов); ровно в срок — база без доплаты.
// Отрицательная просрочка прижимается к нулю часов.
func CurrentFee(dueDate, asOf time.Time) float64 {
	return BaseFee + HourlyRate*float64(HoursOverdue(dueDate, asOf))
}

// DisplayFee — сумма к показу пользователю для займа b.
// Возвращённый заём показывает зафиксированную сервером FeeApplied
// (даже нулевую); активный просроченный — живую оценку CurrentFee;
// активный непросроченный — 0.
func DisplayFee(b *model.Borrow, asOf time.Time) float64 {
	if b.ReturnedAt != nil {
		return b.FeeApplied
	}
	if !b.IsOverdue(asOf) {
		return 0
	}
	return CurrentFee(b.DueDate, asOf)
}
